package api

import (
	"net/http"
	"strconv"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/ddj82/roomi/internal/service/search"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchUseCase
}

type markerResponse struct {
	RoomID       int64   `json:"room_id"`
	Title        string  `json:"title"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	WeekPrice    int64   `json:"week_price"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

func NewSearchHandler(service search.SearchUseCase) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
}

func (h *SearchHandler) search(c *gin.Context) {
	var (
		bounds domain.Bounds
		err    error
	)
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"sw_lat", &bounds.SouthWestLat},
		{"sw_lng", &bounds.SouthWestLng},
		{"ne_lat", &bounds.NorthEastLat},
		{"ne_lng", &bounds.NorthEastLng},
	} {
		if *p.dst, err = strconv.ParseFloat(c.Query(p.name), 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name})
			return
		}
	}

	markers, err := h.service.Search(c.Request.Context(), bounds)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]markerResponse, 0, len(markers))
	for _, m := range markers {
		resp = append(resp, markerResponse{
			RoomID:       m.RoomID,
			Title:        m.Title,
			Latitude:     m.Latitude,
			Longitude:    m.Longitude,
			WeekPrice:    m.WeekPrice,
			ThumbnailURL: m.ThumbnailURL,
		})
	}
	c.JSON(http.StatusOK, resp)
}
