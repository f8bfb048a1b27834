package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/ddj82/roomi/internal/service/listing"
	"github.com/gin-gonic/gin"
)

// maxPhotoBytes caps a single uploaded listing photo.
const maxPhotoBytes = 10 << 20

type DraftHandler struct {
	service listing.ListingUseCase
}

type startDraftRequest struct {
	RoomID int64 `json:"room_id"`
}

type photoResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Position    int    `json:"position"`
	Size        int    `json:"size"`
}

type draftResponse struct {
	ID             string             `json:"id"`
	Mode           string             `json:"mode"`
	RoomID         int64              `json:"room_id,omitempty"`
	Listing        domain.RoomListing `json:"listing"`
	CompletedSteps []string           `json:"completed_steps"`
	NextStep       string             `json:"next_step,omitempty"`
	Photos         []photoResponse    `json:"photos"`
	UpdatedAt      string             `json:"updated_at"`
}

func NewDraftHandler(service listing.ListingUseCase) *DraftHandler {
	return &DraftHandler{service: service}
}

func (h *DraftHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.start)
	router.GET("/:draft", h.get)
	router.PUT("/:draft/steps/:step", h.saveStep)
	router.POST("/:draft/photos", h.addPhoto)
	router.DELETE("/:draft/photos/:photo", h.removePhoto)
	router.POST("/:draft/submit", h.submit)
}

// start opens an insert draft, or an update draft when room_id is given.
func (h *DraftHandler) start(c *gin.Context) {
	var req startDraftRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	host := hostFrom(c)

	var (
		draft *domain.RoomDraft
		err   error
	)
	if req.RoomID > 0 {
		draft, err = h.service.StartUpdate(c.Request.Context(), host.ID, host.Token, req.RoomID)
	} else {
		draft, err = h.service.StartInsert(c.Request.Context(), host.ID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDraftResponse(draft))
}

func (h *DraftHandler) get(c *gin.Context) {
	draft, err := h.service.GetDraft(c.Request.Context(), hostFrom(c).ID, c.Param("draft"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDraftResponse(draft))
}

func (h *DraftHandler) saveStep(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	draft, err := h.service.SaveStep(c.Request.Context(), hostFrom(c).ID, c.Param("draft"), domain.WizardStep(c.Param("step")), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDraftResponse(draft))
}

func (h *DraftHandler) addPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo is too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photo, err := h.service.AddPhoto(c.Request.Context(), hostFrom(c).ID, c.Param("draft"), file.Filename, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPhotoResponse(*photo))
}

func (h *DraftHandler) removePhoto(c *gin.Context) {
	if err := h.service.RemovePhoto(c.Request.Context(), hostFrom(c).ID, c.Param("draft"), c.Param("photo")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) submit(c *gin.Context) {
	host := hostFrom(c)
	roomID, err := h.service.Submit(c.Request.Context(), host.ID, host.Token, c.Param("draft"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

func toDraftResponse(d *domain.RoomDraft) draftResponse {
	steps := make([]string, 0, len(d.CompletedSteps))
	for _, s := range d.CompletedSteps {
		steps = append(steps, string(s))
	}
	var next string
	for _, s := range domain.WizardSteps {
		if !d.HasCompleted(s) {
			next = string(s)
			break
		}
	}
	photos := make([]photoResponse, 0, len(d.Photos))
	for _, p := range d.Photos {
		photos = append(photos, toPhotoResponse(p))
	}
	return draftResponse{
		ID:             d.ID,
		Mode:           string(d.Mode),
		RoomID:         d.RoomID,
		Listing:        d.Listing,
		CompletedSteps: steps,
		NextStep:       next,
		Photos:         photos,
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}
}

func toPhotoResponse(p domain.DraftPhoto) photoResponse {
	return photoResponse{
		ID:          p.ID,
		FileName:    p.FileName,
		ContentType: p.ContentType,
		Position:    p.Position,
		Size:        len(p.Data),
	}
}
