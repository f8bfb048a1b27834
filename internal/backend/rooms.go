package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/ddj82/roomi/internal/domain"
)

// maxImageBytes caps a single listing image fetched from storage.
const maxImageBytes = 10 << 20

func (c *Client) GetRoom(ctx context.Context, token string, id int64) (*domain.RoomListing, error) {
	var room domain.RoomListing
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/rooms/%d", id), token, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// FetchImage downloads an existing listing image so it can be edited as a
// local blob alongside newly uploaded photos.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("backend rate limit: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: "image " + imageURL}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image %s exceeds %d bytes", imageURL, maxImageBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

type createdRoom struct {
	ID int64 `json:"id"`
}

func (c *Client) CreateRoom(ctx context.Context, token string, listing domain.RoomListing, photos []domain.DraftPhoto) (int64, error) {
	body, contentType, err := encodeRoomPayload(listing, photos)
	if err != nil {
		return 0, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/rooms", token, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)

	var created createdRoom
	if err := c.do(req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) UpdateRoom(ctx context.Context, token string, roomID int64, listing domain.RoomListing, photos []domain.DraftPhoto) error {
	body, contentType, err := encodeRoomPayload(listing, photos)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/api/rooms/%d", roomID), token, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, nil)
}

// encodeRoomPayload builds the single multipart body the backend accepts for
// a listing: a JSON "room" part followed by one "images" part per photo.
func encodeRoomPayload(listing domain.RoomListing, photos []domain.DraftPhoto) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	listing.ImageURLs = nil
	roomJSON, err := json.Marshal(listing)
	if err != nil {
		return nil, "", err
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="room"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(roomJSON); err != nil {
		return nil, "", err
	}

	for _, photo := range photos {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, photo.FileName))
		header.Set("Content-Type", photo.ContentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

type markerDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	WeekPrice int64   `json:"week_price"`
	Thumbnail string  `json:"thumbnail_url"`
}

func (c *Client) SearchRooms(ctx context.Context, b domain.Bounds) ([]domain.RoomMarker, error) {
	q := url.Values{}
	q.Set("swLat", strconv.FormatFloat(b.SouthWestLat, 'f', -1, 64))
	q.Set("swLng", strconv.FormatFloat(b.SouthWestLng, 'f', -1, 64))
	q.Set("neLat", strconv.FormatFloat(b.NorthEastLat, 'f', -1, 64))
	q.Set("neLng", strconv.FormatFloat(b.NorthEastLng, 'f', -1, 64))

	var dtos []markerDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/rooms/search?"+q.Encode(), "", nil, &dtos); err != nil {
		return nil, err
	}
	markers := make([]domain.RoomMarker, 0, len(dtos))
	for _, d := range dtos {
		markers = append(markers, domain.RoomMarker{
			RoomID:       d.ID,
			Title:        d.Title,
			Latitude:     d.Latitude,
			Longitude:    d.Longitude,
			WeekPrice:    d.WeekPrice,
			ThumbnailURL: d.Thumbnail,
		})
	}
	return markers, nil
}
