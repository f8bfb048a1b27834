package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/ddj82/roomi/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListingUseCase interface {
	StartInsert(ctx context.Context, hostID string) (*domain.RoomDraft, error)
	StartUpdate(ctx context.Context, hostID, token string, roomID int64) (*domain.RoomDraft, error)
	GetDraft(ctx context.Context, hostID, draftID string) (*domain.RoomDraft, error)
	SaveStep(ctx context.Context, hostID, draftID string, step domain.WizardStep, patch json.RawMessage) (*domain.RoomDraft, error)
	AddPhoto(ctx context.Context, hostID, draftID, fileName string, data []byte) (*domain.DraftPhoto, error)
	RemovePhoto(ctx context.Context, hostID, draftID, photoID string) error
	Submit(ctx context.Context, hostID, token, draftID string) (int64, error)
	DeleteExpiredDrafts(ctx context.Context) (int64, error)
}

type Gateway interface {
	GetRoom(ctx context.Context, token string, id int64) (*domain.RoomListing, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
	CreateRoom(ctx context.Context, token string, listing domain.RoomListing, photos []domain.DraftPhoto) (int64, error)
	UpdateRoom(ctx context.Context, token string, roomID int64, listing domain.RoomListing, photos []domain.DraftPhoto) error
}

type ListingService struct {
	drafts    repository.DraftRepository
	gateway   Gateway
	validate  *validator.Validate
	maxPhotos int
	draftTTL  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

type ListingServiceOption func(*ListingService)

func WithClock(now func() time.Time) ListingServiceOption {
	return func(s *ListingService) {
		s.now = now
	}
}

func NewListingService(drafts repository.DraftRepository, gateway Gateway, maxPhotos int, draftTTL time.Duration, log *zap.Logger, opts ...ListingServiceOption) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &ListingService{
		drafts:    drafts,
		gateway:   gateway,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		maxPhotos: maxPhotos,
		draftTTL:  draftTTL,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ListingService) StartInsert(ctx context.Context, hostID string) (*domain.RoomDraft, error) {
	draft := &domain.RoomDraft{
		ID:     uuid.NewString(),
		HostID: hostID,
		Mode:   domain.DraftModeInsert,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return draft, nil
}

// StartUpdate opens a draft over an existing listing. Remote images are
// downloaded so the host edits one uniform photo list; images past the photo
// limit are dropped.
func (s *ListingService) StartUpdate(ctx context.Context, hostID, token string, roomID int64) (*domain.RoomDraft, error) {
	room, err := s.gateway.GetRoom(ctx, token, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room %d: %w", roomID, err)
	}

	imageURLs := room.ImageURLs
	if s.maxPhotos > 0 && len(imageURLs) > s.maxPhotos {
		s.log.Warn("room has more images than a draft holds",
			zap.Int64("room_id", roomID), zap.Int("images", len(imageURLs)), zap.Int("max_photos", s.maxPhotos))
		imageURLs = imageURLs[:s.maxPhotos]
	}

	photos := make([]domain.DraftPhoto, 0, len(imageURLs))
	for i, imageURL := range imageURLs {
		data, contentType, err := s.gateway.FetchImage(ctx, imageURL)
		if err != nil {
			return nil, fmt.Errorf("download image %d of room %d: %w", i, roomID, err)
		}
		photos = append(photos, domain.DraftPhoto{
			ID:          uuid.NewString(),
			FileName:    imageFileName(imageURL, i),
			ContentType: contentType,
			Position:    i,
			Data:        data,
		})
	}

	listing := *room
	listing.ImageURLs = nil
	draft := &domain.RoomDraft{
		ID:             uuid.NewString(),
		HostID:         hostID,
		Mode:           domain.DraftModeUpdate,
		RoomID:         roomID,
		Listing:        listing,
		CompletedSteps: allSteps(),
		Photos:         photos,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	s.log.Info("update draft opened", zap.String("draft_id", draft.ID), zap.Int64("room_id", roomID), zap.Int("photos", len(photos)))
	return draft, nil
}

func (s *ListingService) GetDraft(ctx context.Context, hostID, draftID string) (*domain.RoomDraft, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.HostID != hostID {
		return nil, repository.ErrDraftNotFound
	}
	return draft, nil
}

// SaveStep merges patch into the draft listing. Only the step's own fields
// are accepted and every earlier step must already be saved.
func (s *ListingService) SaveStep(ctx context.Context, hostID, draftID string, step domain.WizardStep, patch json.RawMessage) (*domain.RoomDraft, error) {
	idx := stepIndex(step)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	allowed := stepFields[step]
	for key := range fields {
		if _, ok := allowed[key]; !ok {
			return nil, fmt.Errorf("%w: %q in step %s", ErrUnexpectedField, key, step)
		}
	}

	draft, err := s.GetDraft(ctx, hostID, draftID)
	if err != nil {
		return nil, err
	}
	for _, previous := range domain.WizardSteps[:idx] {
		if !draft.HasCompleted(previous) {
			return nil, fmt.Errorf("%w: %s before %s", ErrStepOutOfOrder, previous, step)
		}
	}

	listing := draft.Listing
	if err := json.Unmarshal(patch, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if err := s.validate.StructPartial(listing, structFields(step)...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if err := s.validateNested(listing, step); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}

	draft.Listing = listing
	if !draft.HasCompleted(step) {
		draft.CompletedSteps = append(draft.CompletedSteps, step)
	}
	if err := s.drafts.Update(ctx, draft); err != nil {
		return nil, fmt.Errorf("save step %s: %w", step, err)
	}
	return draft, nil
}

func (s *ListingService) AddPhoto(ctx context.Context, hostID, draftID, fileName string, data []byte) (*domain.DraftPhoto, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedImage)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	draft, err := s.GetDraft(ctx, hostID, draftID)
	if err != nil {
		return nil, err
	}
	if s.maxPhotos > 0 && len(draft.Photos) >= s.maxPhotos {
		return nil, fmt.Errorf("%w: max %d", ErrTooManyPhotos, s.maxPhotos)
	}

	photo := &domain.DraftPhoto{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}
	if err := s.drafts.AddPhoto(ctx, draftID, photo); err != nil {
		return nil, fmt.Errorf("add photo: %w", err)
	}
	return photo, nil
}

func (s *ListingService) RemovePhoto(ctx context.Context, hostID, draftID, photoID string) error {
	if _, err := s.GetDraft(ctx, hostID, draftID); err != nil {
		return err
	}
	return s.drafts.RemovePhoto(ctx, draftID, photoID)
}

// Submit sends the whole listing with its photos in a single request and
// drops the draft once the backend accepted it.
func (s *ListingService) Submit(ctx context.Context, hostID, token, draftID string) (int64, error) {
	draft, err := s.GetDraft(ctx, hostID, draftID)
	if err != nil {
		return 0, err
	}

	var missing []string
	for _, step := range domain.WizardSteps {
		if !draft.HasCompleted(step) {
			missing = append(missing, string(step))
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: missing %s", ErrDraftIncomplete, strings.Join(missing, ", "))
	}
	if len(draft.Photos) == 0 {
		return 0, ErrNoPhotos
	}
	if err := s.validate.Struct(draft.Listing); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}

	roomID := draft.RoomID
	switch draft.Mode {
	case domain.DraftModeUpdate:
		err = s.gateway.UpdateRoom(ctx, token, roomID, draft.Listing, draft.Photos)
	default:
		roomID, err = s.gateway.CreateRoom(ctx, token, draft.Listing, draft.Photos)
	}
	if err != nil {
		return 0, fmt.Errorf("submit listing: %w", err)
	}

	if err := s.drafts.Delete(ctx, draftID); err != nil && !errors.Is(err, repository.ErrDraftNotFound) {
		s.log.Warn("delete submitted draft", zap.String("draft_id", draftID), zap.Error(err))
	}
	s.log.Info("listing submitted", zap.String("mode", string(draft.Mode)), zap.Int64("room_id", roomID), zap.Int("photos", len(draft.Photos)))
	return roomID, nil
}

func (s *ListingService) DeleteExpiredDrafts(ctx context.Context) (int64, error) {
	return s.drafts.DeleteExpiredBefore(ctx, s.now().Add(-s.draftTTL))
}

// validateNested checks the struct values a step edits. Partial validation
// only matches top-level field names and never reaches their members.
func (s *ListingService) validateNested(listing domain.RoomListing, step domain.WizardStep) error {
	switch step {
	case domain.StepDiscounts:
		for i, discount := range listing.Discounts {
			if err := s.validate.Struct(discount); err != nil {
				return fmt.Errorf("discount %d: %w", i, err)
			}
		}
	case domain.StepBusiness:
		if listing.BusinessLicense != nil {
			return s.validate.Struct(listing.BusinessLicense)
		}
	}
	return nil
}

func imageFileName(imageURL string, i int) string {
	name := path.Base(strings.SplitN(imageURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		return fmt.Sprintf("image-%d", i)
	}
	return name
}

var _ ListingUseCase = (*ListingService)(nil)
