package listing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/ddj82/roomi/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Create(ctx context.Context, draft *domain.RoomDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftRepository) Get(ctx context.Context, id string) (*domain.RoomDraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomDraft), args.Error(1)
}

func (m *MockDraftRepository) Update(ctx context.Context, draft *domain.RoomDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDraftRepository) AddPhoto(ctx context.Context, draftID string, photo *domain.DraftPhoto) error {
	return m.Called(ctx, draftID, photo).Error(0)
}

func (m *MockDraftRepository) RemovePhoto(ctx context.Context, draftID, photoID string) error {
	return m.Called(ctx, draftID, photoID).Error(0)
}

func (m *MockDraftRepository) ListPhotos(ctx context.Context, draftID string) ([]domain.DraftPhoto, error) {
	args := m.Called(ctx, draftID)
	return args.Get(0).([]domain.DraftPhoto), args.Error(1)
}

func (m *MockDraftRepository) DeleteExpiredBefore(ctx context.Context, deadline time.Time) (int64, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).(int64), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetRoom(ctx context.Context, token string, id int64) (*domain.RoomListing, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomListing), args.Error(1)
}

func (m *MockGateway) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	args := m.Called(ctx, imageURL)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockGateway) CreateRoom(ctx context.Context, token string, listing domain.RoomListing, photos []domain.DraftPhoto) (int64, error) {
	args := m.Called(ctx, token, listing, photos)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) UpdateRoom(ctx context.Context, token string, roomID int64, listing domain.RoomListing, photos []domain.DraftPhoto) error {
	return m.Called(ctx, token, roomID, listing, photos).Error(0)
}

var (
	jpeg = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")
	now  = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
)

func validListing() domain.RoomListing {
	return domain.RoomListing{
		Title:        "강남 원룸",
		RoomType:     domain.RoomTypeLease,
		FloorArea:    23.5,
		RoomCount:    1,
		MaxGuests:    2,
		Address:      "서울 강남구 역삼동 1",
		Latitude:     37.5,
		Longitude:    127.03,
		WeekPrice:    300000,
		Deposit:      200000,
		MinStayWeeks: 1,
		Discounts:    []domain.Discount{{Weeks: 4, Percent: 10}},
		CheckInTime:  "15:00",
	}
}

func newService(drafts *MockDraftRepository, gateway *MockGateway) *ListingService {
	return NewListingService(drafts, gateway, 2, 72*time.Hour, nil, WithClock(func() time.Time { return now }))
}

func TestListingService_StartInsert(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	drafts.On("Create", ctx, mock.MatchedBy(func(d *domain.RoomDraft) bool {
		return d.ID != "" && d.HostID == "host-1" && d.Mode == domain.DraftModeInsert && d.RoomID == 0
	})).Return(nil).Once()

	draft, err := service.StartInsert(ctx, "host-1")
	require.NoError(t, err)
	assert.Empty(t, draft.CompletedSteps)
	drafts.AssertExpectations(t)
}

func TestListingService_StartUpdateDownloadsImages(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	room := validListing()
	room.ImageURLs = []string{"https://cdn.example.com/rooms/7/a.jpg?v=2", "https://cdn.example.com/rooms/7/b.png"}
	gateway.On("GetRoom", ctx, "tok", int64(7)).Return(&room, nil).Once()
	gateway.On("FetchImage", ctx, room.ImageURLs[0]).Return(jpeg, "image/jpeg", nil).Once()
	gateway.On("FetchImage", ctx, room.ImageURLs[1]).Return([]byte("png"), "image/png", nil).Once()
	drafts.On("Create", ctx, mock.Anything).Return(nil).Once()

	draft, err := service.StartUpdate(ctx, "host-1", "tok", 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftModeUpdate, draft.Mode)
	assert.Equal(t, int64(7), draft.RoomID)
	assert.Empty(t, draft.Listing.ImageURLs)
	assert.Equal(t, domain.WizardSteps, draft.CompletedSteps)
	require.Len(t, draft.Photos, 2)
	assert.Equal(t, "a.jpg", draft.Photos[0].FileName)
	assert.Equal(t, 1, draft.Photos[1].Position)
	assert.Equal(t, "image/png", draft.Photos[1].ContentType)

	gateway.AssertExpectations(t)
	drafts.AssertExpectations(t)
}

func TestListingService_StartUpdateCapsPhotos(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	room := validListing()
	room.ImageURLs = []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg", "https://cdn.example.com/c.jpg"}
	gateway.On("GetRoom", ctx, "tok", int64(7)).Return(&room, nil).Once()
	gateway.On("FetchImage", ctx, room.ImageURLs[0]).Return(jpeg, "image/jpeg", nil).Once()
	gateway.On("FetchImage", ctx, room.ImageURLs[1]).Return(jpeg, "image/jpeg", nil).Once()
	drafts.On("Create", ctx, mock.MatchedBy(func(d *domain.RoomDraft) bool {
		return len(d.Photos) == 2
	})).Return(nil).Once()

	draft, err := service.StartUpdate(ctx, "host-1", "tok", 7)
	require.NoError(t, err)
	require.Len(t, draft.Photos, 2)
	assert.Equal(t, "b.jpg", draft.Photos[1].FileName)

	gateway.AssertNotCalled(t, "FetchImage", mock.Anything, room.ImageURLs[2])
	gateway.AssertExpectations(t)
	drafts.AssertExpectations(t)
}

func TestListingService_StartUpdateImageFailure(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	room := validListing()
	room.ImageURLs = []string{"https://cdn.example.com/a.jpg"}
	gateway.On("GetRoom", ctx, "tok", int64(7)).Return(&room, nil).Once()
	gateway.On("FetchImage", ctx, room.ImageURLs[0]).Return(nil, "", errors.New("timeout")).Once()

	_, err := service.StartUpdate(ctx, "host-1", "tok", 7)
	assert.Error(t, err)
	drafts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_SaveStep(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	draft := &domain.RoomDraft{ID: "d1", HostID: "host-1", Mode: domain.DraftModeInsert}
	drafts.On("Get", ctx, "d1").Return(draft, nil)
	drafts.On("Update", ctx, mock.Anything).Return(nil)

	patch := json.RawMessage(`{"title":"강남 원룸","room_type":"LEASE","floor_area":23.5,"room_count":1,"max_guests":2}`)
	saved, err := service.SaveStep(ctx, "host-1", "d1", domain.StepBasic, patch)
	require.NoError(t, err)
	assert.Equal(t, "강남 원룸", saved.Listing.Title)
	assert.Equal(t, []domain.WizardStep{domain.StepBasic}, saved.CompletedSteps)

	// saving a step again keeps the completed list unique
	saved, err = service.SaveStep(ctx, "host-1", "d1", domain.StepBasic, json.RawMessage(`{"title":"역삼 원룸"}`))
	require.NoError(t, err)
	assert.Equal(t, "역삼 원룸", saved.Listing.Title)
	assert.Equal(t, domain.RoomTypeLease, saved.Listing.RoomType)
	assert.Len(t, saved.CompletedSteps, 1)

	drafts.AssertNumberOfCalls(t, "Update", 2)
}

func TestListingService_SaveStepErrors(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	draft := &domain.RoomDraft{ID: "d1", HostID: "host-1", CompletedSteps: []domain.WizardStep{domain.StepBasic}}
	drafts.On("Get", ctx, "d1").Return(draft, nil)

	testCases := []struct {
		name     string
		hostID   string
		step     domain.WizardStep
		patch    string
		expected error
	}{
		{name: "unknown step", hostID: "host-1", step: "photos", patch: `{}`, expected: ErrUnknownStep},
		{name: "foreign field", hostID: "host-1", step: domain.StepLocation, patch: `{"week_price":1}`, expected: ErrUnexpectedField},
		{name: "malformed", hostID: "host-1", step: domain.StepLocation, patch: `[1]`, expected: ErrInvalidListing},
		{name: "skips pricing", hostID: "host-1", step: domain.StepDiscounts, patch: `{"discounts":[]}`, expected: ErrStepOutOfOrder},
		{name: "bad value", hostID: "host-1", step: domain.StepBasic, patch: `{"room_type":"HOTEL"}`, expected: ErrInvalidListing},
		{name: "out of range", hostID: "host-1", step: domain.StepLocation, patch: `{"address":"서울","latitude":123}`, expected: ErrInvalidListing},
		{name: "other host", hostID: "host-2", step: domain.StepLocation, patch: `{"address":"서울"}`, expected: repository.ErrDraftNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SaveStep(ctx, tc.hostID, "d1", tc.step, json.RawMessage(tc.patch))
			assert.ErrorIs(t, err, tc.expected)
		})
	}
	drafts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListingService_SaveStepValidatesNestedValues(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	draft := &domain.RoomDraft{ID: "d2", HostID: "host-1", Listing: validListing(), CompletedSteps: append([]domain.WizardStep(nil), domain.WizardSteps[:5]...)}
	drafts.On("Get", ctx, "d2").Return(draft, nil)

	testCases := []struct {
		name  string
		step  domain.WizardStep
		patch string
	}{
		{"empty business license", domain.StepBusiness, `{"business_license":{}}`},
		{"license without representative", domain.StepBusiness, `{"business_license":{"number":"123-45-67890","company_name":"루미"}}`},
		{"discount over 100 percent", domain.StepDiscounts, `{"discounts":[{"weeks":4,"percent":500}]}`},
		{"discount under a week", domain.StepDiscounts, `{"discounts":[{"weeks":4,"percent":5},{"weeks":0,"percent":10}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SaveStep(ctx, "host-1", "d2", tc.step, json.RawMessage(tc.patch))
			assert.ErrorIs(t, err, ErrInvalidListing)
		})
	}
	drafts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	drafts.On("Update", ctx, mock.Anything).Return(nil).Twice()
	saved, err := service.SaveStep(ctx, "host-1", "d2", domain.StepBusiness, json.RawMessage(`{"business_license":{"number":"123-45-67890","company_name":"루미","representative":"김호스트"}}`))
	require.NoError(t, err)
	assert.Equal(t, "루미", saved.Listing.BusinessLicense.CompanyName)

	_, err = service.SaveStep(ctx, "host-1", "d2", domain.StepBusiness, json.RawMessage(`{"business_license":null}`))
	require.NoError(t, err)
	drafts.AssertExpectations(t)
}

func TestListingService_AddPhoto(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	drafts.On("Get", ctx, "d1").Return(&domain.RoomDraft{ID: "d1", HostID: "host-1"}, nil)
	drafts.On("Get", ctx, "full").Return(&domain.RoomDraft{ID: "full", HostID: "host-1", Photos: make([]domain.DraftPhoto, 2)}, nil)
	drafts.On("AddPhoto", ctx, "d1", mock.MatchedBy(func(p *domain.DraftPhoto) bool {
		return p.ContentType == "image/jpeg" && p.FileName == "room.jpg" && p.ID != ""
	})).Return(nil).Once()

	photo, err := service.AddPhoto(ctx, "host-1", "d1", "room.jpg", jpeg)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", photo.ContentType)

	_, err = service.AddPhoto(ctx, "host-1", "d1", "notes.txt", []byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = service.AddPhoto(ctx, "host-1", "d1", "empty.jpg", nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = service.AddPhoto(ctx, "host-1", "full", "room.jpg", jpeg)
	assert.ErrorIs(t, err, ErrTooManyPhotos)

	drafts.AssertExpectations(t)
}

func TestListingService_RemovePhoto(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	drafts.On("Get", ctx, "d1").Return(&domain.RoomDraft{ID: "d1", HostID: "host-1"}, nil)
	drafts.On("RemovePhoto", ctx, "d1", "p1").Return(nil).Once()

	assert.NoError(t, service.RemovePhoto(ctx, "host-1", "d1", "p1"))
	assert.ErrorIs(t, service.RemovePhoto(ctx, "host-2", "d1", "p1"), repository.ErrDraftNotFound)
	drafts.AssertExpectations(t)
}

func TestListingService_SubmitInsert(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	photos := []domain.DraftPhoto{{ID: "p1", FileName: "a.jpg", ContentType: "image/jpeg", Data: jpeg}}
	draft := &domain.RoomDraft{
		ID:             "d1",
		HostID:         "host-1",
		Mode:           domain.DraftModeInsert,
		Listing:        validListing(),
		CompletedSteps: domain.WizardSteps,
		Photos:         photos,
	}
	drafts.On("Get", ctx, "d1").Return(draft, nil).Once()
	gateway.On("CreateRoom", ctx, "tok", draft.Listing, photos).Return(int64(99), nil).Once()
	drafts.On("Delete", ctx, "d1").Return(nil).Once()

	roomID, err := service.Submit(ctx, "host-1", "tok", "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(99), roomID)

	gateway.AssertExpectations(t)
	drafts.AssertExpectations(t)
}

func TestListingService_SubmitUpdateKeepsDraftOnFailure(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	photos := []domain.DraftPhoto{{ID: "p1", FileName: "a.jpg", ContentType: "image/jpeg", Data: jpeg}}
	draft := &domain.RoomDraft{
		ID:             "d1",
		HostID:         "host-1",
		Mode:           domain.DraftModeUpdate,
		RoomID:         7,
		Listing:        validListing(),
		CompletedSteps: domain.WizardSteps,
		Photos:         photos,
	}
	drafts.On("Get", ctx, "d1").Return(draft, nil)
	gateway.On("UpdateRoom", ctx, "tok", int64(7), draft.Listing, photos).Return(errors.New("502")).Once()

	_, err := service.Submit(ctx, "host-1", "tok", "d1")
	assert.Error(t, err)
	drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	gateway.On("UpdateRoom", ctx, "tok", int64(7), draft.Listing, photos).Return(nil).Once()
	drafts.On("Delete", ctx, "d1").Return(nil).Once()
	roomID, err := service.Submit(ctx, "host-1", "tok", "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), roomID)
}

func TestListingService_SubmitRejectsIncompleteDraft(t *testing.T) {
	drafts := &MockDraftRepository{}
	gateway := &MockGateway{}
	service := newService(drafts, gateway)
	ctx := context.Background()

	photos := []domain.DraftPhoto{{ID: "p1", Data: jpeg}}
	invalid := validListing()
	invalid.WeekPrice = 0

	drafts.On("Get", ctx, "partial").Return(&domain.RoomDraft{ID: "partial", HostID: "host-1", Listing: validListing(), CompletedSteps: domain.WizardSteps[:3], Photos: photos}, nil)
	drafts.On("Get", ctx, "nophotos").Return(&domain.RoomDraft{ID: "nophotos", HostID: "host-1", Listing: validListing(), CompletedSteps: domain.WizardSteps}, nil)
	drafts.On("Get", ctx, "invalid").Return(&domain.RoomDraft{ID: "invalid", HostID: "host-1", Listing: invalid, CompletedSteps: domain.WizardSteps, Photos: photos}, nil)

	_, err := service.Submit(ctx, "host-1", "tok", "partial")
	assert.ErrorIs(t, err, ErrDraftIncomplete)
	_, err = service.Submit(ctx, "host-1", "tok", "nophotos")
	assert.ErrorIs(t, err, ErrNoPhotos)
	_, err = service.Submit(ctx, "host-1", "tok", "invalid")
	assert.ErrorIs(t, err, ErrInvalidListing)

	gateway.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_DeleteExpiredDrafts(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := newService(drafts, &MockGateway{})
	ctx := context.Background()

	drafts.On("DeleteExpiredBefore", ctx, now.Add(-72*time.Hour)).Return(int64(3), nil).Once()

	n, err := service.DeleteExpiredDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestImageFileName(t *testing.T) {
	assert.Equal(t, "a.jpg", imageFileName("https://cdn/x/a.jpg?sig=1", 0))
	assert.Equal(t, "image-3", imageFileName("", 3))
}
