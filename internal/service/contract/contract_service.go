package contract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"github.com/ddj82/roomi/internal/kafka"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ContractUseCase interface {
	List(ctx context.Context, host Host, filter ListFilter) ([]ReservationView, error)
	Get(ctx context.Context, host Host, id int64) (*ReservationView, error)
	Accept(ctx context.Context, host Host, id int64) error
	Reject(ctx context.Context, host Host, id int64) error
	Delete(ctx context.Context, host Host, id int64) error
	RequestPartialRefund(ctx context.Context, host Host, id int64, input RefundInput) error
}

// Gateway is the marketplace backend. It owns every reservation transition.
type Gateway interface {
	ListHostReservations(ctx context.Context, token string) ([]domain.Reservation, error)
	AcceptReservation(ctx context.Context, token string, id int64) error
	RejectReservation(ctx context.Context, token string, id int64) error
	DeleteReservation(ctx context.Context, token string, id int64) error
	RequestPartialRefund(ctx context.Context, token string, id int64, amount int64, reason string) error
}

type Cache interface {
	GetReservations(ctx context.Context, hostID string) ([]domain.Reservation, error)
	SetReservations(ctx context.Context, hostID string, reservations []domain.Reservation) error
	InvalidateReservations(ctx context.Context, hostID string) error
	// AcquireMutationLock returns the holder token; Release only drops the
	// lock while that token still owns it.
	AcquireMutationLock(ctx context.Context, reservationID int64, ttl time.Duration) (string, bool, error)
	ReleaseMutationLock(ctx context.Context, reservationID int64, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Host identifies the caller; Token is forwarded to the backend as is.
type Host struct {
	ID    string
	Token string
}

type ListFilter struct {
	Tab    Tab
	RoomID *int64
	Query  string
}

type RefundInput struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type ContractService struct {
	gateway      Gateway
	cache        Cache
	producer     Producer
	eventsTopic  string
	lockTTL      time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	log          *zap.Logger
	fetches      singleflight.Group
}

type ContractServiceOption func(*ContractService)

func WithEventsTopic(topic string) ContractServiceOption {
	return func(s *ContractService) {
		s.eventsTopic = topic
	}
}

func WithLockTTL(ttl time.Duration) ContractServiceOption {
	return func(s *ContractService) {
		s.lockTTL = ttl
	}
}

// WithFetchTimeout bounds the shared backend list call, which outlives any
// single caller's context.
func WithFetchTimeout(timeout time.Duration) ContractServiceOption {
	return func(s *ContractService) {
		s.fetchTimeout = timeout
	}
}

func WithClock(now func() time.Time) ContractServiceOption {
	return func(s *ContractService) {
		s.now = now
	}
}

func NewContractService(gateway Gateway, cache Cache, producer Producer, log *zap.Logger, opts ...ContractServiceOption) *ContractService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &ContractService{
		gateway:      gateway,
		cache:        cache,
		producer:     producer,
		lockTTL:      30 * time.Second,
		fetchTimeout: 15 * time.Second,
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ContractService) List(ctx context.Context, host Host, filter ListFilter) ([]ReservationView, error) {
	reservations, err := s.reservations(ctx, host)
	if err != nil {
		return nil, err
	}

	if unknown := Unclassified(reservations); len(unknown) > 0 {
		s.log.Warn("reservations with unrecognised status hidden from tabs",
			zap.String("host_id", host.ID), zap.Int("count", len(unknown)))
	}

	now := s.now()
	projected := Project(reservations, filter.Tab, filter.RoomID, filter.Query)
	views := make([]ReservationView, 0, len(projected))
	for _, r := range projected {
		views = append(views, NewView(r, now))
	}
	return views, nil
}

func (s *ContractService) Get(ctx context.Context, host Host, id int64) (*ReservationView, error) {
	r, err := s.find(ctx, host, id)
	if err != nil {
		return nil, err
	}
	view := NewView(*r, s.now())
	return &view, nil
}

func (s *ContractService) Accept(ctx context.Context, host Host, id int64) error {
	return s.mutate(ctx, host, id, ActionAccept, RefundInput{}, func(ctx context.Context) error {
		return s.gateway.AcceptReservation(ctx, host.Token, id)
	})
}

func (s *ContractService) Reject(ctx context.Context, host Host, id int64) error {
	return s.mutate(ctx, host, id, ActionReject, RefundInput{}, func(ctx context.Context) error {
		return s.gateway.RejectReservation(ctx, host.Token, id)
	})
}

func (s *ContractService) Delete(ctx context.Context, host Host, id int64) error {
	return s.mutate(ctx, host, id, ActionDelete, RefundInput{}, func(ctx context.Context) error {
		return s.gateway.DeleteReservation(ctx, host.Token, id)
	})
}

func (s *ContractService) RequestPartialRefund(ctx context.Context, host Host, id int64, input RefundInput) error {
	input.Reason = strings.TrimSpace(input.Reason)
	if input.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRefund)
	}
	if input.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidRefund)
	}
	return s.mutate(ctx, host, id, ActionRefund, input, func(ctx context.Context) error {
		return s.gateway.RequestPartialRefund(ctx, host.Token, id, input.Amount, input.Reason)
	})
}

// mutate checks the action against the current snapshot, holds the
// per-reservation lock for the duration of the backend call and drops the
// cached list only when the call succeeded.
func (s *ContractService) mutate(ctx context.Context, host Host, id int64, action Action, refund RefundInput, call func(context.Context) error) error {
	current, err := s.find(ctx, host, id)
	if err != nil {
		return err
	}
	set := ActionsFor(*current, s.now())
	if !set.Allows(action) {
		return fmt.Errorf("%w: %s on %s reservation", ErrActionNotAllowed, action, set)
	}
	if action == ActionRefund && current.DepositAmount > 0 && refund.Amount > current.DepositAmount {
		return fmt.Errorf("%w: amount exceeds deposit %d", ErrInvalidRefund, current.DepositAmount)
	}

	if s.cache != nil {
		token, ok, err := s.cache.AcquireMutationLock(ctx, id, s.lockTTL)
		if err != nil {
			return fmt.Errorf("acquire mutation lock: %w", err)
		}
		if !ok {
			return ErrMutationInFlight
		}
		defer func() {
			if err := s.cache.ReleaseMutationLock(context.WithoutCancel(ctx), id, token); err != nil {
				s.log.Warn("release mutation lock", zap.Int64("reservation_id", id), zap.Error(err))
			}
		}()
	}

	if err := call(ctx); err != nil {
		s.log.Info("reservation action failed",
			zap.String("action", string(action)), zap.Int64("reservation_id", id), zap.Error(err))
		return err
	}

	s.invalidate(ctx, host.ID)
	if err := s.publish(ctx, host, current, action, refund); err != nil {
		s.log.Warn("publish reservation event", zap.String("action", string(action)), zap.Int64("reservation_id", id), zap.Error(err))
	}
	return nil
}

func (s *ContractService) find(ctx context.Context, host Host, id int64) (*domain.Reservation, error) {
	reservations, err := s.reservations(ctx, host)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		if reservations[i].ID == id {
			return &reservations[i], nil
		}
	}
	return nil, ErrReservationNotFound
}

// reservations serves the host's list from cache and coalesces concurrent
// misses for the same host into a single backend call. The shared call runs
// detached from the caller that started it; each caller stops waiting when
// its own context ends.
func (s *ContractService) reservations(ctx context.Context, host Host) ([]domain.Reservation, error) {
	if s.cache != nil {
		cached, err := s.cache.GetReservations(ctx, host.ID)
		if err != nil {
			s.log.Warn("read reservations cache", zap.String("host_id", host.ID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	fetch := s.fetches.DoChan(host.ID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		list, err := s.gateway.ListHostReservations(fetchCtx, host.Token)
		if err != nil {
			return nil, fmt.Errorf("fetch reservations: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.SetReservations(fetchCtx, host.ID, list); err != nil {
				s.log.Warn("write reservations cache", zap.String("host_id", host.ID), zap.Error(err))
			}
		}
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-fetch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Reservation), nil
	}
}

func (s *ContractService) invalidate(ctx context.Context, hostID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReservations(ctx, hostID); err != nil {
		s.log.Warn("invalidate reservations cache", zap.String("host_id", hostID), zap.Error(err))
	}
}

func (s *ContractService) publish(ctx context.Context, host Host, r *domain.Reservation, action Action, refund RefundInput) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	event := kafka.ReservationEvent{
		Type:          "reservation_" + string(action),
		ReservationID: r.ID,
		HostID:        host.ID,
		RoomID:        r.Room.ID,
		GuestEmail:    r.Guest.Email,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		Amount:        refund.Amount,
		Reason:        refund.Reason,
		OccurredAt:    s.now(),
	}
	return s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(r.ID, 10), event)
}

var _ ContractUseCase = (*ContractService)(nil)
