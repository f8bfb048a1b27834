package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ddj82/roomi/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidBounds = errors.New("invalid map bounds")

// fetchTimeout bounds a shared backend search, which is detached from the
// request that started it.
const fetchTimeout = 10 * time.Second

type SearchUseCase interface {
	Search(ctx context.Context, bounds domain.Bounds) ([]domain.RoomMarker, error)
}

type Gateway interface {
	SearchRooms(ctx context.Context, bounds domain.Bounds) ([]domain.RoomMarker, error)
}

type Cache interface {
	GetSearch(ctx context.Context, key string) ([]domain.RoomMarker, error)
	SetSearch(ctx context.Context, key string, markers []domain.RoomMarker) error
}

type SearchService struct {
	gateway Gateway
	cache   Cache
	log     *zap.Logger
	group   singleflight.Group
}

func NewSearchService(gateway Gateway, cache Cache, log *zap.Logger) *SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{gateway: gateway, cache: cache, log: log}
}

// Search returns the room markers inside bounds. Nearby viewports share a
// cache key and concurrent identical queries hit the backend once.
func (s *SearchService) Search(ctx context.Context, bounds domain.Bounds) ([]domain.RoomMarker, error) {
	if !bounds.Valid() {
		return nil, ErrInvalidBounds
	}
	key := bounds.CacheKey()

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, key); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("read search cache", zap.String("key", key), zap.Error(err))
		}
	}

	fetch := s.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		markers, err := s.gateway.SearchRooms(fetchCtx, bounds)
		if err != nil {
			return nil, fmt.Errorf("search rooms: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.SetSearch(fetchCtx, key, markers); err != nil {
				s.log.Warn("write search cache", zap.String("key", key), zap.Error(err))
			}
		}
		return markers, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-fetch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug("search coalesced", zap.String("key", key))
		}
		return res.Val.([]domain.RoomMarker), nil
	}
}

var _ SearchUseCase = (*SearchService)(nil)
