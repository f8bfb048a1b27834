package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ddj82/roomi/config"
	"github.com/ddj82/roomi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(config.RedisConfig{Addr: mr.Addr()}, config.CacheConfig{ReservationsTTLSeconds: 60, SearchTTLSeconds: 30})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, config.CacheConfig{ReservationsTTLSeconds: 60, SearchTTLSeconds: 30})
	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.reservationsTTL)
	assert.Equal(t, 30*time.Second, c.searchTTL)
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:host:h-1:reservations", reservationsKey("h-1"))
	assert.Equal(t, "lock:reservation:42", mutationLockKey(42))
	assert.Equal(t, "cache:rooms:search:37.490:126.980:37.570:127.050", searchKey("37.490:126.980:37.570:127.050"))
}

func TestRedisCache_Reservations(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	cached, err := c.GetReservations(ctx, "h-1")
	require.NoError(t, err)
	assert.Nil(t, cached)

	refund := int64(15000)
	accepted := true
	checkIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reservations := []domain.Reservation{
		{
			ID:                     7,
			Status:                 domain.ReservationStatusCompleted,
			PaymentStatus:          domain.PaymentStatusPending,
			CheckInDate:            checkIn,
			CheckOutDate:           checkIn.AddDate(0, 0, 14),
			DepositAmount:          100000,
			RequestFeeRefundAmount: &refund,
			GuestAcceptedFee:       &accepted,
			Room:                   domain.RoomSnapshot{ID: 10, Title: "강남 원룸"},
			Guest:                  domain.Guest{Email: "guest@example.com"},
		},
	}
	require.NoError(t, c.SetReservations(ctx, "h-1", reservations))
	assert.Equal(t, time.Minute, mr.TTL(reservationsKey("h-1")))

	cached, err = c.GetReservations(ctx, "h-1")
	require.NoError(t, err)
	assert.Equal(t, reservations, cached)

	require.NoError(t, c.SetReservations(ctx, "h-2", nil))
	empty, err := c.GetReservations(ctx, "h-2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, c.InvalidateReservations(ctx, "h-1"))
	cached, err = c.GetReservations(ctx, "h-1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisCache_ReservationsCorruptPayload(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(reservationsKey("h-1"), "{not json"))

	cached, err := c.GetReservations(context.Background(), "h-1")
	assert.Error(t, err)
	assert.Nil(t, cached)
}

func TestRedisCache_Search(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := "37.490:126.980:37.570:127.050"

	markers, err := c.GetSearch(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, markers)

	want := []domain.RoomMarker{{RoomID: 1, Title: "역삼 투룸", Latitude: 37.5, Longitude: 127.03}}
	require.NoError(t, c.SetSearch(ctx, key, want))
	assert.Equal(t, 30*time.Second, mr.TTL(searchKey(key)))

	markers, err = c.GetSearch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, want, markers)

	mr.FastForward(31 * time.Second)
	markers, err = c.GetSearch(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, markers)
}

func TestRedisCache_MutationLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	token, ok, err := c.AcquireMutationLock(ctx, 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquireMutationLock(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseMutationLock(ctx, 1, token))
	assert.False(t, mr.Exists(mutationLockKey(1)))

	_, ok, err = c.AcquireMutationLock(ctx, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_ExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	stale, ok, err := c.AcquireMutationLock(ctx, 9, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	current, ok, err := c.AcquireMutationLock(ctx, 9, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, stale, current)

	require.NoError(t, c.ReleaseMutationLock(ctx, 9, stale))
	held, err := mr.Get(mutationLockKey(9))
	require.NoError(t, err)
	assert.Equal(t, current, held)

	_, ok, err = c.AcquireMutationLock(ctx, 9, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
