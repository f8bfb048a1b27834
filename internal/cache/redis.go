package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ddj82/roomi/config"
	"github.com/ddj82/roomi/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLock deletes the lock only while it still carries the caller's
// token, so a holder whose TTL ran out cannot drop its successor's lock.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client          *redis.Client
	reservationsTTL time.Duration
	searchTTL       time.Duration
}

func NewRedisCache(cfg config.RedisConfig, cacheCfg config.CacheConfig) *RedisCache {
	return &RedisCache{
		client:          redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		reservationsTTL: cacheCfg.ReservationsTTL(),
		searchTTL:       cacheCfg.SearchTTL(),
	}
}

func (c *RedisCache) GetReservations(ctx context.Context, hostID string) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	if ok, err := c.getJSON(ctx, reservationsKey(hostID), &reservations); err != nil || !ok {
		return nil, err
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	return reservations, nil
}

func (c *RedisCache) SetReservations(ctx context.Context, hostID string, reservations []domain.Reservation) error {
	return c.setJSON(ctx, reservationsKey(hostID), reservations, c.reservationsTTL)
}

func (c *RedisCache) InvalidateReservations(ctx context.Context, hostID string) error {
	return c.client.Del(ctx, reservationsKey(hostID)).Err()
}

// AcquireMutationLock allows one in-flight transition per reservation across
// all replicas. The TTL bounds how long a crashed holder blocks others.
func (c *RedisCache) AcquireMutationLock(ctx context.Context, reservationID int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, mutationLockKey(reservationID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseMutationLock(ctx context.Context, reservationID int64, token string) error {
	return releaseLock.Run(ctx, c.client, []string{mutationLockKey(reservationID)}, token).Err()
}

func (c *RedisCache) GetSearch(ctx context.Context, key string) ([]domain.RoomMarker, error) {
	var markers []domain.RoomMarker
	if ok, err := c.getJSON(ctx, searchKey(key), &markers); err != nil || !ok {
		return nil, err
	}
	if markers == nil {
		markers = []domain.RoomMarker{}
	}
	return markers, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, markers []domain.RoomMarker) error {
	return c.setJSON(ctx, searchKey(key), markers, c.searchTTL)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func reservationsKey(hostID string) string {
	return fmt.Sprintf("cache:host:%s:reservations", hostID)
}

func searchKey(key string) string {
	return "cache:rooms:search:" + key
}

func mutationLockKey(reservationID int64) string {
	return fmt.Sprintf("lock:reservation:%d", reservationID)
}
