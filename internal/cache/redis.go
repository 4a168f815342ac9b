package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/ticketing/config"
	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLock deletes the key only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client   *redis.Client
	eventTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, eventTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		eventTTL: eventTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetEvent returns nil, nil on a cache miss.
func (c *RedisCache) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	data, err := c.client.Get(ctx, eventKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *RedisCache) SetEvent(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventKey(event.ID), payload, c.eventTTL).Err()
}

func (c *RedisCache) InvalidateEvent(ctx context.Context, id int64) error {
	return c.client.Del(ctx, eventKey(id)).Err()
}

// AcquirePaymentLock reports false when another request already holds the
// lock. The returned token must be passed to ReleasePaymentLock.
func (c *RedisCache) AcquirePaymentLock(ctx context.Context, bookingID int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, paymentLockKey(bookingID), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleasePaymentLock is a no-op when the lock expired and was taken by
// another request in the meantime.
func (c *RedisCache) ReleasePaymentLock(ctx context.Context, bookingID int64, token string) error {
	return releaseLock.Run(ctx, c.client, []string{paymentLockKey(bookingID)}, token).Err()
}

func eventKey(id int64) string {
	return fmt.Sprintf("cache:event:%d", id)
}

func paymentLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d:payment", bookingID)
}
