package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per cached object kind.
const (
	TTLDelivery = 10 * time.Minute // cache validators (recomputed on version change)
	TTLPayload  = 24 * time.Hour   // pre-compressed published payloads
	TTLQueue    = 30 * time.Second // review queue counts (refreshed often)
	TTLRuleSet  = 5 * time.Minute  // enabled rule set
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes.
const (
	PrefixDelivery = "delivery:"
	PrefixPayload  = "payload:"
	PrefixQueue    = "queue:"
	PrefixRuleSet  = "ruleset:"
)

// Service Redis cache service interface. All writes are best-effort:
// with no Redis client configured, sets are no-ops and gets miss.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// delivery record cache (cache validators keyed by content date)
	GetDeliveryRecord(ctx context.Context, date string) ([]byte, error)
	SetDeliveryRecord(ctx context.Context, date string, data interface{}) error
	InvalidateDeliveryRecord(ctx context.Context, date string) error

	// pre-compressed payload cache, keyed by date and encoding token
	GetPayload(ctx context.Context, date, encoding string) ([]byte, error)
	SetPayload(ctx context.Context, date, encoding string, payload []byte) error
	InvalidatePayloads(ctx context.Context, date string) error

	// review queue depth counters
	GetQueueDepth(ctx context.Context, status string) (int64, bool, error)
	SetQueueDepth(ctx context.Context, status string, depth int64) error

	// enabled rule set cache
	GetRuleSet(ctx context.Context) ([]byte, error)
	SetRuleSet(ctx context.Context, data interface{}) error
	InvalidateRuleSet(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. client may be nil for cache-less
// deployments.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// delivery record cache
// ========================================

func (c *redisCache) deliveryKey(date string) string {
	return PrefixDelivery + date
}

func (c *redisCache) GetDeliveryRecord(ctx context.Context, date string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.deliveryKey(date)).Bytes()
}

func (c *redisCache) SetDeliveryRecord(ctx context.Context, date string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.deliveryKey(date), jsonData, TTLDelivery).Err()
}

func (c *redisCache) InvalidateDeliveryRecord(ctx context.Context, date string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.deliveryKey(date)).Err()
}

// ========================================
// payload cache
// ========================================

func (c *redisCache) payloadKey(date, encoding string) string {
	return fmt.Sprintf("%s%s:%s", PrefixPayload, date, encoding)
}

func (c *redisCache) GetPayload(ctx context.Context, date, encoding string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.payloadKey(date, encoding)).Bytes()
}

func (c *redisCache) SetPayload(ctx context.Context, date, encoding string, payload []byte) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.payloadKey(date, encoding), payload, TTLPayload).Err()
}

func (c *redisCache) InvalidatePayloads(ctx context.Context, date string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixPayload+date+":*")
}

// ========================================
// queue depth counters
// ========================================

func (c *redisCache) queueKey(status string) string {
	return PrefixQueue + status
}

func (c *redisCache) GetQueueDepth(ctx context.Context, status string) (int64, bool, error) {
	if c.client == nil {
		return 0, false, nil
	}
	depth, err := c.client.Get(ctx, c.queueKey(status)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return depth, true, nil
}

func (c *redisCache) SetQueueDepth(ctx context.Context, status string, depth int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.queueKey(status), depth, TTLQueue).Err()
}

// ========================================
// rule set cache
// ========================================

func (c *redisCache) GetRuleSet(ctx context.Context) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, PrefixRuleSet+"enabled").Bytes()
}

func (c *redisCache) SetRuleSet(ctx context.Context, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, PrefixRuleSet+"enabled", jsonData, TTLRuleSet).Err()
}

func (c *redisCache) InvalidateRuleSet(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, PrefixRuleSet+"enabled").Err()
}

// ========================================
// internal utilities
// ========================================

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
