package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/goaliestats/internal/ingest"
)

// RedisCache keeps recent import results for the read-only trigger.
type RedisCache struct {
	client *redis.Client
}

var _ ingest.Cache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// GetResult loads a cached import. A missing key is not an error.
func (rc *RedisCache) GetResult(ctx context.Context, key string) (*ingest.Result, bool, error) {
	raw, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get %s", key)
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decode %s", key)
	}
	return result, true, nil
}

// SetResult stores an import under key for ttl.
func (rc *RedisCache) SetResult(ctx context.Context, key string, result *ingest.Result, ttl time.Duration) error {
	raw, err := encodeResult(result)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return errors.Wrapf(rc.client.Set(ctx, key, raw, ttl).Err(), "set %s", key)
}

// Delete removes keys
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

func encodeResult(r *ingest.Result) ([]byte, error) {
	return sonic.Marshal(r)
}

func decodeResult(raw []byte) (*ingest.Result, error) {
	var r ingest.Result
	if err := sonic.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
