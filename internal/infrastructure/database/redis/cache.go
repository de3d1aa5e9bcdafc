package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

var ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")

// Serializer converts cached values to and from bytes.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonSerializer) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

// commander is the subset of Client used by the cache.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// AnalysisCache stores analysis artifacts as JSON under a key prefix.
// It satisfies the engine cache port: Get reports a miss as (false, nil)
// so callers never treat an absent entry as a failure.
type AnalysisCache struct {
	client     commander
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	serializer Serializer
}

type CacheOption func(*AnalysisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *AnalysisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *AnalysisCache) { c.defaultTTL = ttl }
}

func WithSerializer(s Serializer) CacheOption {
	return func(c *AnalysisCache) { c.serializer = s }
}

// NewAnalysisCache builds the cache adapter with medreg defaults.
func NewAnalysisCache(client commander, log logging.Logger, opts ...CacheOption) *AnalysisCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &AnalysisCache{
		client:     client,
		logger:     log,
		prefix:     "medreg:",
		defaultTTL: 15 * time.Minute,
		serializer: jsonSerializer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AnalysisCache) fullKey(key string) string {
	return c.prefix + key
}

// Get unmarshals the cached value into dest, reporting whether the key was
// present.  Corrupt payloads are dropped and reported as misses.
func (c *AnalysisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := c.serializer.Unmarshal(data, dest); err != nil {
		c.logger.Warn("dropping corrupt cache entry",
			logging.String("key", key),
			logging.Err(err),
		)
		c.client.Del(ctx, c.fullKey(key))
		return false, nil
	}
	return true, nil
}

// Set stores value under key.  A zero ttl falls back to the default.
func (c *AnalysisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := c.serializer.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache entry")
	}
	return nil
}

// Delete removes keys from the cache.
func (c *AnalysisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, fullKeys...).Err()
}

// Exists reports whether a key is present.
func (c *AnalysisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.fullKey(key)).Result()
	return n > 0, err
}
