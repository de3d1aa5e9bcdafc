// Package redis wraps the go-redis client behind the cache port the
// analysis engine consumes.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeDatabaseError, "redis connection failed")
)

// Client is a thin wrapper over the standalone go-redis client adding
// closed-state tracking and health checks.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	client := &Client{rdb: rdb, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}

	log.Info("Redis client connected",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// HealthCheck reports liveness for the readiness probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
		return err
	}
	c.logger.Info("Closed Redis client")
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.isClosed() {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if c.isClosed() {
		cmd := redis.NewStatusCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Set(ctx, key, value, expiration)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		cmd := redis.NewIntCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		cmd := redis.NewIntCmd(ctx)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Exists(ctx, keys...)
}
