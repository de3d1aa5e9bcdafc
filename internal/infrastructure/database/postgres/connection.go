// Package postgres manages the PostgreSQL connection pool backing the record
// store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

// Connection manages the pgx connection pool.
type Connection struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// BuildDSN renders the keyword/value connection string for cfg.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

// NewConnection opens and verifies a connection pool.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid database configuration")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("connected to PostgreSQL",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)
	return &Connection{pool: pool, logger: log}, nil
}

// Pool returns the underlying pgx pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// HealthCheck verifies the pool can reach the database.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}
	return nil
}

// Close releases the pool.
func (c *Connection) Close() {
	c.pool.Close()
	c.logger.Info("PostgreSQL connection pool closed")
}
