// Package config defines all configuration structures for the
// MedReg-Intelligence engine.  No I/O or parsing logic lives here, only plain
// data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the record store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the analysis cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds parameters for the verdict feed to the publication
// pipeline.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	Acks            string        `mapstructure:"acks"` // "none" | "one" | "all"
	MaxRetries      int           `mapstructure:"max_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	CompressionCodec string       `mapstructure:"compression_codec"`
}

// Neo4jConfig holds parameters for the relationship-graph export.
type Neo4jConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// WorkerConfig holds the evaluate-and-publish worker parameters.
type WorkerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	BatchSize   int           `mapstructure:"batch_size"`
	PublishOnly string        `mapstructure:"publish_only"` // "" | "approved"
}

// EngineConfig carries every tunable constant of the analysis engine.  The
// defaults replicate the calibrated values the scoring tables were shipped
// with; deployments may override them but never mutate them at runtime: the
// struct is copied into each service at construction time.
type EngineConfig struct {
	// Device entity mapping.
	MappingThreshold float64 `mapstructure:"mapping_threshold"`

	// Timeline corpus matching.
	DeviceNameThreshold   float64 `mapstructure:"device_name_threshold"`
	ManufacturerThreshold float64 `mapstructure:"manufacturer_threshold"`

	// Legal relationship scoring.
	RelationshipMinStrength float64 `mapstructure:"relationship_min_strength"`

	// Trend aggregation.
	TrendWindowDays int `mapstructure:"trend_window_days"`
	TrendTopK       int `mapstructure:"trend_top_k"`

	// Authority reliability overrides; merged over the built-in table.
	AuthorityReliability map[string]float64 `mapstructure:"authority_reliability"`
}

// Config is the root configuration structure for the engine and its
// binaries.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Log      LogConfig      `mapstructure:"log"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	if c.Neo4j.Enabled && c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required when neo4j.enabled is set")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Worker.Interval <= 0 {
		return fmt.Errorf("config: worker.interval must be positive, got %s", c.Worker.Interval)
	}

	return c.Engine.Validate()
}

// Validate checks the engine constants.  Thresholds are probabilities and
// must stay in [0, 1]; window and top-k must be positive.
func (e *EngineConfig) Validate() error {
	for name, v := range map[string]float64{
		"engine.mapping_threshold":         e.MappingThreshold,
		"engine.device_name_threshold":     e.DeviceNameThreshold,
		"engine.manufacturer_threshold":    e.ManufacturerThreshold,
		"engine.relationship_min_strength": e.RelationshipMinStrength,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: %s %.3f is out of range [0, 1]", name, v)
		}
	}
	if e.TrendWindowDays < 1 {
		return fmt.Errorf("config: engine.trend_window_days must be >= 1, got %d", e.TrendWindowDays)
	}
	if e.TrendTopK < 1 {
		return fmt.Errorf("config: engine.trend_top_k must be >= 1, got %d", e.TrendTopK)
	}
	for authority, rel := range e.AuthorityReliability {
		if rel < 0 || rel > 1 {
			return fmt.Errorf("config: engine.authority_reliability[%s] %.3f is out of range [0, 1]", authority, rel)
		}
	}
	return nil
}
