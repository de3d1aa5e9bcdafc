// Package config provides configuration loading, defaults, and validation for
// the MedReg-Intelligence engine.
package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "medreg"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "medreg:"

	DefaultKafkaBroker = "localhost:9092"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerInterval = 15 * time.Minute

	// Engine constants.  These mirror the calibrated scoring tables; see
	// EngineConfig for override semantics.
	DefaultMappingThreshold        = 0.75
	DefaultDeviceNameThreshold     = 0.7
	DefaultManufacturerThreshold   = 0.8
	DefaultRelationshipMinStrength = 0.3
	DefaultTrendWindowDays         = 90
	DefaultTrendTopK               = 5
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 15 * time.Minute
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "all"
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Interval == 0 {
		cfg.Worker.Interval = DefaultWorkerInterval
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 200
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.MappingThreshold == 0 {
		cfg.Engine.MappingThreshold = DefaultMappingThreshold
	}
	if cfg.Engine.DeviceNameThreshold == 0 {
		cfg.Engine.DeviceNameThreshold = DefaultDeviceNameThreshold
	}
	if cfg.Engine.ManufacturerThreshold == 0 {
		cfg.Engine.ManufacturerThreshold = DefaultManufacturerThreshold
	}
	if cfg.Engine.RelationshipMinStrength == 0 {
		cfg.Engine.RelationshipMinStrength = DefaultRelationshipMinStrength
	}
	if cfg.Engine.TrendWindowDays == 0 {
		cfg.Engine.TrendWindowDays = DefaultTrendWindowDays
	}
	if cfg.Engine.TrendTopK == 0 {
		cfg.Engine.TrendTopK = DefaultTrendTopK
	}
}
