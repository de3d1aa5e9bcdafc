package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, DefaultDBMaxConns, cfg.Database.MaxConns)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultWorkerInterval, cfg.Worker.Interval)

	assert.InDelta(t, DefaultMappingThreshold, cfg.Engine.MappingThreshold, 1e-9)
	assert.InDelta(t, DefaultDeviceNameThreshold, cfg.Engine.DeviceNameThreshold, 1e-9)
	assert.InDelta(t, DefaultManufacturerThreshold, cfg.Engine.ManufacturerThreshold, 1e-9)
	assert.InDelta(t, DefaultRelationshipMinStrength, cfg.Engine.RelationshipMinStrength, 1e-9)
	assert.Equal(t, DefaultTrendWindowDays, cfg.Engine.TrendWindowDays)
	assert.Equal(t, DefaultTrendTopK, cfg.Engine.TrendTopK)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Database.Host = "db.internal"
	cfg.Redis.Addr = "cache.internal:6380"
	cfg.Kafka.Brokers = []string{"broker-1:9092", "broker-2:9092"}
	cfg.Worker.Interval = time.Hour
	cfg.Engine.MappingThreshold = 0.9

	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr)
	assert.Len(t, cfg.Kafka.Brokers, 2)
	assert.Equal(t, time.Hour, cfg.Worker.Interval)
	assert.InDelta(t, 0.9, cfg.Engine.MappingThreshold, 1e-9)
}

func TestApplyDefaultsNilConfig(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
