package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the loader reads,
// e.g. MEDREG_SERVER_PORT overrides server.port.
const EnvPrefix = "MEDREG"

// envKeys lists every configuration key so that viper surfaces environment
// overrides through Unmarshal.  AutomaticEnv alone only resolves keys viper
// already knows about.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns",
	"database.min_conns", "database.conn_max_lifetime", "database.migration_path",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.acks", "kafka.max_retries", "kafka.batch_size",
	"kafka.batch_timeout", "kafka.write_timeout", "kafka.compression_codec",
	"neo4j.enabled", "neo4j.uri", "neo4j.user", "neo4j.password",
	"neo4j.database", "neo4j.max_connection_pool_size", "neo4j.connection_timeout",
	"log.level", "log.format", "log.output_paths",
	"worker.interval", "worker.batch_size", "worker.publish_only",
	"engine.mapping_threshold", "engine.device_name_threshold",
	"engine.manufacturer_threshold", "engine.relationship_min_strength",
	"engine.trend_window_days", "engine.trend_top_k",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at path, layers environment overrides on top,
// applies defaults to any field left unset, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config without a file, from environment variables and
// defaults alone.  Useful for containerised deployments and tests.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// MustLoad is Load that panics on error.  Reserved for main() wiring where a
// broken config leaves nothing sensible to do.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the freshly validated Config.  Invalid rewrites are dropped
// silently; the previously loaded config stays in effect.
func Watch(path string, onChange func(*Config)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
