package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9191
  mode: test
database:
  user: medreg
  password: secret
engine:
  mapping_threshold: 0.8
  trend_window_days: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "medreg", cfg.Database.User)
	assert.InDelta(t, 0.8, cfg.Engine.MappingThreshold, 1e-9)
	assert.Equal(t, 30, cfg.Engine.TrendWindowDays)

	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultTrendTopK, cfg.Engine.TrendTopK)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mode: nonsense
database:
  user: medreg
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEDREG_DATABASE_USER", "envuser")
	t.Setenv("MEDREG_SERVER_PORT", "7070")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "envuser", cfg.Database.User)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestMustLoadPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
