package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, "none", cfg.EventsDriver)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "admin", cfg.DefaultAdminUser)
	assert.Equal(t, "admin123", cfg.DefaultAdminPass)
	assert.Equal(t, 0, cfg.BcryptCost)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.Cache.Methods["GET"])
}

func TestLoadYAMLOverlayLosesToEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \"9000\"\nSTORAGE_DRIVER: postgres\nDB_USER: app\nKAFKA_BROKERS: a:9092, b:9092\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "7000")
	// registered so t.Setenv restores them after applyYAML sets them
	for _, k := range []string{"STORAGE_DRIVER", "DB_USER", "KAFKA_BROKERS", "DB_PORT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestValidate(t *testing.T) {
	cfg := Config{StorageDriver: "mysql", EventsDriver: "smoke", AccessTTLMin: 0, BcryptCost: -1}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "DB_USER", "EVENTS_DRIVER", "ACCESS_TOKEN_TTL_MIN", "BCRYPT_COST"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRateLimitClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 2*time.Second, rl.RefillInterval)
	assert.Equal(t, 10*time.Second, rl.TTL)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
