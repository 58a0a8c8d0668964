package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray .env is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "reservations.db", cfg.DBPath)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.Capacity)
	assert.False(t, cfg.Reminders.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Reminders.Lead)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("RESTAURANT_TZ", "UTC")
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("REMINDERS_ENABLED", "true")
	t.Setenv("REMINDER_LEAD", "2h")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load([]string{"-port", "3000", "-floor-plan", "plan.json"})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port, "flags win over env")
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Reminders.Lead)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "plan.json", cfg.FloorPlan)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FORMAT=json\n"), 0o600))
	chdir(t, dir)
	// godotenv never overrides variables that are already set; make sure
	// this one is unset and restored afterwards.
	t.Setenv("LOG_FORMAT", "")
	require.NoError(t, os.Unsetenv("LOG_FORMAT"))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mongo")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("bad zone", func(t *testing.T) {
		t.Setenv("RESTAURANT_TZ", "Mars/Olympus")
		_, err := Load(nil)
		assert.ErrorContains(t, err, "RESTAURANT_TZ")
	})

	t.Run("bad flag", func(t *testing.T) {
		_, err := Load([]string{"-nope"})
		assert.Error(t, err)
	})
}

func TestNewRedisClient_Unconfigured(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), RedisConfig{}))
}
