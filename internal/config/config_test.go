package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"API_PORT", "ENVIRONMENT", "DATABASE_DRIVER", "REDIS_URL", "CACHE_TTL_SECONDS", "CORS_ORIGINS", "SEED_ON_START", "CRON_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.SeedOnStart)
	assert.True(t, cfg.CronEnabled)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/p.db")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SEED_ON_START", "")
	t.Setenv("CRON_ENABLED", "no")

	cfg := Load()
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/p.db", cfg.SQLitePath)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.SeedOnStart, "seeding is off by default in production")
	assert.False(t, cfg.CronEnabled)
	assert.True(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseDriver: "mysql", CacheTTL: time.Second}
	assert.ErrorContains(t, cfg.Validate(), "unsupported DATABASE_DRIVER")

	cfg = &Config{DatabaseDriver: DriverSQLite, CacheTTL: time.Second}
	assert.ErrorContains(t, cfg.Validate(), "SQLITE_PATH")

	cfg = &Config{DatabaseDriver: DriverPostgres, DatabaseURL: "postgres://x", CacheTTL: 0}
	assert.ErrorContains(t, cfg.Validate(), "CACHE_TTL_SECONDS")
}
