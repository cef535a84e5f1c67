package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_DSN", "RATE_LIMIT_RPS", "RATE_LIMIT_ENABLED", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "library.db")
	assert.Contains(t, cfg.Database.DSN, "_busy_timeout=5000")
	assert.NotContains(t, cfg.Database.DSN, "cache=shared")
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_DSN", "postgres://library@localhost/library")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("READ_TIMEOUT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://library@localhost/library", cfg.Database.DSN)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
}
