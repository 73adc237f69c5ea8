package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"dealforge/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "LOG_FILE", "TEMPLATE_DIR", "LATENCY_SCALE", "ADMIN_TOKEN_HASH", "RATE_LIMIT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	assert.Equal(t, config.Defaults(), config.Load())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LATENCY_SCALE", "0")
	t.Setenv("ADMIN_TOKEN_HASH", "$2a$04$abc")

	cfg := config.Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.0, cfg.LatencyScale)
	assert.Equal(t, "$2a$04$abc", cfg.AdminTokenHash)
	assert.Equal(t, "dealforge.db", cfg.DBDSN)
}

func TestLoad_BadValueFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT", "lots")
	assert.Equal(t, 60, config.Load().RateLimit)
}
