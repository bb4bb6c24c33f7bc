package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "SERVER_ADDRESS", "DATABASE_URL", "DATABASE_NAME",
		"COLLECTION_USERS", "JWT_SECRET", "TOKEN_TTL", "REQUEST_TIMEOUT", "METRICS_ENABLED",
		"ADMIN_EMAIL", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)
	assert.Equal(t, "users", cfg.CollectionUserName)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.HasBootstrapAdmin())

	// no default signing secret
	assert.Empty(t, cfg.JWTSecret)
	require.Error(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("REQUEST_TIMEOUT", "bogus")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "changeme")

	cfg := LoadConfig()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.HasBootstrapAdmin())
	assert.NoError(t, cfg.Validate())
}
