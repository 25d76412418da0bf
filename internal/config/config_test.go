package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "")
	t.Setenv("DISABLE_AUTH", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.DisableAuth)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.AuthRateWindow)
	assert.Equal(t, StorageDriverLocal, cfg.StorageDriver)
}

func TestLoadDisabledAuthNeedsNoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DISABLE_AUTH", "true")

	cfg := Load()

	assert.True(t, cfg.DisableAuth)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "-3")
	t.Setenv("X_DURATION", "soon")

	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Minute, envDuration("X_DURATION", time.Minute))

	t.Setenv("X_INT", "42")
	t.Setenv("X_DURATION", "90s")
	assert.Equal(t, 42, envInt("X_INT", 7))
	assert.Equal(t, 90*time.Second, envDuration("X_DURATION", time.Minute))
}
