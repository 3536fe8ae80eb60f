package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Minute, cfg.Security.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.Security.RefreshTokenTTL)
	assert.Equal(t, time.Hour, cfg.Security.ResetTokenTTL)
	assert.Equal(t, 6, cfg.Security.MinPasswordLen)
	assert.Equal(t, "tenderdesk-documents", cfg.Storage.BucketDocuments)
	assert.Equal(t, int64(25<<20), cfg.Storage.MaxUploadBytes)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TENDERDESK_HTTP_PORT", "9000")
	t.Setenv("TENDERDESK_SECURITY_JWTSECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "env-secret", cfg.Security.JWTSecret)
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	// Viper discards empty env values, so both "unset" and "set but empty"
	// leave the dev default in place. Production must reject it either way.
	t.Run("unset falls back to dev default", func(t *testing.T) {
		t.Setenv("TENDERDESK_ENVIRONMENT", "production")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("empty value falls back to dev default", func(t *testing.T) {
		t.Setenv("TENDERDESK_ENVIRONMENT", "production")
		t.Setenv("TENDERDESK_SECURITY_JWTSECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("real secret is accepted", func(t *testing.T) {
		t.Setenv("TENDERDESK_ENVIRONMENT", "production")
		t.Setenv("TENDERDESK_SECURITY_JWTSECRET", "prod-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "prod-secret", cfg.Security.JWTSecret)
	})
}
