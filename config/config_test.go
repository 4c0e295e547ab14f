package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_NAME", "onboarding")
	t.Setenv("DB_USERNAME", "user")
}

func TestLoadSuccess(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.com, http://b.com")
	t.Setenv("VALKEY_DB", "2")
	t.Setenv("ONBOARDING_AUTOSAVE_DELAY", "250ms")
	t.Setenv("ONBOARDING_RESUME_TTL", "48h")
	t.Setenv("ADMIN_KEY_HASH", "$2a$10$hash")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer abc, x-team=coaching")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2, cfg.Valkey.DB)
	assert.Equal(t, 250*time.Millisecond, cfg.Onboarding.AutosaveDelay)
	assert.Equal(t, 48*time.Hour, cfg.Onboarding.ResumeTTL)
	assert.Equal(t, "$2a$10$hash", cfg.Admin.KeyHash)
	assert.Equal(t, "require", cfg.DB.SSLMode)
	assert.Equal(t, "Bearer abc", cfg.Telemetry.OTLPHeaders["authorization"])
	assert.Equal(t, "coaching", cfg.Telemetry.OTLPHeaders["x-team"])
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, time.Second, cfg.Onboarding.AutosaveDelay)
	assert.Equal(t, "onboarding:resume", cfg.Valkey.Prefix)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "access_token", cfg.Auth.AccessCookieName)
	assert.Equal(t, "onboarding-service", cfg.Telemetry.ServiceName)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("DB_NAME", "onboarding")
	t.Setenv("DB_USERNAME", "user")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingDatabase(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_USERNAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ONBOARDING_AUTOSAVE_DELAY", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ONBOARDING_AUTOSAVE_DELAY", "1s")
	t.Setenv("ONBOARDING_RESUME_TTL", "forever")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadInvalidValkeyDB(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VALKEY_DB", "two")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseCSV(" a ,, b "))
	assert.Nil(t, parseCSV(""))
	assert.True(t, getEnvBool("NOT_SET_ANYWHERE", true))
	assert.Empty(t, parseHeaders(""))
}
