package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123:token")
	t.Setenv("DATABASE_URL", "postgres://localhost/bot?sslmode=disable")
	t.Setenv("ADMIN_CHANNEL_ID", "-100200300")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "")
	t.Setenv("COUNTRY_CALLING_CODE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("CRON_SPEC_PENDING_DIGEST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(-100200300), cfg.AdminChannelID)
	assert.Equal(t, "+998", cfg.CountryCallingCode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0 9 * * *", cfg.CronSpecPendingDigest)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("COUNTRY_CALLING_CODE", "+7")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "+7", cfg.CountryCallingCode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_TOKEN", "")
	_, err := Load()
	assert.ErrorContains(t, err, "TELEGRAM_TOKEN")

	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	setRequired(t)
	t.Setenv("ADMIN_CHANNEL_ID", "")
	_, err = Load()
	assert.ErrorContains(t, err, "ADMIN_CHANNEL_ID")
}

func TestLoad_InvalidAdminChannelID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_CHANNEL_ID", "not-a-number")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid ADMIN_CHANNEL_ID")
}
