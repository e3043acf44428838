package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PORT", "9000")

	cfg := FromEnv()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.MealsCacheTTL)
	assert.Equal(t, 5, cfg.NicknameMaxRetries)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MEALS_CACHE_TTL", "soon")
	t.Setenv("NICKNAME_MAX_RETRIES", "many")

	cfg := FromEnv()
	assert.Equal(t, 5*time.Minute, cfg.MealsCacheTTL)
	assert.Equal(t, 5, cfg.NicknameMaxRetries)
}

func TestFromEnvClampsRetries(t *testing.T) {
	t.Setenv("NICKNAME_MAX_RETRIES", "0")
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := FromEnv()
	assert.Equal(t, 1, cfg.NicknameMaxRetries)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CookieSecure)
}
