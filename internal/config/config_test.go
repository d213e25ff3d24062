package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:           "8480",
		Env:            "development",
		JWTSecret:      "your-secret-key-change-in-production",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		DBPassword:     "password",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8480", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 30, cfg.RefreshTTLDays)
	assert.NotEmpty(t, cfg.RedisURL)
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.AccessTTLMin = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RefreshTTLDays = -1
	assert.Error(t, cfg.Validate())

	assert.NoError(t, validConfig().Validate())
}

func TestValidate_ProductionStrictness(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.DBPassword = "genuinely-strong-password"
	cfg.GoogleClientID = "client-id"

	// The default JWT secret is rejected in production.
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.JWTSecret = "short"
	err = cfg.Validate()
	require.Error(t, err)

	cfg.JWTSecret = "a-production-grade-secret-of-32-plus-chars"
	assert.NoError(t, cfg.Validate())

	// No OAuth provider configured cannot work in production.
	cfg.GoogleClientID = ""
	cfg.GitHubClientID = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuth")

	cfg.GitHubClientID = "gh-client"
	cfg.DBPassword = "password"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}
