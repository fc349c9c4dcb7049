package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 100, cfg.PageSizeMax)
	assert.Equal(t, 1, cfg.MinCookingTime)
	assert.Equal(t, 32000, cfg.MaxIngredientAmount)
	assert.Equal(t, "/not-found", cfg.NotFoundPath)
	assert.Equal(t, "local", cfg.StorageBackend)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "file.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "DATABASE_URL")

	cfg.JWTSecret = "secret"
	cfg.DatabaseURL = "postgres://localhost/foodgram"
	require.NoError(t, cfg.Validate())

	cfg.StorageBackend = "s3"
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")
	cfg.S3Bucket = "media"
	require.NoError(t, cfg.Validate())

	cfg.MinCookingTime = 10
	cfg.MaxCookingTime = 5
	assert.ErrorContains(t, cfg.Validate(), "MIN_COOKING_TIME")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}
