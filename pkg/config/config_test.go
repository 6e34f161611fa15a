package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_TTL", "PAGE_SIZE", "IMAGE_STORE", "MEDIA_URL", "PDF_FONT_PATH", "AUTH_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, "fs", cfg.ImageStore)
	assert.Equal(t, "/media/", cfg.MediaURL)
	assert.Empty(t, cfg.PDFFontPath)
	assert.Equal(t, 20, cfg.AuthRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("PAGE_SIZE", "12")
	t.Setenv("IMAGE_STORE", "s3")
	t.Setenv("S3_BUCKET", "recipes")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, "s3", cfg.ImageStore)
	assert.Equal(t, "recipes", cfg.S3Bucket)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("PAGE_SIZE", "-3")

	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.PageSize)
}

func TestGetPositiveInt(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 4, getPositiveInt("SOME_INT", 4))
	t.Setenv("SOME_INT", "0")
	assert.Equal(t, 4, getPositiveInt("SOME_INT", 4))
	t.Setenv("SOME_INT", "7")
	assert.Equal(t, 7, getPositiveInt("SOME_INT", 4))
	t.Setenv("SOME_INT", "0")
	assert.Equal(t, 0, getNonNegativeInt("SOME_INT", 4))
}
