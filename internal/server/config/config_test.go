package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, "tgrelay.db", c.DatabaseDSN)
	assert.Equal(t, "./uploads", c.UploadDir)
	assert.Empty(t, c.UploadToken)
	assert.Equal(t, "admin", c.AdminUsername)
	assert.Empty(t, c.AdminPasswordHash)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, c.SessionRetention)
	assert.Equal(t, time.Hour, c.PruneInterval)
	assert.Equal(t, int64(2<<30), c.MaxUploadBytes)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_PATH", "/data/relay.db")
	t.Setenv("UPLOAD_TOKEN", "tok")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("SESSION_SECRET", "env-secret")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("COOKIE_SECURE", "true")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "/data/relay.db", c.DatabaseDSN)
	assert.Equal(t, "tok", c.UploadToken)
	assert.Equal(t, 48*time.Hour, c.SessionTTL)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, int64(1048576), c.MaxUploadBytes)
	assert.True(t, c.CookieSecure)
}

func TestParseEnv_MalformedValuesIgnored(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("COOKIE_SECURE", "yep")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, int64(2<<30), c.MaxUploadBytes)
	assert.False(t, c.CookieSecure)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, "tgrelay.db", c.DatabaseDSN)
}
