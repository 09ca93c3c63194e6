package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_URL", "SQLITE_PATH", "SESSION_TTL", "DEV_SEED", "CORS_ALLOWED_ORIGINS", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 12*time.Hour, c.SessionTTL)
	assert.Equal(t, BackendMemory, c.Backend())
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 1<<20, c.MaxHeaderBytes)
	assert.False(t, c.DevSeed)
	assert.Nil(t, c.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SQLITE_PATH", "/tmp/rb.db")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DEV_SEED", "yes")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_FORMAT", "TEXT")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, BackendSQLite, c.Backend())
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.True(t, c.DevSeed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
	assert.Equal(t, "text", c.LogFormat)

	t.Setenv("DATABASE_URL", "postgres://localhost/rb")
	c, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, c.Backend())
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "-1h")
	_, err = FromEnv()
	assert.Error(t, err)

	t.Setenv("SESSION_TTL", "")
	t.Setenv("HTTP_MAX_HEADER_BYTES", "lots")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "HTTP_MAX_HEADER_BYTES")
}
