package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "PORT", "DB_DRIVER", "REQUEST_TIMEOUT", "REDIS_ADDR", "CORS_ORIGINS")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Redis.CacheEnabled())
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Server.Origins())
}

func TestLoad_FromEnv(t *testing.T) {
	unsetenv(t, "DATABASE_URL")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BARCODE_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "shop.db", cfg.Database.DSN())
	assert.True(t, cfg.Redis.CacheEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "pos", Port: "5432", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=pos port=5432 sslmode=disable TimeZone=UTC", c.DSN())

	c.URL = "postgres://u:p@db/pos"
	assert.Equal(t, "postgres://u:p@db/pos", c.DSN())
}
