package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPostgresEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "netclass")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "netclass_db")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setPostgresEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "netclass_session", cfg.Session.CookieName)
	assert.Equal(t, 50, cfg.Notifier.HealthThreshold)
	assert.Equal(t, "netclass", cfg.MQTT.TopicPrefix)
	assert.False(t, cfg.Maintenance.Enabled)
	assert.True(t, cfg.Database.Migrate)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")
	t.Setenv("MAINTENANCE_ENABLED", "true")
	t.Setenv("MAINTENANCE_HOUR", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Session.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Security.TrustedProxies)
	assert.True(t, cfg.Maintenance.Enabled)
	assert.Equal(t, 4, cfg.Maintenance.Hour)
}

func TestLoadConfig_MissingDatabaseCredentials(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database user is required")
	assert.Contains(t, err.Error(), "database password is required")
}

func TestLoadConfig_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MEMORY_ADMIN_PASSWORD", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory admin password is required")

	t.Setenv("MEMORY_ADMIN_PASSWORD", "changeme")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "admin", cfg.MemoryAdminUsername)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("MAINTENANCE_HOUR", "25")
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store driver "mysql"`)
	assert.Contains(t, err.Error(), "maintenance hour must be between 0 and 23")
	assert.Contains(t, err.Error(), `unknown log level "verbose"`)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
