package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSQLite(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "/tmp/orgatagova.db")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("TIMEZONE", "UTC")

	cfg := Load()
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "/tmp/orgatagova.db", cfg.DatabaseURL)
	require.Equal(t, 3*time.Second, cfg.TxTimeout)
	require.True(t, cfg.DBAutoMigrate)
	require.Equal(t, 60, cfg.AccessTTLMin)
	require.Equal(t, time.UTC, cfg.Location())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	require.Equal(t, time.UTC, Config{Timezone: "Mars/Olympus"}.Location())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "YES")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "250ms")
	t.Setenv("X_SET", "get, head,,post")

	require.True(t, envBool("X_BOOL", false))
	require.False(t, envBool("X_MISSING", false))
	require.Equal(t, 7, envInt("X_INT", 7))
	require.Equal(t, 250*time.Millisecond, envDur("X_DUR", time.Second))
	require.Equal(t, map[string]bool{"GET": true, "HEAD": true, "POST": true}, envSet("X_SET", ""))
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 5, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 2*time.Second, cfg.RefillInterval)
	require.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.Equal(t, 15*time.Second, cfg.TTL)
	require.Equal(t, "orgatagova:cache", cfg.Prefix)
}

func TestLoadRedisConfigHostPort(t *testing.T) {
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	require.Equal(t, "cache:6380", LoadRedisConfig().Addr)
}

func TestLoadEventsConfigPrefersRabbitURL(t *testing.T) {
	t.Setenv("AMQP_URL", "amqp://b")
	t.Setenv("RABBITMQ_URL", "amqp://a")
	cfg := LoadEventsConfig()
	require.Equal(t, "amqp://a", cfg.URL)
	require.Equal(t, "carpool.events", cfg.Queue)
	require.False(t, cfg.Enabled)
}
