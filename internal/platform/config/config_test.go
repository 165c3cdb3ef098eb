package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://nestjs.fasthosttech.com", cfg.Remote.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "tickethub_session", cfg.Session.CookieName)
	assert.Equal(t, time.Duration(0), cfg.Session.TTL)
	assert.Equal(t, devSessionSecret, cfg.Session.Secret)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Catalog.BreakerThreshold)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TICKETHUB_ADDR", ":9090")
	t.Setenv("REMOTE_BASE_URL", "http://localhost:8082")
	t.Setenv("REMOTE_TIMEOUT", "2s")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.1.0/24,10.0.0.1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "http://localhost:8082", cfg.Remote.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"10.0.0.1", "10.0.1.0/24"}, cfg.TrustedProxies)
}

func TestFromEnvProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("REMOTE_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestFromEnvKafka(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Kafka.Enabled())

	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ACKS", "1")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "tickethub.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, "1", cfg.Kafka.Acks)
}

func TestFromEnvPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://tickethub@localhost:5432/tickethub")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)

	t.Setenv("DATABASE_CLEANUP_INTERVAL", "0s")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_CLEANUP_INTERVAL")
}
