package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, BackendMemory, cfg.Biometric.StoreBackend)
	assert.Equal(t, "biogate.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, 1024, cfg.Audit.AsyncBuffer)
	assert.Equal(t, 168*time.Hour, cfg.Log.MaxAge)
	assert.True(t, cfg.IsDev())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biogate.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9090"

[database]
url = "postgres://file/db"
max_open_conns = 8

[biometric]
store_backend = "postgres"
imaging_disabled = true
`), 0o600))

	t.Setenv("DB_MAX_OPEN_CONNS", "12")
	t.Setenv("BIOMETRIC_IMAGING_DISABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, 12, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Biometric.ImagingDisabled)
	assert.Equal(t, BackendPostgres, cfg.Biometric.StoreBackend)
}

func TestApplyEnv(t *testing.T) {
	var cfg Config
	err := cfg.applyEnv(envFrom(map[string]string{
		"STORE_BACKEND":   "Redis",
		"REDIS_URL":       "redis://localhost:6379/0",
		"KAFKA_BROKERS":   "a:9092,b:9092",
		"TOKEN_TTL":       "1h",
		"CONTAINER_ENV":   "",
		"LOG_FILE":        "/var/log/biogate.log",
		"ENCRYPTION_KEY":  "k",
		"DB_AUTO_MIGRATE": "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Biometric.StoreBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "a:9092,b:9092", cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Log.ContainerEnv)
	assert.Equal(t, "k", cfg.Biometric.EncryptionKey)
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	var cfg Config
	err := cfg.applyEnv(envFrom(map[string]string{
		"DB_MAX_OPEN_CONNS":          "many",
		"BIOMETRIC_IMAGING_DISABLED": "sometimes",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "BIOMETRIC_IMAGING_DISABLED")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("postgres backend needs a url", func(t *testing.T) {
		cfg := base()
		cfg.Biometric.StoreBackend = BackendPostgres
		assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.Biometric.StoreBackend = "mongo"
		assert.ErrorContains(t, cfg.Validate(), "unknown STORE_BACKEND")
	})

	t.Run("dev keys rejected in production", func(t *testing.T) {
		cfg := base()
		cfg.Server.Environment = "production"
		err := cfg.Validate()
		assert.ErrorContains(t, err, "ENCRYPTION_KEY")
		assert.ErrorContains(t, err, "JWT_SIGNING_KEY")
	})
}
