// Package config loads service configuration: struct defaults, an optional
// TOML file, then environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"
)

// Development fallbacks. Validate rejects them outside dev environments.
const (
	DevEncryptionKey = "dev-encryption-key-change-me-now!"
	DevSigningKey    = "dev-secret-key-change-in-production"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `toml:"addr" default:":8080"`
	Environment     string        `toml:"environment" default:"dev"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" default:"15s"`
	RequestTimeout  time.Duration `toml:"request_timeout" default:"30s"`
	MaxUploadBytes  int64         `toml:"max_upload_bytes" default:"10485760"`
}

// Database holds PostgreSQL pool settings.
type Database struct {
	URL             string        `toml:"url"`
	MaxOpenConns    int           `toml:"max_open_conns" default:"20"`
	MaxIdleConns    int           `toml:"max_idle_conns" default:"5"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" default:"5m"`
	AutoMigrate     bool          `toml:"auto_migrate" default:"true"`
}

// RedisConfig holds Redis client settings.
type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size" default:"10"`
	MinIdleConns int           `toml:"min_idle_conns" default:"2"`
	DialTimeout  time.Duration `toml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `toml:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `toml:"write_timeout" default:"3s"`
}

// Kafka holds the audit event producer settings. Empty Brokers disables it.
type Kafka struct {
	Brokers    string `toml:"brokers"`
	AuditTopic string `toml:"audit_topic" default:"biogate.audit"`
}

// Biometric configures the enrollment pipeline.
type Biometric struct {
	StoreBackend    string `toml:"store_backend" default:"memory"`
	EncryptionKey   string `toml:"encryption_key"`
	ImagingDisabled bool   `toml:"imaging_disabled"`
	FaceCascadePath string `toml:"face_cascade_path" default:"data/facefinder"`
}

// Auth configures service token validation.
type Auth struct {
	JWTSigningKey string        `toml:"jwt_signing_key"`
	Issuer        string        `toml:"issuer" default:"biogate"`
	Audience      string        `toml:"audience" default:"biogate-api"`
	TokenTTL      time.Duration `toml:"token_ttl" default:"15m"`
}

// Audit configures audit event delivery.
type Audit struct {
	// AsyncBuffer is the publisher queue size; 0 publishes synchronously.
	AsyncBuffer int `toml:"async_buffer" default:"1024"`
}

// Log configures log output.
type Log struct {
	Level        string        `toml:"level" default:"info"`
	File         string        `toml:"file"`
	MaxAge       time.Duration `toml:"max_age" default:"168h"`
	ContainerEnv bool          `toml:"container_env"`
}

type Config struct {
	Server    Server      `toml:"server"`
	Database  Database    `toml:"database"`
	Redis     RedisConfig `toml:"redis"`
	Kafka     Kafka       `toml:"kafka"`
	Biometric Biometric   `toml:"biometric"`
	Auth      Auth        `toml:"auth"`
	Audit     Audit       `toml:"audit"`
	Log       Log         `toml:"log"`
}

// Load builds the configuration. path may be empty; otherwise it names a
// TOML file whose values override the defaults. Environment variables
// override both.
func Load(path string) (Config, error) {
	var cfg Config
	defaults.SetDefaults(&cfg)

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if cfg.Biometric.EncryptionKey == "" {
		cfg.Biometric.EncryptionKey = DevEncryptionKey
	}
	if cfg.Auth.JWTSigningKey == "" {
		cfg.Auth.JWTSigningKey = DevSigningKey
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads configuration from BIOGATE_CONFIG (if set) and the environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv("BIOGATE_CONFIG"))
}

// IsDev reports whether dev fallbacks are acceptable.
func (c Config) IsDev() bool {
	switch c.Server.Environment {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Biometric.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store backend"))
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Biometric.StoreBackend))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.Server.MaxUploadBytes < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if !c.IsDev() {
		if c.Biometric.EncryptionKey == DevEncryptionKey {
			errs = append(errs, errors.New("ENCRYPTION_KEY must be set outside dev environments"))
		}
		if c.Auth.JWTSigningKey == DevSigningKey {
			errs = append(errs, errors.New("JWT_SIGNING_KEY must be set outside dev environments"))
		}
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("BIOGATE_ADDR", &c.Server.Addr)
	str("BIOGATE_ENV", &c.Server.Environment)
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		} else {
			c.Server.MaxUploadBytes = n
		}
	}
	str("DATABASE_URL", &c.Database.URL)
	integer("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	boolean("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)
	str("REDIS_URL", &c.Redis.URL)
	str("KAFKA_BROKERS", &c.Kafka.Brokers)
	str("AUDIT_TOPIC", &c.Kafka.AuditTopic)
	str("STORE_BACKEND", &c.Biometric.StoreBackend)
	str("ENCRYPTION_KEY", &c.Biometric.EncryptionKey)
	boolean("BIOMETRIC_IMAGING_DISABLED", &c.Biometric.ImagingDisabled)
	str("FACE_CASCADE_PATH", &c.Biometric.FaceCascadePath)
	str("JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)
	duration("TOKEN_TTL", &c.Auth.TokenTTL)
	integer("AUDIT_ASYNC_BUFFER", &c.Audit.AsyncBuffer)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	if _, ok := lookup("CONTAINER_ENV"); ok {
		c.Log.ContainerEnv = true
	}
	c.Biometric.StoreBackend = strings.ToLower(c.Biometric.StoreBackend)

	return errors.Join(errs...)
}
