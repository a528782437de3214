// Package config loads server configuration from environment variables
// using ilyakaznacheev/cleanenv. Sub-package configs (database, mailer,
// Sentry) are embedded so the whole surface parses in one pass.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/lifeforge/forge/pkg/db"
	"github.com/lifeforge/forge/pkg/logger"
	"github.com/lifeforge/forge/pkg/mailer/resend"
	"github.com/lifeforge/forge/pkg/storage"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Redis    RedisConfig
	Auth     AuthConfig
	Sentry   logger.SentryConfig
	Mailer   resend.Config
	Storage  StorageConfig
}

// ServerConfig holds HTTP server and runtime settings.
type ServerConfig struct {
	Address         string        `env:"SERVER_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`

	// ScratchDir is where uploaded media is staged before storage.
	// Empty means the OS temp dir.
	ScratchDir string `env:"SERVER_SCRATCH_DIR"`

	// KeyPairPath is the PEM file holding the RSA key pair used for
	// session-key wrapping. A missing file is generated on startup.
	KeyPairPath string `env:"SERVER_KEYPAIR_PATH" env-default:"forge_keypair.pem"`
}

// RedisConfig holds the optional Redis connection. When unset, sessions
// and OTP codes fall back to in-memory stores.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	Issuer    string        `env:"JWT_ISSUER" env-default:"lifeforge"`
	TokenTTL  time.Duration `env:"JWT_TOKEN_TTL" env-default:"720h"`
}

// StorageConfig maps S3 settings from the environment. It mirrors
// storage.Config, which carries no env tags of its own.
type StorageConfig struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" env-default:"us-east-1"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

// Enabled reports whether object storage was configured.
func (c StorageConfig) Enabled() bool { return c.Bucket != "" }

// ToStorage converts the env-tagged struct into a storage.Config.
func (c StorageConfig) ToStorage() storage.Config {
	return storage.Config{
		Bucket:    c.Bucket,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
		Region:    c.Region,
		PublicURL: c.PublicURL,
	}
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
