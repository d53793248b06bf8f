// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"3001"`

	// ベースとなる GCP プロジェクト ID
	GCPProjectID       string `env:"GCP_PROJECT_ID"`
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID"`
	FirebaseProjectID  string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile    string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Web API key used to verify passwords on login (empty = no password check)
	FirebaseAPIKey string `env:"FIREBASE_API_KEY"`

	CORSOrigins          []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitWindowMS    int      `env:"RATE_LIMIT_WINDOW_MS" envDefault:"900000"`
	RateLimitMaxRequests int      `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`

	ProductImageBucket string `env:"PRODUCT_IMAGE_BUCKET"`

	SendGridAPIKey       string `env:"SENDGRID_API_KEY"`
	SendGridAPIKeySecret string `env:"SENDGRID_API_KEY_SECRET"` // projects/<p>/secrets/<id>/versions/latest
	SendGridFrom         string `env:"SENDGRID_FROM"`

	// ★ 任意: 注文レジャー（Postgres）。空なら無効
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
	LogJSON  bool   `env:"LOG_JSON"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	// ★ FIRESTORE_PROJECT_ID / FIREBASE_PROJECT_ID が未指定なら GCP のデフォルトを使う
	if cfg.FirestoreProjectID == "" {
		cfg.FirestoreProjectID = cfg.GCPProjectID
	}
	if cfg.FirebaseProjectID == "" {
		cfg.FirebaseProjectID = cfg.FirestoreProjectID
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RateLimitWindowMS <= 0 {
		return errors.New("config: RATE_LIMIT_WINDOW_MS must be positive")
	}
	if c.RateLimitMaxRequests <= 0 {
		return errors.New("config: RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	return nil
}

// IsDevelopment gates verbose error messages.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RateLimitWindow returns the window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}
