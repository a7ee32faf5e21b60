package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is populated from TESTIMONIO_* environment variables.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	BaseURL    string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"db:5432"`
	DatabaseUser     string `envconfig:"DATABASE_USER" required:"true"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseName     string `envconfig:"DATABASE_NAME" required:"true"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"redis:6379"`

	AuthClientID     string `envconfig:"AUTH_CLIENT_ID" required:"true"`
	AuthClientSecret string `envconfig:"AUTH_CLIENT_SECRET" required:"true"`
	AuthSessionKey   string `envconfig:"AUTH_SESSION_KEY" required:"true"`

	APIPath string `envconfig:"API_PATH" default:""`
	Debug   bool   `envconfig:"DEBUG" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("testimonio", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
