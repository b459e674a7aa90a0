// Package server provides configuration helpers that define runtime defaults,
// validation, and environment loading for the roomchat service.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/Tyrowin/roomchat/internal/joke"
)

var validate = validator.New()

// Config holds the server configuration settings.
type Config struct {
	Port           string   `envconfig:"SERVER_PORT" default:":8080" validate:"required"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	MaxMessageSize int64    `envconfig:"MAX_MESSAGE_SIZE" default:"4096" validate:"gt=0"`
	SendBuffer     int      `envconfig:"SEND_BUFFER" default:"256" validate:"gt=0"`

	JokeURL string `envconfig:"JOKE_URL" default:"https://icanhazdadjoke.com/" validate:"required,url"`
	// JokeTimeout bounds one joke fetch; zero means no bound.
	JokeTimeout time.Duration `envconfig:"JOKE_TIMEOUT" default:"0s" validate:"gte=0"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error disabled off"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  4096,
		SendBuffer:      256,
		JokeURL:         joke.DefaultURL,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, falling back to
// the defaults for unset ones, and validates the result.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// log.ParseLevel is case-insensitive, so LOG_LEVEL=INFO is accepted too.
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
