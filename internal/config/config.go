// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Env           string `mapstructure:"ENV"`
	ServerPort    int    `mapstructure:"SERVER_PORT"`
	DBPath        string `mapstructure:"DB_PATH"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TokenDuration string `mapstructure:"TOKEN_DURATION"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from path/.env and the process environment.
// Environment variables win over file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "."
	}

	v := viper.New()
	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_PATH", "./data/spendwise.db")
	v.SetDefault("TOKEN_DURATION", "24h")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; the environment still applies.
		slog.Warn("Unable to read config file", "error", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.ServerPort == 0 {
		return fmt.Errorf("server port must be specified")
	}
	if config.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be specified")
	}
	if _, err := time.ParseDuration(config.TokenDuration); err != nil {
		return fmt.Errorf("invalid TOKEN_DURATION: %w", err)
	}
	return nil
}

// TokenTTL returns the parsed session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.TokenDuration)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
