package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evcharge/libs/config"
)

// Config defines booking service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"BOOKING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN          string `yaml:"dsn" env:"BOOKING_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"maxOpenConns" env:"BOOKING_POSTGRES_MAX_OPEN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr" env:"BOOKING_REDIS_ADDR"`
		Password string        `yaml:"password" env:"BOOKING_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"BOOKING_REDIS_DB"`
		LockTTL  time.Duration `yaml:"lockTTL" env:"BOOKING_SLOT_LOCK_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret  string        `yaml:"jwtSecret" env:"BOOKING_JWT_SECRET"`
		TokenTTL   time.Duration `yaml:"tokenTTL" env:"BOOKING_TOKEN_TTL"`
		BcryptCost int           `yaml:"bcryptCost" env:"BOOKING_BCRYPT_COST"`
	} `yaml:"auth"`
	Events struct {
		AMQPURL string `yaml:"amqpUrl" env:"BOOKING_AMQP_URL"`
	} `yaml:"events"`
}

// Load reads configuration via the shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.LockTTL = 10 * time.Second
	cfg.Auth.TokenTTL = time.Hour

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
