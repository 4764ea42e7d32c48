// Package config loads the client configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

// Config holds the client configuration
type Config struct {
	CUIT          int64
	Production    bool
	Endpoint      string // overrides the production/homologation endpoint
	TicketDir     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Timeout       time.Duration
	LogLevel      string
	LogFormat     string
	ServerAddress string
}

// Load reads the configuration. Values from envFile are applied first and
// are overridden by the process environment. A missing envFile is ignored.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("AFIP_CUIT", 0)
	v.SetDefault("AFIP_PRODUCTION", false)
	v.SetDefault("AFIP_WSDL_URL", "")
	v.SetDefault("AFIP_TA_DIR", "resources")
	v.SetDefault("AFIP_REDIS_ADDR", "")
	v.SetDefault("AFIP_REDIS_PASSWORD", "")
	v.SetDefault("AFIP_REDIS_DB", 0)
	v.SetDefault("AFIP_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("AFIP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid AFIP_TIMEOUT: %w", err)
	}

	cfg := &Config{
		CUIT:          v.GetInt64("AFIP_CUIT"),
		Production:    v.GetBool("AFIP_PRODUCTION"),
		Endpoint:      v.GetString("AFIP_WSDL_URL"),
		TicketDir:     v.GetString("AFIP_TA_DIR"),
		RedisAddr:     v.GetString("AFIP_REDIS_ADDR"),
		RedisPassword: v.GetString("AFIP_REDIS_PASSWORD"),
		RedisDB:       v.GetInt("AFIP_REDIS_DB"),
		Timeout:       timeout,
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		ServerAddress: v.GetString("SERVER_ADDRESS"),
	}

	return cfg, nil
}

// ServiceURL returns the endpoint of the billing service
func (c *Config) ServiceURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Production {
		return wsmtxca.ProductionURL
	}
	return wsmtxca.HomologationURL
}

// Validate checks that the configuration can reach the service
func (c *Config) Validate() error {
	if c.CUIT <= 0 {
		return errors.New("AFIP_CUIT is required")
	}
	if c.Timeout <= 0 {
		return errors.New("AFIP_TIMEOUT must be positive")
	}
	if c.RedisAddr == "" && c.TicketDir == "" {
		return errors.New("either AFIP_TA_DIR or AFIP_REDIS_ADDR must be set")
	}
	return nil
}
