package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backend names accepted in STORAGE.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	Storage     string `env:"STORAGE" envDefault:"redis"`
	RedisURL    string `env:"REDIS_URL" envDefault:""`
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`
	StorageKey  string `env:"STORAGE_KEY" envDefault:"healthcrm_chats"`
	AgentName   string `env:"AGENT_NAME" envDefault:"Admin User"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE=redis")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE %q (expected memory, redis or postgres)", c.Storage)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
