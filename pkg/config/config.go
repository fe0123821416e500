package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// DefaultConfigFile is read from the working directory when no path is given
const DefaultConfigFile = "config.toml"

// Config holds application configuration
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Storage  StorageConfig   `toml:"storage"`
	Redis    RedisConfig     `toml:"redis"`
	Planning dto.PlanOptions `toml:"planning"`
}

// ServerConfig configures the dashboard API
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// StorageConfig selects where uploaded datasets and runs are kept.
// An empty driver keeps them in memory.
type StorageConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// RedisConfig configures the plan result cache
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	Password   string `toml:"password"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			DevMode: false,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Host:       "localhost",
			Port:       "6379",
			TTLMinutes: 30,
		},
		Planning: dto.DefaultPlanOptions(),
	}
}

// Load builds the configuration from defaults, then the TOML file, then .env and the environment.
// A missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	LoadDotEnv()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the settings present in a TOML file
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the environment without overriding variables already set
func LoadDotEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️  Failed to load .env: %v", err)
	}
}

// ApplyEnv overrides settings from environment variables
func (c *Config) ApplyEnv() error {
	p := &c.Planning
	p.Horizon = getEnvInt("SUPPLYPLAN_HORIZON", p.Horizon)
	p.ServiceLevel = getEnvFloat("SUPPLYPLAN_SERVICE_LEVEL", p.ServiceLevel)
	p.Confidence = getEnvFloat("SUPPLYPLAN_CONFIDENCE", p.Confidence)
	p.Workers = getEnvInt("SUPPLYPLAN_WORKERS", p.Workers)
	p.Method = getEnvOrDefault("SUPPLYPLAN_METHOD", p.Method)

	if v := os.Getenv("SUPPLYPLAN_GRANULARITY"); v != "" {
		g, err := entities.ParseGranularity(v)
		if err != nil {
			return fmt.Errorf("SUPPLYPLAN_GRANULARITY: %w", err)
		}
		p.Granularity = g
	}
	if v := os.Getenv("SUPPLYPLAN_FALLBACK"); v != "" {
		policy, err := dto.ParseFallbackPolicy(v)
		if err != nil {
			return fmt.Errorf("SUPPLYPLAN_FALLBACK: %w", err)
		}
		p.FallbackPolicy = policy
	}

	c.Server.Port = getEnvInt("SUPPLYPLAN_PORT", c.Server.Port)
	c.Storage.Driver = getEnvOrDefault("SUPPLYPLAN_DB_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnvOrDefault("SUPPLYPLAN_DB_DSN", c.Storage.DSN)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Host = getEnvOrDefault("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnvOrDefault("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)
	return nil
}

// PlanOptions returns a copy of the planning options
func (c *Config) PlanOptions() dto.PlanOptions {
	opts := c.Planning
	opts.SKUs = append([]entities.SKU(nil), c.Planning.SKUs...)
	return opts
}

// Addr is the listen address of the dashboard API
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
