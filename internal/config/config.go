// Package config loads the application configuration from the environment,
// with an optional YAML file overlay for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Backend selects the repository implementation at construction time. The
// choice is made exactly once; nothing re-checks it per call.
type Backend string

const (
	BackendDynamoDB Backend = "dynamodb"
	BackendMemory   Backend = "memory"
)

type Config struct {
	Environment string   `yaml:"environment" validate:"omitempty,oneof=development staging production"`
	Backend     Backend  `yaml:"backend" validate:"required,oneof=dynamodb memory"`
	TableName   string   `yaml:"table_name"`
	IndexName   string   `yaml:"index_name"`
	Cache       Cache    `yaml:"cache"`
	Features    Features `yaml:"features"`
}

// Cache holds the TTL overrides for the query cache.
type Cache struct {
	NoteTTL time.Duration `yaml:"note_ttl"`
	ListTTL time.Duration `yaml:"list_ttl"`
}

// Features contains feature flags for the application
type Features struct {
	EnableCaching        bool `yaml:"enable_caching"`
	EnableMetrics        bool `yaml:"enable_metrics"`
	EnableCircuitBreaker bool `yaml:"enable_circuit_breaker"`
}

// LoadConfig reads configuration from environment variables with development
// defaults. When TABLE_NAME is unset the in-memory fallback backend is
// selected.
func LoadConfig() Config {
	tableName := os.Getenv("TABLE_NAME")

	backend := BackendMemory
	if tableName != "" {
		backend = BackendDynamoDB
	}
	if override := os.Getenv("NOTES_BACKEND"); override != "" {
		backend = Backend(override)
	}

	indexName := os.Getenv("INDEX_NAME")

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	features := Features{
		EnableCaching:        os.Getenv("ENABLE_CACHING") != "false", // Default true
		EnableMetrics:        os.Getenv("ENABLE_METRICS") == "true",
		EnableCircuitBreaker: os.Getenv("ENABLE_CIRCUIT_BREAKER") == "true",
	}

	return Config{
		Environment: environment,
		Backend:     backend,
		TableName:   tableName,
		IndexName:   indexName,
		Features:    features,
	}
}

// fileOverlay mirrors Config with pointer feature flags, so a file that
// omits a flag is distinguishable from one that sets it to false.
type fileOverlay struct {
	Environment string  `yaml:"environment"`
	Backend     Backend `yaml:"backend"`
	TableName   string  `yaml:"table_name"`
	IndexName   string  `yaml:"index_name"`
	Cache       Cache   `yaml:"cache"`
	Features    struct {
		EnableCaching        *bool `yaml:"enable_caching"`
		EnableMetrics        *bool `yaml:"enable_metrics"`
		EnableCircuitBreaker *bool `yaml:"enable_circuit_breaker"`
	} `yaml:"features"`
}

// LoadConfigFile overlays a YAML file on top of the environment config.
// Fields left out of the file keep their environment values.
func LoadConfigFile(path string) (Config, error) {
	cfg := LoadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if overlay.Environment != "" {
		cfg.Environment = overlay.Environment
	}
	if overlay.Backend != "" {
		cfg.Backend = overlay.Backend
	}
	if overlay.TableName != "" {
		cfg.TableName = overlay.TableName
	}
	if overlay.IndexName != "" {
		cfg.IndexName = overlay.IndexName
	}
	if overlay.Cache.NoteTTL > 0 {
		cfg.Cache.NoteTTL = overlay.Cache.NoteTTL
	}
	if overlay.Cache.ListTTL > 0 {
		cfg.Cache.ListTTL = overlay.Cache.ListTTL
	}
	if overlay.Features.EnableCaching != nil {
		cfg.Features.EnableCaching = *overlay.Features.EnableCaching
	}
	if overlay.Features.EnableMetrics != nil {
		cfg.Features.EnableMetrics = *overlay.Features.EnableMetrics
	}
	if overlay.Features.EnableCircuitBreaker != nil {
		cfg.Features.EnableCircuitBreaker = *overlay.Features.EnableCircuitBreaker
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Backend == BackendDynamoDB && c.TableName == "" {
		return fmt.Errorf("invalid config: dynamodb backend requires a table name")
	}
	return nil
}
