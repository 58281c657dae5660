package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mimir-aip/carprice/pkg/logging"
	"gopkg.in/yaml.v3"
)

// DefaultFallbackBrands is offered in the brand dropdown when the model does
// not expose its trained Brand_* columns.
var DefaultFallbackBrands = []string{
	"Maruti", "Hyundai", "Honda", "Toyota", "Mercedes-Benz", "Volkswagen",
	"Ford", "Mahindra", "BMW", "Audi", "Tata",
}

// Config holds the application configuration
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Server      ServerConfig   `yaml:"server" json:"server"`
	Model       ModelConfig    `yaml:"model" json:"model"`
	Encoding    EncodingConfig `yaml:"encoding" json:"encoding"`
	Form        FormConfig     `yaml:"form" json:"form"`
	Logging     logging.Config `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" json:"idle_timeout"`   // seconds
}

// ModelConfig locates the model artifact and describes its output
type ModelConfig struct {
	Path string `yaml:"path" json:"path"`
	// FallbackSchema is used when the artifact does not list its feature names.
	FallbackSchema []string `yaml:"fallback_schema" json:"fallback_schema"`
	// PriceUnit is the scale the model was trained on, e.g. "Lakhs".
	PriceUnit string `yaml:"price_unit" json:"price_unit"`
}

// EncodingConfig controls how categorical fields reach the model
type EncodingConfig struct {
	// Separator joins field and value in indicator column names.
	Separator string `yaml:"separator" json:"separator"`
	// Label maps a field to numeric codes instead of one-hot columns.
	Label map[string]map[string]float64 `yaml:"label" json:"label"`
}

// FormConfig controls the optional parts of the input form
type FormConfig struct {
	Brand          bool     `yaml:"brand" json:"brand"`
	FallbackBrands []string `yaml:"fallback_brands" json:"fallback_brands"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
			IdleTimeout:  60,
		},
		Model: ModelConfig{
			Path:      "car_price_model_rf.json",
			PriceUnit: "Lakhs",
		},
		Encoding: EncodingConfig{
			Separator: "_",
		},
		Form: FormConfig{
			Brand:          true,
			FallbackBrands: append([]string(nil), DefaultFallbackBrands...),
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional file and
// the environment, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile overlays a YAML or JSON file onto the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", filepath.Ext(path))
	}

	return nil
}

// applyEnvironment overrides values with environment variables
func (c *Config) applyEnvironment() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.Server.Host = getEnv("CARPRICE_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Model.Path = getEnv("CARPRICE_MODEL_PATH", c.Model.Path)
	c.Model.PriceUnit = getEnv("CARPRICE_PRICE_UNIT", c.Model.PriceUnit)
	c.Model.FallbackSchema = getEnvAsList("CARPRICE_FALLBACK_SCHEMA", c.Model.FallbackSchema)
	c.Form.FallbackBrands = getEnvAsList("CARPRICE_FALLBACK_BRANDS", c.Form.FallbackBrands)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if strings.TrimSpace(c.Model.Path) == "" {
		return fmt.Errorf("model.path is required")
	}
	if strings.TrimSpace(c.Model.PriceUnit) == "" {
		return fmt.Errorf("model.price_unit is required")
	}
	if c.Encoding.Separator == "" {
		return fmt.Errorf("encoding.separator must not be empty")
	}
	for field, codes := range c.Encoding.Label {
		if len(codes) == 0 {
			return fmt.Errorf("encoding.label.%s has no codes", field)
		}
	}
	if c.Form.Brand && len(c.Form.FallbackBrands) == 0 {
		return fmt.Errorf("form.fallback_brands is required when the brand field is enabled")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeouts returns read, write and idle timeouts as durations
func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeout) * time.Second,
		time.Duration(s.WriteTimeout) * time.Second,
		time.Duration(s.IdleTimeout) * time.Second
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated environment variable
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
