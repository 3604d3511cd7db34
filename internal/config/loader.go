package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
// The provider credential is intentionally absent: it is supplied only via
// environment so it never lands in a config file.
type Config struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	BaseURL         string   `json:"base_url" yaml:"base_url" toml:"base_url"`
	Model           string   `json:"model" yaml:"model" toml:"model"`
	Temperature     float64  `json:"temperature" yaml:"temperature" toml:"temperature"`
	MaxConcurrent   int      `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	RequestTimeoutS int      `json:"request_timeout_s" yaml:"request_timeout_s" toml:"request_timeout_s"`
	RetryMax        int      `json:"retry_max" yaml:"retry_max" toml:"retry_max"`
	RetryDelayS     int      `json:"retry_delay_s" yaml:"retry_delay_s" toml:"retry_delay_s"`
	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled     bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods     []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders     []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
