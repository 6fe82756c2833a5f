package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "COMMERCEMOCK"

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// Load returns the defaults overlaid with the file at path, if path is not
// empty, and then with the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a configuration file on top of the defaults.
// The format is detected from the extension (.yaml, .yml for YAML, otherwise JSON).
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from COMMERCEMOCK_* environment variables.
// Unset variables leave the current values in place.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return c.parseYAML(data, path)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	// JSON is decoded with the YAML decoder so durations such as "30s" and
	// the yaml field names apply to both formats.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w in file %s: %v", ErrInvalidJSON, path, err)
	}
	return nil
}

func (c *Config) parseYAML(data []byte, path string) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w in file %s: %v", ErrInvalidYAML, path, err)
	}
	return nil
}
