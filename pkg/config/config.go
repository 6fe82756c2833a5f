package config

import (
	"fmt"
	"time"

	"github.com/getmockd/commercemock/pkg/logging"
	"github.com/getmockd/commercemock/pkg/repository"
)

// Default values.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8989
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Seed   SeedConfig   `yaml:"seed"`
	Query  QueryConfig  `yaml:"query"`

	// StrictDrafts validates drafts against the embedded JSON schemas.
	StrictDrafts bool `yaml:"strictDrafts" split_words:"true"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File additionally receives JSON records when set.
	File string `yaml:"file"`
}

// SeedConfig lists fixture files loaded at startup.
type SeedConfig struct {
	// Files holds paths or doublestar globs.
	Files []string `yaml:"files"`
}

// QueryConfig overrides the query page sizes.
type QueryConfig struct {
	DefaultLimit int `yaml:"defaultLimit" split_words:"true"`
	MaxLimit     int `yaml:"maxLimit" split_words:"true"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Query: QueryConfig{
			DefaultLimit: repository.DefaultLimit,
			MaxLimit:     repository.MaxLimit,
		},
	}
}

// ValidationError describes an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port >= 65536 {
		return &ValidationError{Field: "server.port", Message: "port must be between 0 and 65535"}
	}
	if c.Server.ReadTimeout < 0 {
		return &ValidationError{Field: "server.readTimeout", Message: "must not be negative"}
	}
	if c.Server.WriteTimeout < 0 {
		return &ValidationError{Field: "server.writeTimeout", Message: "must not be negative"}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return &ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown level %q, use debug, info, warn or error", c.Log.Level),
		}
	}
	if !logging.ValidFormat(c.Log.Format) {
		return &ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("unknown format %q, use text or json", c.Log.Format),
		}
	}
	if c.Query.DefaultLimit < 1 {
		return &ValidationError{Field: "query.defaultLimit", Message: "must be at least 1"}
	}
	if c.Query.MaxLimit < c.Query.DefaultLimit {
		return &ValidationError{
			Field:   "query.maxLimit",
			Message: fmt.Sprintf("must not be lower than defaultLimit (%d)", c.Query.DefaultLimit),
		}
	}
	for i, pattern := range c.Seed.Files {
		if pattern == "" {
			return &ValidationError{Field: fmt.Sprintf("seed.files[%d]", i), Message: "must not be empty"}
		}
	}
	return nil
}

// LoggingConfig converts the log section for logging.Open.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	cfg.File = c.Log.File
	return cfg
}
