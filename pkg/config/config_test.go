package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/commercemock/pkg/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Query.DefaultLimit)
	assert.Equal(t, 500, cfg.Query.MaxLimit)
	assert.False(t, cfg.StrictDrafts)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "commercemock.yaml", `
server:
  port: 9000
  readTimeout: 5s
log:
  level: debug
  format: json
seed:
  files:
    - fixtures/*.yaml
strictDrafts: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host, "unset fields keep their defaults")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"fixtures/*.yaml"}, cfg.Seed.Files)
	assert.True(t, cfg.StrictDrafts)
	require.NoError(t, cfg.Validate())

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, "commercemock.json", `{
		"server": {"port": 7000, "writeTimeout": "1m"},
		"query": {"defaultLimit": 50, "maxLimit": 100}
	}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 50, cfg.Query.DefaultLimit)
	assert.Equal(t, 100, cfg.Query.MaxLimit)
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: ErrFileNotFound,
		},
		{
			name:    "empty file",
			path:    func(t *testing.T) string { return writeFile(t, "empty.yaml", "  \n") },
			wantErr: ErrEmptyFile,
		},
		{
			name:    "invalid json",
			path:    func(t *testing.T) string { return writeFile(t, "bad.json", "{ invalid json }") },
			wantErr: ErrInvalidJSON,
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "server: [port") },
			wantErr: ErrInvalidYAML,
		},
		{
			name:    "wrong type",
			path:    func(t *testing.T) string { return writeFile(t, "type.yaml", "server:\n  port: eighty\n") },
			wantErr: ErrInvalidYAML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromFile(tt.path(t))
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "commercemock.yaml", "server:\n  port: 9000\nlog:\n  level: warn\n")
	t.Setenv("COMMERCEMOCK_SERVER_PORT", "9100")
	t.Setenv("COMMERCEMOCK_SEED_FILES", "a.yaml,b/*.yaml")
	t.Setenv("COMMERCEMOCK_STRICT_DRAFTS", "true")
	t.Setenv("COMMERCEMOCK_QUERY_MAX_LIMIT", "1000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"a.yaml", "b/*.yaml"}, cfg.Seed.Files)
	assert.True(t, cfg.StrictDrafts)
	assert.Equal(t, 1000, cfg.Query.MaxLimit)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("COMMERCEMOCK_SERVER_PORT", "http")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.readTimeout"},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero default limit", func(c *Config) { c.Query.DefaultLimit = 0 }, "query.defaultLimit"},
		{"max below default", func(c *Config) { c.Query.MaxLimit = 10 }, "query.maxLimit"},
		{"empty seed pattern", func(c *Config) { c.Seed.Files = []string{"a.yaml", ""} }, "seed.files[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
