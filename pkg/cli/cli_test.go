package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/commercemock/pkg/config"
	"github.com/getmockd/commercemock/pkg/logging"
)

const zoneFixture = `
- {project: demo, type: zone, draft: {key: eu, name: Europe}}
- {project: demo, type: zones, draft: {key: us, name: America}}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "commercemock dev (commit none, built unknown)\n", out)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	seedPath := writeFile(t, dir, "zones.yaml", zoneFixture)
	cfgPath := writeFile(t, dir, "commercemock.yml", "server:\n  port: 9100\nseed:\n  files: ["+seedPath+"]\n")

	out, err := execute(t, context.Background(), "validate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "listen 0.0.0.0:9100")
	assert.Contains(t, out, "1 seed files, 2 fixtures OK")
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	badDraft := writeFile(t, dir, "bad-draft.yaml", "{project: demo, type: zone, draft: {key: eu}}")
	unknownType := writeFile(t, dir, "unknown.yaml", "{project: demo, type: product, draft: {}}")

	tests := []struct {
		name string
		args []string
	}{
		{name: "invalid port", args: []string{"validate", "--port", "70000"}},
		{name: "invalid log level", args: []string{"validate", "--log-level", "trace"}},
		{name: "missing config", args: []string{"validate", "--config", filepath.Join(dir, "missing.yaml")}},
		{name: "missing seed file", args: []string{"validate", "--seed", filepath.Join(dir, "missing.yaml")}},
		{name: "draft fails schema", args: []string{"validate", "--seed", badDraft}},
		{name: "unknown type", args: []string{"validate", "--seed", unknownType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, context.Background(), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestValidate_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "commercemock.yaml", "server:\n  port: 9100\n")
	t.Setenv("COMMERCEMOCK_SERVER_PORT", "9200")

	out, err := execute(t, context.Background(), "validate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, ":9200", "environment overrides the file")

	out, err = execute(t, context.Background(), "validate", "--config", cfgPath, "--port", "9300")
	require.NoError(t, err)
	assert.Contains(t, out, ":9300", "flags override the environment")
}

func TestNewServer_LoadsSeeds(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Seed.Files = []string{writeFile(t, dir, "zones.yaml", zoneFixture)}

	srv, err := newServer(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demo/zones?sort=key", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Total   int `json:"total"`
		Results []struct {
			Key string `json:"key"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "eu", page.Results[0].Key)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))
	assert.Contains(t, rec.Body.String(), `"createCount":0`, "seeding is not counted")
}

func TestNewServer_SeedFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Seed.Files = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := newServer(context.Background(), cfg, logging.Nop())
	assert.Error(t, err)
}

func TestServe_StopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, "serve", "--host", "127.0.0.1", "--port", "0")
	assert.NoError(t, err)
}
