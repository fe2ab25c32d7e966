package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// chdir moves into an empty directory so no stray .env or e2e.yaml is read
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("E2E_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "playwright", cfg.Engine)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Wait)
	assert.Equal(t, 100*time.Millisecond, cfg.Timeouts.Poll)
	assert.Equal(t, DefaultEditURL, cfg.Targets.Edit)
}

func TestLoadPrecedence(t *testing.T) {
	dir := chdir(t)
	path := writeFile(t, dir, "custom.yaml", `
engine: chromedp
log_level: debug
browser:
  headless: false
  viewport_width: 1920
  viewport_height: 1080
timeouts:
  wait: 2s
  poll: 50ms
run:
  parallel: 4
reports:
  backend: sqlite
targets:
  sample_url: http://localhost:8080
`)
	writeFile(t, dir, ".env", "E2E_PARALLEL=6\nE2E_EDIT_URL=http://env-file/edit\n")
	t.Setenv("E2E_ENGINE", "selenium")
	t.Setenv("E2E_WAIT_TIMEOUT", "3s")
	// godotenv never overrides variables that are already set
	t.Setenv("E2E_PARALLEL", "2")
	t.Cleanup(func() { os.Unsetenv("E2E_EDIT_URL") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "selenium", cfg.Engine, "env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel, "file overrides default")
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Wait)
	assert.Equal(t, 50*time.Millisecond, cfg.Timeouts.Poll)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Navigation, "untouched default survives")
	assert.Equal(t, 2, cfg.Run.Parallel)
	assert.Equal(t, "sqlite", cfg.Reports.Backend)
	assert.Equal(t, "http://localhost:8080", cfg.Targets.SampleURL)
	assert.Equal(t, "http://env-file/edit", cfg.Targets.Edit, ".env fills unset variables")
}

func TestLoadDiscoversDefaultFile(t *testing.T) {
	dir := chdir(t)
	t.Setenv("E2E_CONFIG", "")
	writeFile(t, dir, DefaultConfigFile, "engine: static\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "static", cfg.Engine)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "unknown field", yaml: "engin: static\n"},
		{name: "bad duration", yaml: "timeouts:\n  wait: soon\n"},
		{name: "bad env int", env: map[string]string{"E2E_PARALLEL": "many"}},
		{name: "bad env bool", env: map[string]string{"E2E_HEADLESS": "maybe"}},
		{name: "bad viewport", env: map[string]string{"E2E_VIEWPORT": "wide"}},
		{name: "zero parallel", env: map[string]string{"E2E_PARALLEL": "0"}},
		{name: "unknown backend", yaml: "reports:\n  backend: csv\n"},
		{name: "negative poll", env: map[string]string{"E2E_POLL_INTERVAL": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdir(t)
			path := writeFile(t, dir, "cfg.yaml", tt.yaml)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseViewport(t *testing.T) {
	w, h, err := ParseViewport(" 1920X1080 ")
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	for _, bad := range []string{"", "1920", "x1080", "0x10", "10x-1"} {
		_, _, err := ParseViewport(bad)
		assert.Error(t, err, bad)
	}
}
