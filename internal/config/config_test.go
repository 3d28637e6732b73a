package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
name: my-deck
data_dir: /tmp/deck
sources:
  - path: ./data/sales.csv
    alias: sales
grid:
  buffer_rows: 8
  default_column_width: 20
analyst:
  endpoint: https://analyst.example.com
  api_key_env: DECK_KEY
  model: fast
  timeout: 30s
  sample_rows: 10
debug: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Name != "my-deck" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.GetDataDir() != "/tmp/deck" {
		t.Errorf("data dir = %q", cfg.GetDataDir())
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Alias != "sales" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
	if cfg.Grid.BufferRows != 8 || cfg.Grid.DefaultColumnWidth != 20 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	// Unset grid fields keep their defaults.
	if cfg.Grid.RowHeight != 1 {
		t.Errorf("row height = %d, want default 1", cfg.Grid.RowHeight)
	}
	if cfg.Analyst.Endpoint != "https://analyst.example.com" {
		t.Errorf("endpoint = %q", cfg.Analyst.Endpoint)
	}
	if got := cfg.GetAnalystTimeout(); got != 30*time.Second {
		t.Errorf("timeout = %v", got)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "grid: [not a map")); err == nil {
		t.Error("expected error for bad yaml")
	}
}

func TestReload(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte("name: renamed\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.Name != "renamed" {
		t.Errorf("name after reload = %q", cfg.Name)
	}
	// Removed keys fall back to defaults on reload.
	if cfg.GetDataDir() != ".datadeck" {
		t.Errorf("data dir after reload = %q", cfg.GetDataDir())
	}
}

func TestAnalystAPIKeyFromEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analyst.APIKeyEnv = "DATADECK_TEST_KEY"
	t.Setenv("DATADECK_TEST_KEY", "secret")
	if got := cfg.AnalystAPIKey(); got != "secret" {
		t.Errorf("api key = %q", got)
	}

	cfg.Analyst.APIKeyEnv = ""
	if got := cfg.AnalystAPIKey(); got != "" {
		t.Errorf("api key with no env = %q", got)
	}
}

func TestGetAnalystTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analyst.Timeout = "bogus"
	if got := cfg.GetAnalystTimeout(); got != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m fallback", got)
	}
}
