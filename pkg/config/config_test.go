package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
server:
  port: 8080
fred:
  api_key: test-key
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FRED.BaseURL != "https://api.stlouisfed.org" {
		t.Fatalf("unexpected fred base url %q", cfg.FRED.BaseURL)
	}
	if cfg.GoldPricez.Timeout != 30*time.Second {
		t.Fatalf("unexpected goldpricez timeout %v", cfg.GoldPricez.Timeout)
	}
	if cfg.Database.Path != "goldlens.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Scheduler.PriceRefreshSpec == "" || cfg.Scheduler.HistorySpec == "" {
		t.Fatal("expected scheduler spec defaults")
	}
	if cfg.Log.Level != "info" || cfg.Log.Output != "stdout" {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadRejectsMissingFredKey(t *testing.T) {
	body := `
environment: test
server:
  port: 8080
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected validation error for missing fred.api_key")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	body := `
environment: test
server:
  port: 8080
`
	t.Setenv("FRED_API_KEY", "from-env")
	t.Setenv("GOLDPRICEZ_API_KEY", "gp-env")
	t.Setenv("DATABASE_PATH", "/tmp/override.db")

	cfg, err := LoadWithEnv(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.FRED.APIKey != "from-env" {
		t.Fatalf("unexpected fred key %q", cfg.FRED.APIKey)
	}
	if cfg.GoldPricez.APIKey != "gp-env" {
		t.Fatalf("unexpected goldpricez key %q", cfg.GoldPricez.APIKey)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
