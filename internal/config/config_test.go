package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.DefaultWeeks != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perms = %o, want 600", perm)
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen: 0.0.0.0:9999\nregistry_dir: /srv/registry\ndefault_weeks: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9999" || cfg.RegistryDir != "/srv/registry" || cfg.DefaultWeeks != 8 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// Normalize fills the rest.
	if cfg.MaxWeeks != 52 || cfg.IndexRefresh != "@hourly" {
		t.Fatalf("normalize did not apply: %+v", cfg)
	}
}

func TestNormalizeKeepsMaxAboveDefault(t *testing.T) {
	cfg := &Config{DefaultWeeks: 30, MaxWeeks: 10}
	cfg.Normalize()
	if cfg.MaxWeeks < cfg.DefaultWeeks {
		t.Fatalf("max weeks %d below default %d", cfg.MaxWeeks, cfg.DefaultWeeks)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:7070"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Listen != "127.0.0.1:7070" || again.BasicAuth == nil || again.BasicAuth.Username != "u" {
		t.Fatalf("round trip lost data: %+v", again)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expect error for empty path")
	}
}
