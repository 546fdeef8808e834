package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Debounce() != time.Second {
		t.Errorf("debounce = %v", cfg.Debounce())
	}
	if cfg.GraceWindow() != time.Minute {
		t.Errorf("grace = %v", cfg.GraceWindow())
	}
	if cfg.Staleness() != 10*time.Minute {
		t.Errorf("staleness = %v", cfg.Staleness())
	}
	if cfg.Recurrence != "daily" || cfg.Notifier.Sender != "tray" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PaywallTimeout() != 5*time.Second {
		t.Errorf("paywall timeout = %v", cfg.PaywallTimeout())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "debounce_ms: 250\nrecurrence: once\npaywall:\n  base_url: https://subs.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLEEPR_GRACE_SECONDS", "30")
	t.Setenv("SLEEPR_NOTIFIER_SENDER", "stdout")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMs != 250 || cfg.Recurrence != "once" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Paywall.BaseURL != "https://subs.example.com" {
		t.Errorf("nested value not applied: %q", cfg.Paywall.BaseURL)
	}
	if cfg.GraceSeconds != 30 || cfg.Notifier.Sender != "stdout" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("recurrence: hourly\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Timezone = "Europe/Berlin"
	cfg.DispatchIntervalSec = 5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Timezone != "Europe/Berlin" || loaded.DispatchInterval() != 5*time.Second {
		t.Errorf("saved values not read back: %+v", loaded)
	}
}
