package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traceback.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database: /var/lib/traceback.db
sweeper:
  interval: 15m
policy:
  promotion_threshold: 60
  token_validity: 30m
  lost_expiry: 720h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.Database = "/var/lib/traceback.db"
	want.Sweeper.Interval = 15 * time.Minute
	want.Policy.PromotionThreshold = 60
	want.Policy.TokenValidity = 30 * time.Minute
	want.Policy.LostExpiry = 30 * 24 * time.Hour
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRACEBACK_ADDR", "127.0.0.1:9000")
	cfg, err := Load(writeConfig(t, "addr: :7000\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected env override, got %s", cfg.Addr)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "databse: x.db\n",
		"inverted threshold": "policy:\n  candidate_threshold: 70\n",
		"zero validity":      "policy:\n  token_validity: 0s\n",
		"bad duration":       "policy:\n  lost_expiry: 60d\n",
		"negative interval":  "sweeper:\n  interval: -1m\n",
	}
	for name, body := range tests {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}
