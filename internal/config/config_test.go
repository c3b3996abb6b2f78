package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.Store != StoreJSONFile {
		t.Errorf("Store = %q, want jsonfile", cfg.Store)
	}
	if cfg.Production() {
		t.Error("default config should not be production")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseFile_JSONCWithComments(t *testing.T) {
	cfg := Default()
	data := []byte(`{
		// local overrides
		"addr": ":9090",
		"store": "sqlite", // trailing comma below is fine too
		"data_dir": "/var/lib/ticketdesk",
	}`)

	if err := parseFile(data, &cfg); err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.DataDir != "/var/lib/ticketdesk" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	// Untouched fields keep their defaults.
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
}

func TestParseFile_InvalidJSONC(t *testing.T) {
	cfg := Default()
	if err := parseFile([]byte(`{"addr": `), &cfg); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	cfg := Default()
	cfg.Addr = ":9090"

	env := map[string]string{
		"TICKETDESK_ADDR":  ":7070",
		"TICKETDESK_STORE": "sqlite",
	}
	cfg.applyEnv(func(key string) string { return env[key] })

	if cfg.Addr != ":7070" {
		t.Errorf("Addr = %q, want :7070 (env wins over file)", cfg.Addr)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	// Unset env vars leave existing values alone.
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want default", cfg.Addr)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.jsonc")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticketdesk.jsonc")
	if err := os.WriteFile(path, []byte(`{"store": "redis"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown store backend")
	}
}
