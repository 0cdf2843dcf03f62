package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme != "default" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "default")
	}
	if cfg.Endpoint != "http://localhost:8088" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("RequestTimeout = %d, want 30", cfg.RequestTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled should default to false")
	}
	if cfg.Server.Addr != ":8088" || cfg.Server.Driver != "sqlite" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.UserHeader != "X-Bqlab-User" {
		t.Errorf("Server.UserHeader = %q", cfg.Server.UserHeader)
	}
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `theme: monokai
endpoint: https://catalog.example.com
user: alice
request_timeout: 5
state_path: /tmp/state.db
log:
  level: debug
  path: /tmp/bqlab.log
audit:
  enabled: true
  max_size_mb: 3
server:
  addr: ":9000"
  driver: postgres
  dsn: postgres://u:p@db/catalog
  access:
    alice:
      - "proj:sales.*"
    bob:
      - "*"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Theme != "monokai" {
		t.Errorf("Theme = %q, want monokai", cfg.Theme)
	}
	if cfg.Endpoint != "https://catalog.example.com" || cfg.User != "alice" {
		t.Errorf("Endpoint/User = %q/%q", cfg.Endpoint, cfg.User)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Path != "/tmp/bqlab.log" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Audit.Enabled || cfg.Audit.MaxSizeMB != 3 {
		t.Errorf("Audit = %+v", cfg.Audit)
	}
	if cfg.Server.Driver != "postgres" || cfg.Server.Addr != ":9000" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	// Unset keys keep their defaults.
	if cfg.Server.UserHeader != "X-Bqlab-User" {
		t.Errorf("Server.UserHeader = %q, want default", cfg.Server.UserHeader)
	}
	if got := cfg.Server.Access["alice"]; len(got) != 1 || got[0] != "proj:sales.*" {
		t.Errorf("Access[alice] = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load(missing) = %+v, want DefaultConfig", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	content := "theme: [\ninvalid:\n  - {broken\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load(invalid YAML) error = nil, want error")
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	original := DefaultConfig()
	original.Theme = "light"
	original.User = "bob"
	original.Audit = AuditConfig{Enabled: true, Path: "/var/log/bqlab.jsonl", MaxSizeMB: 1}
	original.Server.Access = map[string][]string{"bob": {"*"}}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("roundtrip mismatch:\n  saved:  %+v\n  loaded: %+v", original, loaded)
	}
}

func TestSaveDefaultAndLoadDefault(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))

	cfg := DefaultConfig()
	cfg.Theme = "monokai"
	cfg.Endpoint = "http://catalog:8088"

	if err := cfg.SaveDefault(); err != nil {
		t.Fatalf("SaveDefault() error = %v", err)
	}

	loaded, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if loaded.Theme != cfg.Theme || loaded.Endpoint != cfg.Endpoint {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestTimeout_DefaultsWhenUnset(t *testing.T) {
	cfg := &Config{}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Timeout())
	}
}

func TestResolvePath(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))

	got, err := ResolvePath("/explicit/state.db", "state.db")
	if err != nil || got != "/explicit/state.db" {
		t.Errorf("ResolvePath(explicit) = %q, %v", got, err)
	}

	got, err = ResolvePath("", "state.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(tmpHome, ".config", "bqlab", "state.db"); got != want {
		t.Errorf("ResolvePath(default) = %q, want %q", got, want)
	}
}

func TestCatalogDSN(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))

	cfg := DefaultConfig()
	dsn, err := cfg.CatalogDSN()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dsn) != "catalog.db" {
		t.Errorf("CatalogDSN() = %q, want catalog.db in config dir", dsn)
	}

	cfg.Server.Driver = "postgres"
	if _, err := cfg.CatalogDSN(); err == nil {
		t.Error("expected error for postgres without dsn")
	}

	cfg.Server.DSN = "postgres://localhost/catalog"
	if dsn, _ := cfg.CatalogDSN(); dsn != "postgres://localhost/catalog" {
		t.Errorf("CatalogDSN() = %q", dsn)
	}
}

func TestConfigDir(t *testing.T) {
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if filepath.Base(dir) != "bqlab" {
		t.Errorf("ConfigDir() base = %q, want %q", filepath.Base(dir), "bqlab")
	}
}
