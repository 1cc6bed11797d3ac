package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "logs.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Server.WriteTimeout != 30*time.Second || cfg.Upload.MaxBytes != 32<<20 || cfg.Query.MaxLimit != 1000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
server:
  write_timeout: 5s
store:
  driver: Memory
query:
  max_limit: 50
log:
  level: debug
`)
	t.Setenv("LOGREADER_QUERY_MAX_LIMIT", "25")
	t.Setenv("LOGREADER_LOG_ENCODING", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Server.WriteTimeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Fatalf("driver = %q; want memory", cfg.Store.Driver)
	}
	if cfg.Query.MaxLimit != 25 || cfg.Log.Encoding != "json" || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	good := Config{
		Store:  StoreConfig{Driver: DriverSQLite, DSN: "x.db"},
		Upload: UploadConfig{MaxBytes: 1},
		Query:  QueryConfig{MaxLimit: 1},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(c *Config){
		"unknown driver": func(c *Config) { c.Store.Driver = "mongo" },
		"missing dsn":    func(c *Config) { c.Store.DSN = " " },
		"zero upload":    func(c *Config) { c.Upload.MaxBytes = 0 },
		"zero limit":     func(c *Config) { c.Query.MaxLimit = 0 },
	}
	for name, mutate := range cases {
		c := good
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, errInvalidConfig) {
			t.Errorf("%s: expected errInvalidConfig, got %v", name, err)
		}
	}

	mem := good
	mem.Store = StoreConfig{Driver: DriverMemory}
	if err := mem.Validate(); err != nil {
		t.Fatalf("memory driver needs no dsn: %v", err)
	}
}
