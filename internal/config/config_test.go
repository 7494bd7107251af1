package config

import (
	"os"
	"path/filepath"
	"testing"
)

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		for _, name := range []string{k, Prefix + "_" + k} {
			if v, ok := os.LookupEnv(name); ok {
				_ = os.Unsetenv(name)
				t.Cleanup(func() { _ = os.Setenv(name, v) })
			}
		}
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	unset(t, "PORT", "DB_MODE", "DB_HOST", "DB_PORT", "ACTIVITY_SINK", "TABLESTORE_DRIVER", "ENVIRONMENT")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Port != 8001 || cfg.DBMode != "local" || cfg.TableStoreURL != "http://localhost:8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LoggerActivityChannel != "logger:activity" || cfg.LoggerErrorChannel != "logger:error" {
		t.Fatalf("unexpected channel defaults: %+v", cfg)
	}
	if cfg.ActivitySink != "log" || cfg.TableStoreDriver != "sqlite" {
		t.Fatalf("unexpected sink/driver defaults: %+v", cfg)
	}
}

func TestConfigLoad_UnprefixedAndPrefixed(t *testing.T) {
	unset(t, "PORT", "DB_MODE", "DB_HOST", "DB_PORT")
	t.Setenv("DB_MODE", "Gateway")
	t.Setenv("DB_HOST", "gw.internal")
	t.Setenv("DB_PORT", "80")
	t.Setenv("PORT", "7000")
	t.Setenv("RATION_PORT", "9000")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.TableStoreURL != "http://gw.internal:80/api/db" {
		t.Fatalf("gateway url: got %s", cfg.TableStoreURL)
	}
	if cfg.Port != 9000 {
		t.Fatalf("prefixed PORT should win, got %d", cfg.Port)
	}
	if cfg.HTTPAddr() != ":9000" {
		t.Fatalf("http addr: got %s", cfg.HTTPAddr())
	}
}

func TestResolveDefaults_Rejects(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"db mode":     func(c *Config) { c.DBMode = "direct" },
		"driver":      func(c *Config) { c.TableStoreDriver = "mysql" },
		"sink":        func(c *Config) { c.ActivitySink = "kafka" },
		"environment": func(c *Config) { c.Environment = "staging" },
		"port":        func(c *Config) { c.Port = 0 },
		"timeout":     func(c *Config) { c.DBTimeoutSeconds = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := NewForTesting()
			mutate(cfg)
			if err := cfg.ResolveDefaults(); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if cfg.Environment != EnvTesting || cfg.TableStoreURL != "http://localhost:8080" {
		t.Fatalf("unexpected testing config: %+v", cfg)
	}
	if cfg.IsProduction() {
		t.Fatalf("testing config must not be production")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RATION_DOTENV_FRESH=from-file\nRATION_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RATION_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("RATION_DOTENV_FRESH") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("RATION_DOTENV_FRESH"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("RATION_DOTENV_SET"); got != "from-env" {
		t.Fatalf("existing variable was overridden: %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}
