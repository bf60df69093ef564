package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("JOB_TTL", "")

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("expected backend %q, got %q", BackendMemory, cfg.StoreBackend)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected JobTTL 1h, got %s", cfg.JobTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "9")
	t.Setenv("MAX_CONNECTIONS", "-3")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TTL", "24h")
	t.Setenv("STATS_WINDOW", "not-a-duration")

	cfg := Load()
	if cfg.WorkerCount != 9 {
		t.Errorf("expected 9 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConnections != 256 {
		t.Errorf("expected negative MAX_CONNECTIONS to fall back to 256, got %d", cfg.MaxConnections)
	}
	if cfg.StoreBackend != BackendRedis || cfg.RedisDB != 2 || cfg.RedisTTL != 24*time.Hour {
		t.Errorf("unexpected redis settings: %+v", cfg)
	}
	if cfg.StatsWindow != time.Hour {
		t.Errorf("expected unparsable STATS_WINDOW to fall back to 1h, got %s", cfg.StatsWindow)
	}
}

func TestLoad_StoreRetries(t *testing.T) {
	t.Setenv("STORE_RETRIES", "5")
	t.Setenv("STORE_RETRY_BASE", "250ms")
	t.Setenv("STORE_RETRY_MAX", "100ms")

	cfg := Load()
	if cfg.StoreRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.StoreRetries)
	}
	if cfg.StoreRetryBase != 250*time.Millisecond {
		t.Errorf("expected base 250ms, got %s", cfg.StoreRetryBase)
	}
	if cfg.StoreRetryMax != cfg.StoreRetryBase {
		t.Errorf("expected max below base to be raised to %s, got %s", cfg.StoreRetryBase, cfg.StoreRetryMax)
	}

	t.Setenv("STORE_RETRIES", "0")
	t.Setenv("STORE_RETRY_BASE", "")
	t.Setenv("STORE_RETRY_MAX", "")
	cfg = Load()
	if cfg.StoreRetries != 3 || cfg.StoreRetryBase != time.Second || cfg.StoreRetryMax != 30*time.Second {
		t.Errorf("unexpected defaults: %d %s %s", cfg.StoreRetries, cfg.StoreRetryBase, cfg.StoreRetryMax)
	}
}

func TestValidate(t *testing.T) {
	base := Config{APIKey: "k", StoreBackend: BackendMemory}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory ok", func(c *Config) {}, false},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }, true},
		{"sqlite without path", func(c *Config) { c.StoreBackend = BackendSQLite }, true},
		{"sqlite ok", func(c *Config) { c.StoreBackend = BackendSQLite; c.SQLitePath = "x.db" }, false},
		{"redis ok", func(c *Config) { c.StoreBackend = BackendRedis; c.RedisAddr = "localhost:6379" }, false},
		{"pathstore without key", func(c *Config) { c.StoreBackend = BackendPathstore }, true},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
