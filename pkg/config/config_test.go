package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 9090
clickhouse:
  host: ch.local
  port: 9000
  database: fitpull
redis:
  addr: localhost:6379
fitter:
  service_url: http://fitter:8001
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.ClickHouse.Database != "fitpull" {
		t.Fatalf("unexpected database %q", cfg.ClickHouse.Database)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Training.MinObservations != 10 {
		t.Fatalf("expected min_observations default 10, got %d", cfg.Training.MinObservations)
	}
	if cfg.Queue.Workers != 1 {
		t.Fatalf("expected workers default 1, got %d", cfg.Queue.Workers)
	}
	if cfg.Fitter.Timeout != 120*time.Second {
		t.Fatalf("expected fitter timeout default 120s, got %v", cfg.Fitter.Timeout)
	}
	if cfg.Cache.ResultTTL != 15*time.Second {
		t.Fatalf("expected result ttl default 15s, got %v", cfg.Cache.ResultTTL)
	}
}

func TestLoadMissingFitterURL(t *testing.T) {
	yaml := `
environment: test
clickhouse:
  host: ch.local
  database: fitpull
redis:
  addr: localhost:6379
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing fitter.service_url")
	}
}

func TestLoadKafkaEnabledNeedsBrokers(t *testing.T) {
	yaml := validYAML + `
kafka:
  enabled: true
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("expected validation error for enabled kafka without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("FITTER_URL", "http://other:9000")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port override, got %d", cfg.Server.Port)
	}
	if cfg.Fitter.ServiceURL != "http://other:9000" {
		t.Fatalf("expected env fitter override, got %q", cfg.Fitter.ServiceURL)
	}
}
