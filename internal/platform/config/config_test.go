package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pursue.yaml")
	body := `
db_path: /tmp/heat.db
timezone: America/New_York
heat:
  concurrency: 8
  history_default_days: 14
push:
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "/tmp/heat.db" || cfg.Heat.Concurrency != 8 || cfg.Heat.HistoryDefaultDays != 14 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Push.Burst != 10 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Push.Timeout != 2*time.Second {
		t.Fatalf("expected 2s push timeout, got %s", cfg.Push.Timeout)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.DBPath = "/from/file.db"
	environ := map[string]string{
		"PURSUE_JOB_KEY":          "secret",
		"PURSUE_LOG_LEVEL":        "DEBUG",
		"PURSUE_HEAT_CONCURRENCY": "2",
		"PURSUE_PUSH_TIMEOUT":     "750ms",
	}
	if err := applyEnv(&cfg, environ); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.JobKey != "secret" || cfg.Log.Level != "debug" || cfg.Heat.Concurrency != 2 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Push.Timeout != 750*time.Millisecond {
		t.Fatalf("expected 750ms push timeout, got %s", cfg.Push.Timeout)
	}
	if cfg.DBPath != "/from/file.db" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unset variables must keep earlier values: %+v", cfg)
	}

	environ["PURSUE_HEAT_CONCURRENCY"] = "many"
	if err := applyEnv(&cfg, environ); err == nil {
		t.Fatalf("expected error for non-numeric concurrency")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*Config){
		"zero concurrency": func(c *Config) { c.Heat.Concurrency = 0 },
		"history too long": func(c *Config) { c.Heat.HistoryDefaultDays = 91 },
		"unknown level":    func(c *Config) { c.Log.Level = "loud" },
		"bad timezone":     func(c *Config) { c.Timezone = "Mars/Olympus" },
		"binary no sum":    func(c *Config) { c.Push.Binary = "/bin/push" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Fatalf("%s: expected invalid config error, got %v", name, err)
		}
	}
}
