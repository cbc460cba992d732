package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath   string  `yaml:"db_path"   env:"PURSUE_DB_PATH"   validate:"required"`
	HTTPAddr string  `yaml:"http_addr" env:"PURSUE_HTTP_ADDR" validate:"required"`
	JobKey   string  `yaml:"job_key"   env:"PURSUE_JOB_KEY"`
	Timezone string  `yaml:"timezone"  env:"PURSUE_TIMEZONE"  validate:"required"`
	Log      Log     `yaml:"log"`
	Heat     Heat    `yaml:"heat"`
	Push     Push    `yaml:"push"`
	Tracing  Tracing `yaml:"tracing"`
}

type Log struct {
	Level  string `yaml:"level"  env:"PURSUE_LOG_LEVEL"  validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"PURSUE_LOG_FORMAT" validate:"oneof=json console"`
}

type Heat struct {
	Concurrency        int `yaml:"concurrency"          env:"PURSUE_HEAT_CONCURRENCY"  validate:"min=1,max=64"`
	HistoryDefaultDays int `yaml:"history_default_days" env:"PURSUE_HEAT_HISTORY_DAYS" validate:"min=1,max=90"`
}

type Push struct {
	Binary        string        `yaml:"binary"          env:"PURSUE_PUSH_BINARY"`
	SHA256        string        `yaml:"sha256"          env:"PURSUE_PUSH_SHA256"  validate:"omitempty,len=64,hexadecimal"`
	RatePerSecond float64       `yaml:"rate_per_second" env:"PURSUE_PUSH_RATE"    validate:"gt=0"`
	Burst         int           `yaml:"burst"           env:"PURSUE_PUSH_BURST"   validate:"min=1"`
	Timeout       time.Duration `yaml:"timeout"         env:"PURSUE_PUSH_TIMEOUT" validate:"gt=0"`
}

type Tracing struct {
	Stdout bool `yaml:"stdout" env:"PURSUE_TRACING_STDOUT"`
}

func Default() Config {
	return Config{
		DBPath:   "data/pursue.db",
		HTTPAddr: ":8080",
		Timezone: "UTC",
		Log:      Log{Level: "info", Format: "json"},
		Heat:     Heat{Concurrency: 4, HistoryDefaultDays: 30},
		Push:     Push{RatePerSecond: 50, Burst: 10, Timeout: 5 * time.Second},
	}
}

// Load reads an optional YAML file over the defaults, applies PURSUE_*
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := applyEnv(&cfg, nil); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Push.Binary != "" && c.Push.SHA256 == "" {
		return fmt.Errorf("invalid config: push.sha256 is required when push.binary is set")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the reference time zone that defines "yesterday".
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// applyEnv overlays PURSUE_* variables. A nil environ reads the process
// environment; unset variables keep the file or default value.
func applyEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	return nil
}
