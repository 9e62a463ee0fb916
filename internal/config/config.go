// Package config provides unified configuration loading for the matching
// core: defaults, an optional YAML file, then environment variable
// overrides — the same three-layer precedence the teacher's config
// package uses for its own settings (Default() -> config.yaml -> env).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface from spec §6.
type Config struct {
	EdgeCalculator EdgeCalculatorConfig `json:"edge_calculator" yaml:"edge_calculator"`
	Scheduler      SchedulerConfig      `json:"scheduler" yaml:"scheduler"`
	Cache          CacheConfig          `json:"cache" yaml:"cache"`
	Store          StoreConfig          `json:"store" yaml:"store"`
	Notifier       NotifierConfig       `json:"notifier" yaml:"notifier"`
	Logging        LoggingConfig        `json:"logging" yaml:"logging"`
	Metrics        MetricsConfig        `json:"metrics" yaml:"metrics"`
}

// EdgeCalculatorConfig configures the Edge Calculator's polling loop.
type EdgeCalculatorConfig struct {
	// PollInterval is the tick interval between sweeps of the queue.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// HardFilterPolicy selects Policy A ("gender_only"), or one of Policy B's
	// two independent sub-variants ("strict_smoker", "strict_full") from
	// spec §4.1. Tests exercise Policy A as the default.
	HardFilterPolicy string `json:"hard_filter_policy" yaml:"hard_filter_policy"`

	// MaxSkipStreak is the number of consecutive ticks a malformed entry
	// can fail to parse before it is logged at error instead of warn.
	MaxSkipStreak int `json:"max_skip_streak" yaml:"max_skip_streak"`
}

// SchedulerConfig configures the Match Scheduler's periodic cycle.
type SchedulerConfig struct {
	// Interval is the tick interval between cycles.
	Interval time.Duration `json:"interval" yaml:"interval"`

	// MatchThreshold is the minimum score admitted to the greedy step.
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`

	// PriorityBypassEnabled turns on the aging-escape admission rule.
	// Tests exercise threshold-only (disabled) as the default.
	PriorityBypassEnabled bool `json:"priority_bypass_enabled" yaml:"priority_bypass_enabled"`

	// PriorityBypass is the priority floor that admits sub-threshold
	// edges when PriorityBypassEnabled is true.
	PriorityBypass int `json:"priority_bypass" yaml:"priority_bypass"`

	// ExpireAfter is the queue-entry TTL.
	ExpireAfter time.Duration `json:"expire_after" yaml:"expire_after"`

	// LockKey is the cache key for the distributed leadership lock.
	LockKey string `json:"lock_key" yaml:"lock_key"`

	// LockExpire is the leadership lock TTL.
	LockExpire time.Duration `json:"lock_expire" yaml:"lock_expire"`

	// SnapshotChunkSize bounds how many keys a single snapshot read
	// batch pages through (§6 mgetBatch).
	SnapshotChunkSize int `json:"snapshot_chunk_size" yaml:"snapshot_chunk_size"`
}

// CacheConfig configures the Redis-backed queue/edge cache.
type CacheConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`

	// DialTimeout bounds every cache call (spec §5 "bounded timeout, default 10s").
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
}

// String redacts the password so a logged CacheConfig never leaks it.
func (c CacheConfig) String() string {
	return fmt.Sprintf("CacheConfig{Addr:%s, DB:%d, Password:%s}", c.Addr, c.DB, redact(c.Password))
}

// StoreConfig configures the relational (PostgreSQL) store.
type StoreConfig struct {
	// DSN is the pgx connection string. Supports ${VAR} expansion.
	DSN string `json:"dsn" yaml:"dsn"`

	// QueryTimeout bounds every DB call.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`
}

// String redacts any credentials embedded in the DSN.
func (c StoreConfig) String() string {
	return fmt.Sprintf("StoreConfig{DSN:%s}", redact(c.DSN))
}

// NotifierConfig configures the SES-backed notifier.
type NotifierConfig struct {
	// Enabled is the master notifier switch (spec §6 emailEnabled).
	Enabled bool `json:"enabled" yaml:"enabled"`

	Region          string `json:"region" yaml:"region"`
	FromAddress     string `json:"from_address" yaml:"from_address"`
	FrontendURL     string `json:"frontend_url" yaml:"frontend_url"`
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`

	// QueueCapacity bounds the notifier's outbound worker pool; once full,
	// the oldest queued send is dropped (spec §9 REDESIGN FLAG).
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity"`

	// WorkerCount is the number of fire-and-forget send workers.
	WorkerCount int `json:"worker_count" yaml:"worker_count"`

	// RatePerSecond throttles outbound sends across all workers.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`
}

// String redacts the SES secret.
func (c NotifierConfig) String() string {
	return fmt.Sprintf("NotifierConfig{Enabled:%t, Region:%s, From:%s, SecretAccessKey:%s}",
		c.Enabled, c.Region, c.FromAddress, redact(c.SecretAccessKey))
}

// LoggingConfig configures leveled logging and JSONL event tracing.
type LoggingConfig struct {
	// Level sets log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// EventDir is the directory cycle-log.jsonl / edge-log.jsonl are
	// written to.
	EventDir string `json:"event_dir" yaml:"event_dir"`
}

// MetricsConfig configures the OTel metrics pipeline. When Enabled is
// false, Setup returns a no-op provider and nothing is exported.
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// GCPProjectID selects the Google Cloud Monitoring exporter. Required
	// when Enabled is true.
	GCPProjectID string `json:"gcp_project_id" yaml:"gcp_project_id"`

	// ExportInterval is how often accumulated metrics are pushed.
	ExportInterval time.Duration `json:"export_interval" yaml:"export_interval"`
}

// redact shows the first 4 and last 4 characters of a secret, masking the
// rest; empty strings stay empty, short ones collapse to "(set)".
func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) < 12 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Default returns a Config with the defaults spec §6 names.
func Default() *Config {
	return &Config{
		EdgeCalculator: EdgeCalculatorConfig{
			PollInterval:     10 * time.Second,
			HardFilterPolicy: "gender_only",
			MaxSkipStreak:    20,
		},
		Scheduler: SchedulerConfig{
			Interval:              300 * time.Second,
			MatchThreshold:        80.0,
			PriorityBypassEnabled: false,
			PriorityBypass:        10,
			ExpireAfter:           24 * time.Hour,
			LockKey:               "match:gc:lock",
			LockExpire:            120 * time.Second,
			SnapshotChunkSize:     500,
		},
		Cache: CacheConfig{
			Addr:        "localhost:6379",
			DB:          0,
			DialTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			QueryTimeout: 10 * time.Second,
		},
		Notifier: NotifierConfig{
			Enabled:       true,
			Region:        "ap-northeast-2",
			FromAddress:   "noreply@roomie-match.example",
			FrontendURL:   "https://www.roomie-match.example",
			QueueCapacity: 256,
			WorkerCount:   4,
			RatePerSecond: 5.0,
		},
		Logging: LoggingConfig{
			Level:    "info",
			EventDir: ".roomie-match",
		},
		Metrics: MetricsConfig{
			Enabled:        false,
			ExportInterval: 60 * time.Second,
		},
	}
}

// Load loads configuration from defaults, an optional YAML file at path
// (if non-empty and it exists), then environment variable overrides, in
// that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
			cfg = fileCfg
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file, starting
// from Default() so unset fields keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Cache.Password = expandEnvVars(cfg.Cache.Password)
	cfg.Store.DSN = expandEnvVars(cfg.Store.DSN)
	cfg.Notifier.AccessKeyID = expandEnvVars(cfg.Notifier.AccessKeyID)
	cfg.Notifier.SecretAccessKey = expandEnvVars(cfg.Notifier.SecretAccessKey)

	return cfg, nil
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.EdgeCalculator.PollInterval <= 0 {
		return fmt.Errorf("edge_calculator.poll_interval must be positive, got %v", c.EdgeCalculator.PollInterval)
	}
	switch c.EdgeCalculator.HardFilterPolicy {
	case "gender_only", "strict_smoker", "strict_full":
	default:
		return fmt.Errorf("edge_calculator.hard_filter_policy must be gender_only, strict_smoker, or strict_full, got %q", c.EdgeCalculator.HardFilterPolicy)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive, got %v", c.Scheduler.Interval)
	}
	if c.Scheduler.MatchThreshold < 0 || c.Scheduler.MatchThreshold > 100 {
		return fmt.Errorf("scheduler.match_threshold must be in [0,100], got %v", c.Scheduler.MatchThreshold)
	}
	if c.Scheduler.ExpireAfter <= 0 {
		return fmt.Errorf("scheduler.expire_after must be positive, got %v", c.Scheduler.ExpireAfter)
	}
	if c.Scheduler.LockKey == "" {
		return fmt.Errorf("scheduler.lock_key must not be empty")
	}
	if c.Scheduler.SnapshotChunkSize <= 0 {
		return fmt.Errorf("scheduler.snapshot_chunk_size must be positive, got %d", c.Scheduler.SnapshotChunkSize)
	}
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", c.Logging.Level)
	}
	if c.Notifier.QueueCapacity <= 0 {
		return fmt.Errorf("notifier.queue_capacity must be positive, got %d", c.Notifier.QueueCapacity)
	}
	if c.Notifier.WorkerCount <= 0 {
		return fmt.Errorf("notifier.worker_count must be positive, got %d", c.Notifier.WorkerCount)
	}
	if c.Metrics.Enabled && c.Metrics.GCPProjectID == "" {
		return fmt.Errorf("metrics.gcp_project_id must be set when metrics.enabled is true")
	}
	if c.Metrics.ExportInterval <= 0 {
		return fmt.Errorf("metrics.export_interval must be positive, got %v", c.Metrics.ExportInterval)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EDGE_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EdgeCalculator.PollInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SCHEDULER_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.Interval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scheduler.MatchThreshold = f
		}
	}
	if v := os.Getenv("PRIORITY_BYPASS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.PriorityBypass = n
			cfg.Scheduler.PriorityBypassEnabled = true
		}
	}
	if v := os.Getenv("EXPIRE_AFTER_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.ExpireAfter = time.Duration(n) * time.Hour
		}
	}
	if v := os.Getenv("LOCK_EXPIRE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.LockExpire = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("MGET_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.SnapshotChunkSize = n
		}
	}
	if v := os.Getenv("EMAIL_ENABLED"); v != "" {
		cfg.Notifier.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = n
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Notifier.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Notifier.SecretAccessKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Notifier.Region = v
	}
	if v := os.Getenv("DEFAULT_FROM_EMAIL"); v != "" {
		cfg.Notifier.FromAddress = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.Notifier.FrontendURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("METRICS_GCP_PROJECT_ID"); v != "" {
		cfg.Metrics.GCPProjectID = v
	}
}

// expandEnvVars expands ${VAR} references using the process environment.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
