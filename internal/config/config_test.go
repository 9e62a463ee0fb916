package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.EdgeCalculator.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.EdgeCalculator.PollInterval)
	}
	if cfg.Scheduler.Interval != 300*time.Second {
		t.Errorf("Scheduler.Interval = %v, want 300s", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.MatchThreshold != 80.0 {
		t.Errorf("MatchThreshold = %v, want 80.0", cfg.Scheduler.MatchThreshold)
	}
	if cfg.Scheduler.PriorityBypassEnabled {
		t.Error("PriorityBypassEnabled should default to false (threshold-only default per spec)")
	}
	if cfg.Scheduler.ExpireAfter != 24*time.Hour {
		t.Errorf("ExpireAfter = %v, want 24h", cfg.Scheduler.ExpireAfter)
	}
	if cfg.Scheduler.LockKey != "match:gc:lock" {
		t.Errorf("LockKey = %q, want match:gc:lock", cfg.Scheduler.LockKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
scheduler:
  match_threshold: 70.5
  priority_bypass_enabled: true
notifier:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Scheduler.MatchThreshold != 70.5 {
		t.Errorf("MatchThreshold = %v, want 70.5", cfg.Scheduler.MatchThreshold)
	}
	if !cfg.Scheduler.PriorityBypassEnabled {
		t.Error("PriorityBypassEnabled should be true from file")
	}
	if cfg.Notifier.Enabled {
		t.Error("Notifier.Enabled should be false from file")
	}
	// Unset fields keep their defaults.
	if cfg.Scheduler.LockExpire != 120*time.Second {
		t.Errorf("LockExpire = %v, want default 120s", cfg.Scheduler.LockExpire)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "65.0")
	t.Setenv("EMAIL_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scheduler.MatchThreshold != 65.0 {
		t.Errorf("MatchThreshold = %v, want 65.0 from env", cfg.Scheduler.MatchThreshold)
	}
	if cfg.Notifier.Enabled {
		t.Error("Notifier.Enabled should be false from env override")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := Default()
	cfg.Scheduler.MatchThreshold = 150
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range match threshold")
	}
}

func TestValidateRejectsBadHardFilterPolicy(t *testing.T) {
	cfg := Default()
	cfg.EdgeCalculator.HardFilterPolicy = "nonsense"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown hard filter policy")
	}
}

func TestValidateAcceptsEachHardFilterPolicy(t *testing.T) {
	for _, p := range []string{"gender_only", "strict_smoker", "strict_full"} {
		cfg := Default()
		cfg.EdgeCalculator.HardFilterPolicy = p
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected %q to validate, got %v", p, err)
		}
	}
}

func TestValidateRejectsMetricsEnabledWithoutProject(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when metrics enabled without a GCP project id")
	}
	cfg.Metrics.GCPProjectID = "roomie-match-prod"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected config to validate once a project id is set, got %v", err)
	}
}

func TestRedactedSecrets(t *testing.T) {
	cfg := Default()
	cfg.Notifier.SecretAccessKey = "AKIA1234567890ABCDEF"
	s := cfg.Notifier.String()
	if containsSecret(s, cfg.Notifier.SecretAccessKey) {
		t.Errorf("NotifierConfig.String() leaked secret: %s", s)
	}
}

func containsSecret(s, secret string) bool {
	return len(secret) > 0 && len(s) >= len(secret) && indexOf(s, secret) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
