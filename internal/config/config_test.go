package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: "9090"
log:
  level: debug
  format: json
auth:
  secret: file-secret
  token_ttl: 2h
redis:
  addr: localhost:6379
  ttl: 5m
questions:
  ttl: 1m
  seed_file: config/questions.yaml
challenge:
  points_per_correct: 25
  strict_question_lookup: true
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected server/log section %+v %+v", cfg.Server, cfg.Log)
	}
	if cfg.Auth.Secret != "file-secret" || cfg.Auth.CookieName != DefaultCookieName {
		t.Fatalf("unexpected auth section %+v", cfg.Auth)
	}
	if cfg.Challenge.PointsPerCorrect != 25 || !cfg.Challenge.StrictQuestionLookup || cfg.Challenge.EnforceTimeLimit {
		t.Fatalf("unexpected challenge section %+v", cfg.Challenge)
	}
	if cfg.Questions.SeedFile != "config/questions.yaml" {
		t.Fatalf("unexpected seed file %q", cfg.Questions.SeedFile)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != DefaultPort || cfg.Challenge.PointsPerCorrect != DefaultPointsPerCorrect {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Fatalf("expected default log settings, got %+v", cfg.Log)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "env-secret")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ENFORCE_TIME_LIMIT", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Secret != "env-secret" || cfg.Postgres.URL != "postgres://example" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Log.Level != "warn" || !cfg.Challenge.EnforceTimeLimit {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Log, cfg.Challenge)
	}
}

func TestTTLDuration(t *testing.T) {
	tests := []struct {
		raw      string
		fallback time.Duration
		want     time.Duration
	}{
		{"", time.Minute, time.Minute},
		{"30s", time.Minute, 30 * time.Second},
		{"not-a-duration", time.Minute, time.Minute},
	}
	for _, tt := range tests {
		if got := TTLDuration(tt.raw, tt.fallback); got != tt.want {
			t.Fatalf("TTLDuration(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
