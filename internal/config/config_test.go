package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
quiz:
  source: OpenTDB
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Quiz.PerQuestionSeconds != 30 || cfg.Quiz.QuestionCount != 10 || cfg.Quiz.DefaultDifficulty != "medium" {
		t.Fatalf("unexpected quiz defaults %+v", cfg.Quiz)
	}
	if cfg.Quiz.Source != SourceOpenTDB {
		t.Fatalf("expected normalized source, got %q", cfg.Quiz.Source)
	}
	if cfg.Env == "" {
		t.Fatalf("expected env default")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"negative seconds": "quiz:\n  per_question_seconds: -1\n",
		"negative count":   "quiz:\n  question_count: -3\n",
		"unknown source":   "quiz:\n  source: carrier-pigeon\n",
		"postgres no url":  "quiz:\n  source: postgres\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !strings.Contains(cfg.OpenTDB.BaseURL, "opentdb.com") {
		t.Fatalf("unexpected opentdb base url %q", cfg.OpenTDB.BaseURL)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
