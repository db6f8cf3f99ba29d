package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Question sources selectable under quiz.source.
const (
	SourceStatic   = "static"
	SourceOpenTDB  = "opentdb"
	SourcePostgres = "postgres"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		PerQuestionSeconds int    `yaml:"per_question_seconds"`
		QuestionCount      int    `yaml:"question_count"`
		DefaultDifficulty  string `yaml:"default_difficulty"`
		CacheTTL           string `yaml:"cache_ttl"`
		SessionTTL         string `yaml:"session_ttl"`
		Source             string `yaml:"source"`
	} `yaml:"quiz"`
	OpenTDB struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"opentdb"`
}

// Load reads YAML config from path and fills in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = os.Getenv("APP_ENV")
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Quiz.PerQuestionSeconds == 0 {
		c.Quiz.PerQuestionSeconds = 30
	}
	if c.Quiz.QuestionCount == 0 {
		c.Quiz.QuestionCount = 10
	}
	if c.Quiz.DefaultDifficulty == "" {
		c.Quiz.DefaultDifficulty = "medium"
	}
	c.Quiz.Source = strings.ToLower(strings.TrimSpace(c.Quiz.Source))
	if c.Quiz.Source == "" {
		c.Quiz.Source = SourceStatic
	}
}

// Validate rejects settings the quiz cannot run with.
func (c Config) Validate() error {
	if c.Quiz.PerQuestionSeconds < 1 {
		return fmt.Errorf("quiz.per_question_seconds must be at least 1, got %d", c.Quiz.PerQuestionSeconds)
	}
	if c.Quiz.QuestionCount < 1 {
		return fmt.Errorf("quiz.question_count must be at least 1, got %d", c.Quiz.QuestionCount)
	}
	switch c.Quiz.Source {
	case SourceStatic, SourceOpenTDB:
	case SourcePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("quiz.source %q requires postgres.url", c.Quiz.Source)
		}
	default:
		return fmt.Errorf("unknown quiz.source %q", c.Quiz.Source)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
