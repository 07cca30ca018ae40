package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPAddr != ":8080" || cfg.Provider != "huggingface" || cfg.DBPath != "db.sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	if cfg.ContextTokens != 384 || cfg.TokenizerTimeout != 15*time.Second || cfg.CacheTTL != 24*time.Hour || cfg.MaxUploadBytes != 200<<20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SUMMARIZER_PROVIDER", " OpenAI ")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ALLOWED_USERS", "1,2,3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != "openai" || cfg.APIKey() != "sk-test" {
		t.Fatalf("unexpected provider settings: %q %q", cfg.Provider, cfg.APIKey())
	}

	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}

	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected level: %v", cfg.SlogLevel())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ALLOWED_USERS", "1,abc")

	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid ALLOWED_USERS to fail")
	}
}

func TestLoadRejectsNegativeTokens(t *testing.T) {
	t.Setenv("MODEL_CONTEXT_TOKENS", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected negative token setting to fail")
	}
}

func TestLoadEmptyDBPathDisablesJournal(t *testing.T) {
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DBPath != "" {
		t.Fatalf("expected empty DB path, got %q", cfg.DBPath)
	}
}
