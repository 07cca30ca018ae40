package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultDBPath = "db.sqlite"

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Token        string  `env:"TOKEN"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`

	DBPath           string        `env:"DB_PATH"`
	JournalRetention time.Duration `env:"JOURNAL_RETENTION" envDefault:"720h"`

	Provider      string `env:"SUMMARIZER_PROVIDER" envDefault:"huggingface"`
	Model         string `env:"SUMMARIZER_MODEL"`
	HFAPIToken    string `env:"HF_API_TOKEN"`
	HFBaseURL     string `env:"HF_BASE_URL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	AnthropicKey  string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`

	// ContextTokens is counted with Encoding, not the model's own
	// vocabulary. t5-small reads 512 SentencePiece tokens, and English text
	// takes roughly a quarter more of those than cl100k tokens, so the
	// default leaves that margin plus room for the task prefix.
	ContextTokens    int           `env:"MODEL_CONTEXT_TOKENS"   envDefault:"384"`
	OverlapTokens    int           `env:"CHUNK_OVERLAP_TOKENS"   envDefault:"32"`
	Encoding         string        `env:"TOKENIZER_ENCODING"     envDefault:"cl100k_base"`
	TokenizerTimeout time.Duration `env:"TOKENIZER_LOAD_TIMEOUT" envDefault:"15s"`

	CacheSize int           `env:"SUMMARY_CACHE_SIZE" envDefault:"256"`
	CacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL"  envDefault:"24h"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"209715200"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)

	// An explicitly empty DB_PATH disables the run journal.
	if _, ok := os.LookupEnv("DB_PATH"); !ok {
		cfg.DBPath = DefaultDBPath
	}

	if cfg.ContextTokens < 0 || cfg.OverlapTokens < 0 {
		return Config{}, fmt.Errorf(
			"token settings must not be negative (contextTokens = %d, overlapTokens = %d)",
			cfg.ContextTokens,
			cfg.OverlapTokens,
		)
	}

	return cfg, nil
}

// APIKey returns the credential of the configured provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.HFAPIToken
	}
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}
