package summarizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
)

// Factory constructs a backend. It is called by Loader, at most once
// successfully per process.
type Factory func(ctx context.Context) (Summarizer, error)

// BackendConfig selects and configures one backend.
type BackendConfig struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL is only used by the Hugging Face backend.
	BaseURL string
}

// DefaultModel names the model a provider uses when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderGemini:
		return defaultGeminiModel
	default:
		return defaultHuggingFaceModel
	}
}

// NewFactory validates cfg and returns a Factory for the chosen provider.
// Nothing is dialed until the factory runs.
func NewFactory(cfg BackendConfig) (Factory, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderHuggingFace:
		return func(context.Context) (Summarizer, error) {
			return NewHuggingFaceSummarizer(cfg.BaseURL, cfg.APIKey, cfg.Model, nil)
		}, nil
	case ProviderOpenAI:
		return func(context.Context) (Summarizer, error) {
			return NewOpenAISummarizer(cfg.APIKey, cfg.Model)
		}, nil
	case ProviderAnthropic:
		return func(context.Context) (Summarizer, error) {
			return NewAnthropicSummarizer(cfg.APIKey, cfg.Model)
		}, nil
	case ProviderGemini:
		return func(ctx context.Context) (Summarizer, error) {
			return NewGeminiSummarizer(ctx, cfg.APIKey, cfg.Model)
		}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// Loader lazily builds the process-wide model handle and hands out the same
// instance on every later call. A failed build is not remembered, so the
// next call tries again.
type Loader struct {
	mu      sync.Mutex
	factory Factory
	model   Summarizer
	log     *slog.Logger
}

func NewLoader(factory Factory, log *slog.Logger) *Loader {
	return &Loader{factory: factory, log: log}
}

func (l *Loader) Load(ctx context.Context) (Summarizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}

	model, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("construct summarizer: %w", err)
	}
	if model == nil {
		return nil, fmt.Errorf("construct summarizer: factory returned nil")
	}

	l.model = model
	l.log.InfoContext(ctx, "Summarizer is loaded",
		"type", fmt.Sprintf("%T", model))

	return l.model, nil
}

// Close releases the model handle if one was built and holds resources.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	closer, ok := l.model.(io.Closer)
	if !ok {
		return nil
	}

	return closer.Close()
}
