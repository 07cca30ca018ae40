package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"docsum/internal/chunking"
	"docsum/internal/config"
	"docsum/internal/database"
	"docsum/internal/extractor"
	"docsum/internal/summarizer"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "docsum",
		Short:         "Summarize plain text, PDF and Word documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newExtractCommand(),
		newSummarizeCommand(),
		newStatsCommand(),
	)

	return root
}

// app holds the components shared by every command.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	db        *database.Database
	extractor *extractor.Extractor
	loader    *summarizer.Loader
	service   *summarizer.Service
}

// setup loads configuration and the logger. Commands that write results to
// stdout log to stderr.
func setup(ctx context.Context, logOut io.Writer) (config.Config, *slog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	log := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	switch {
	case envErr == nil:
		log.DebugContext(ctx, ".env file is loaded")
	case errors.Is(envErr, fs.ErrNotExist):
	default:
		log.WarnContext(ctx, "Failed to load .env file",
			"error", envErr)
	}

	return cfg, log, nil
}

func newApp(ctx context.Context, logOut io.Writer, withJournal bool) (*app, error) {
	cfg, log, err := setup(ctx, logOut)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		extractor: extractor.New(cfg.MaxUploadBytes, log),
	}

	var journal summarizer.Journal
	if withJournal && cfg.DBPath != "" {
		a.db, err = database.New(ctx, cfg.DBPath, log)
		if err != nil {
			return nil, fmt.Errorf("init db (path = %s): %w", cfg.DBPath, err)
		}
		journal = a.db

		log.InfoContext(ctx, "DB is initialized",
			"dbPath", cfg.DBPath)
	}

	if (cfg.Provider == "" || cfg.Provider == summarizer.ProviderHuggingFace) &&
		strings.TrimSpace(cfg.HFAPIToken) == "" {
		log.WarnContext(ctx, "HF_API_TOKEN is empty so the hosted inference API will reject requests",
			"baseURL", cfg.HFBaseURL)
	}

	model := cfg.Model
	if model == "" {
		model = summarizer.DefaultModel(cfg.Provider)
	}

	factory, err := summarizer.NewFactory(summarizer.BackendConfig{
		Provider: cfg.Provider,
		Model:    model,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.HFBaseURL,
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.loader = summarizer.NewLoader(factory, log)
	a.service = summarizer.NewService(
		summarizer.ServiceConfig{
			Provider: cfg.Provider,
			Model:    model,
			Params:   summarizer.DefaultParams(),
		},
		a.loader,
		newChunker(cfg),
		summarizer.NewCache(cfg.CacheSize, cfg.CacheTTL),
		journal,
		log,
	)

	return a, nil
}

// newChunker returns nil, which sends every input in one call, when the
// context window is disabled. The encoding is loaded on the first input
// that may not fit the window.
func newChunker(cfg config.Config) *chunking.Lazy {
	if cfg.ContextTokens == 0 {
		return nil
	}

	return chunking.NewLazy(
		chunking.LoadTiktoken(cfg.Encoding, cfg.TokenizerTimeout),
		chunking.WithMaxTokens(cfg.ContextTokens),
		chunking.WithOverlapTokens(cfg.OverlapTokens))
}

func (a *app) Close(ctx context.Context) {
	if a.loader != nil {
		if err := a.loader.Close(); err != nil {
			a.log.ErrorContext(ctx, "Failed to close summarizer",
				"error", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", a.cfg.DBPath)
		}
	}
}
