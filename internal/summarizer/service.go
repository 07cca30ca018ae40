package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docsum/internal/chunking"
	"docsum/internal/domain"
)

// maxMergeRounds bounds how often partial summaries are re-summarized before
// the merged text is cut down to one window.
const maxMergeRounds = 3

// Journal records run metadata. It must never receive document or summary
// text.
type Journal interface {
	AddRun(ctx context.Context, run domain.Run) error
}

type Request struct {
	Text   string
	Source domain.Source
	Format domain.Format
}

type ServiceConfig struct {
	Provider string
	Model    string
	Params   Params
}

// Service is the single entry point the presentation layers call to turn
// text into a summary.
type Service struct {
	loader   *Loader
	chunker  *chunking.Lazy
	cache    *Cache
	journal  Journal
	provider string
	model    string
	params   Params
	log      *slog.Logger
}

// NewService wires the summarization flow. chunker, cache and journal are
// optional; without a chunker every input goes to the model in one call.
func NewService(
	cfg ServiceConfig,
	loader *Loader,
	chunker *chunking.Lazy,
	cache *Cache,
	journal Journal,
	log *slog.Logger,
) *Service {
	return &Service{
		loader:   loader,
		chunker:  chunker,
		cache:    cache,
		journal:  journal,
		provider: cfg.Provider,
		model:    cfg.Model,
		params:   cfg.Params,
		log:      log,
	}
}

func (s *Service) Params() Params {
	return s.params
}

// Summarize returns the summary of req.Text. Blank text fails with
// ErrEmptyInput before the model is loaded or called.
func (s *Service) Summarize(ctx context.Context, req Request) (domain.Summary, error) {
	if strings.TrimSpace(req.Text) == "" {
		return domain.Summary{}, ErrEmptyInput
	}

	start := time.Now()
	run := domain.Run{
		Source:     req.Source,
		Format:     req.Format,
		InputChars: len([]rune(req.Text)),
		Provider:   s.provider,
		Model:      s.model,
		CreatedAt:  start.UTC(),
	}
	chunker := s.chunkerFor(ctx, req.Text)
	if chunker != nil {
		run.InputTokens = chunker.Count(req.Text)
	}

	key := cacheKey(s.provider, s.model, s.params, req.Text)
	if text, ok := s.cache.Get(key); ok {
		summary := s.newSummary(text, 0, true, start)
		run.Cached = true
		s.finishRun(ctx, run, summary.Duration, nil)

		return summary, nil
	}

	text, chunks, err := s.summarize(ctx, chunker, req.Text, run.InputTokens)
	run.Chunks = chunks
	if err != nil {
		s.finishRun(ctx, run, time.Since(start), err)

		return domain.Summary{}, err
	}

	s.cache.Add(key, text)

	summary := s.newSummary(text, chunks, false, start)
	s.finishRun(ctx, run, summary.Duration, nil)

	return summary, nil
}

// chunkerFor returns the chunker once it is loaded, and loads it only for
// text that may not fit one window. nil means text goes out in one call.
func (s *Service) chunkerFor(ctx context.Context, text string) *chunking.Chunker {
	if s.chunker == nil {
		return nil
	}

	if c := s.chunker.Loaded(); c != nil {
		return c
	}

	if !s.chunker.MayExceed(text) {
		return nil
	}

	c, err := s.chunker.Get()
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load tokenizer so input is sent in one call",
			"error", err)

		return nil
	}

	return c
}

func (s *Service) summarize(
	ctx context.Context,
	chunker *chunking.Chunker,
	text string,
	tokens int,
) (string, int, error) {
	model, err := s.loader.Load(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("load model: %w", err)
	}

	if chunker == nil || tokens <= chunker.MaxTokens() {
		summary, callErr := s.call(ctx, model, text)
		if callErr != nil {
			return "", 1, fmt.Errorf("summarize: %w", callErr)
		}

		return summary, 1, nil
	}

	return s.summarizeLong(ctx, model, chunker, text)
}

// summarizeLong is chunk-and-merge: every window is summarized, the partial
// summaries are joined and summarized again until they fit one window, and
// the last call always runs with the configured params.
func (s *Service) summarizeLong(
	ctx context.Context,
	model Summarizer,
	chunker *chunking.Chunker,
	text string,
) (string, int, error) {
	windows := chunker.Split(text)
	chunks := len(windows)

	s.log.InfoContext(ctx, "Input exceeds context window so it is chunked",
		"windows", chunks,
		"maxTokens", chunker.MaxTokens())

	for round := 1; ; round++ {
		partials := make([]string, 0, len(windows))

		for i, window := range windows {
			partial, err := s.call(ctx, model, window)
			if err != nil {
				return "", chunks, fmt.Errorf(
					"summarize chunk %d/%d (round = %d): %w",
					i+1,
					len(windows),
					round,
					err,
				)
			}
			partials = append(partials, partial)
		}

		merged := strings.Join(partials, "\n")

		if !chunker.Fits(merged) && round < maxMergeRounds {
			windows = chunker.Split(merged)
			continue
		}

		if !chunker.Fits(merged) {
			s.log.WarnContext(ctx, "Merged summaries still exceed context window so they are truncated",
				"rounds", round,
				"tokens", chunker.Count(merged))

			merged = chunker.Truncate(merged)
		}

		summary, err := s.call(ctx, model, merged)
		if err != nil {
			return "", chunks, fmt.Errorf("summarize merged chunks: %w", err)
		}

		return summary, chunks, nil
	}
}

func (s *Service) call(ctx context.Context, model Summarizer, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	summary, err := model.Summarize(ctx, Input{Text: text, Params: s.params})
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptyOutput
	}

	return summary, nil
}

func (s *Service) newSummary(text string, chunks int, cached bool, start time.Time) domain.Summary {
	return domain.Summary{
		Text:     text,
		Provider: s.provider,
		Model:    s.model,
		Chunks:   chunks,
		Cached:   cached,
		Duration: time.Since(start),
	}
}

func (s *Service) finishRun(ctx context.Context, run domain.Run, took time.Duration, runErr error) {
	run.DurationMS = took.Milliseconds()
	run.Status = domain.RunStatusOK

	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()

		if !errors.Is(runErr, context.Canceled) {
			s.log.ErrorContext(ctx, "Failed to summarize",
				"error", runErr,
				"source", run.Source,
				"format", run.Format,
				"inputChars", run.InputChars,
				"chunks", run.Chunks)
		}
	} else {
		s.log.InfoContext(ctx, "Summary is generated",
			"source", run.Source,
			"format", run.Format,
			"inputChars", run.InputChars,
			"inputTokens", run.InputTokens,
			"chunks", run.Chunks,
			"cached", run.Cached,
			"durationMs", run.DurationMS)
	}

	if s.journal == nil {
		return
	}

	if err := s.journal.AddRun(ctx, run); err != nil {
		s.log.WarnContext(ctx, "Failed to record run",
			"error", err,
			"source", run.Source)
	}
}
