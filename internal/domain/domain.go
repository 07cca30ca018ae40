package domain

import (
	"strings"
	"time"
)

// Format is the closed set of document kinds the extractor knows about.
type Format string

const (
	FormatPlainText   Format = "txt"
	FormatPDF         Format = "pdf"
	FormatWord        Format = "docx"
	FormatUnsupported Format = "unsupported"
	// FormatPasted marks text typed or pasted by the user rather than uploaded.
	FormatPasted Format = "pasted"
)

// FormatFromName derives the format from the last dot-separated part of name.
// A name without a dot is taken whole, so "txt" alone still maps to plain text.
func FormatFromName(name string) Format {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}

	switch Format(strings.ToLower(ext)) {
	case FormatPlainText:
		return FormatPlainText
	case FormatPDF:
		return FormatPDF
	case FormatWord:
		return FormatWord
	default:
		return FormatUnsupported
	}
}

type UploadedDocument struct {
	Name    string
	Content []byte
}

type Extraction struct {
	Format Format
	Text   string
}

// Supported reports whether the extraction produced document text rather than
// the unsupported-format message.
func (e Extraction) Supported() bool {
	return e.Format != FormatUnsupported
}

type Source string

const (
	SourceWeb Source = "web"
	SourceBot Source = "bot"
	SourceCLI Source = "cli"
)

type Summary struct {
	Text     string
	Provider string
	Model    string
	Chunks   int
	Cached   bool
	Duration time.Duration
}

type RunStatus string

const (
	RunStatusOK     RunStatus = "ok"
	RunStatusFailed RunStatus = "failed"
)

// Run is a journal row. It never carries document or summary text.
type Run struct {
	ID          string
	Source      Source
	Format      Format
	InputChars  int
	InputTokens int
	Chunks      int
	Cached      bool
	Provider    string
	Model       string
	Status      RunStatus
	DurationMS  int64
	Error       string
	CreatedAt   time.Time
}

type RunStats struct {
	Total         int64
	Failed        int64
	Cached        int64
	AvgDurationMS float64
	ByFormat      map[Format]int64
}
