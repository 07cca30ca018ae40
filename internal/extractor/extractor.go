package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docsum/internal/domain"
)

const UnsupportedFormatMessage = "❌ Unsupported file format. Please upload a .txt, .pdf, or .docx file."

var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidUTF8       = errors.New("text is not valid UTF-8")
	ErrTooLarge          = errors.New("document is too large")
)

// Extractor turns an uploaded document into plain text. It keeps no state
// between calls.
type Extractor struct {
	maxBytes int64
	log      *slog.Logger
}

// New returns an Extractor. maxBytes <= 0 disables the size check.
func New(maxBytes int64, log *slog.Logger) *Extractor {
	return &Extractor{maxBytes: maxBytes, log: log}
}

// Extract dispatches on the document's declared extension. Unsupported
// extensions are not an error: the returned Extraction carries
// UnsupportedFormatMessage as its text.
func (e *Extractor) Extract(
	ctx context.Context,
	doc domain.UploadedDocument,
) (domain.Extraction, error) {
	format := domain.FormatFromName(doc.Name)

	if format == domain.FormatUnsupported {
		e.log.InfoContext(ctx, "Unsupported document format",
			"name", doc.Name)

		return domain.Extraction{Format: format, Text: UnsupportedFormatMessage}, nil
	}

	if e.maxBytes > 0 && int64(len(doc.Content)) > e.maxBytes {
		return domain.Extraction{}, fmt.Errorf(
			"%w (size = %d, limit = %d)",
			ErrTooLarge,
			len(doc.Content),
			e.maxBytes,
		)
	}

	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}

	var (
		text string
		err  error
	)

	switch format {
	case domain.FormatPlainText:
		text, err = extractPlainText(doc.Content)
	case domain.FormatPDF:
		text, err = extractPDF(doc.Content)
	case domain.FormatWord:
		text, err = extractDOCX(doc.Content)
	default:
		return domain.Extraction{}, fmt.Errorf("no handler for format %q", format)
	}

	if err != nil {
		return domain.Extraction{}, fmt.Errorf("extract %s: %w", format, err)
	}

	e.log.DebugContext(ctx, "Document is extracted",
		"name", doc.Name,
		"format", format,
		"bytes", len(doc.Content),
		"chars", len(text))

	return domain.Extraction{Format: format, Text: text}, nil
}
