package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// lineBreak is the w:br type that produces a newline; page and column
// breaks add nothing to the paragraph text.
const lineBreak = "textWrapping"

func extractDOCX(content []byte) (string, error) {
	paragraphs, err := docxParagraphs(content)
	if err != nil {
		return "", err
	}

	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs returns the text of every paragraph that is a direct child
// of the document body, in document order. Tables are skipped.
func docxParagraphs(content []byte) (paragraphs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			paragraphs = nil
			err = fmt.Errorf("%w: read DOCX: %v", ErrMalformedDocument, r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse DOCX: %w", ErrMalformedDocument, err)
	}

	// The name is only set when word/document.xml was found.
	if doc.Document.XMLName.Local == "" {
		return nil, fmt.Errorf("%w: DOCX has no document body", ErrMalformedDocument)
	}

	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, paragraphText(p))
		}
	}

	return paragraphs, nil
}

// paragraphText reads the runs and hyperlinks of p. Drawings, insertions
// and markup-compatibility content are not part of the paragraph text.
func paragraphText(p *docx.Paragraph) string {
	var b strings.Builder

	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&b, c)
		case *docx.Hyperlink:
			writeRunText(&b, &c.Run)
		}
	}

	return b.String()
}

func writeRunText(b *strings.Builder, r *docx.Run) {
	for _, child := range r.Children {
		switch c := child.(type) {
		case *docx.Text:
			b.WriteString(c.Text)
		case *docx.Tab:
			b.WriteByte('\t')
		case *docx.BarterRabbet:
			if c.Type == "" || c.Type == lineBreak {
				b.WriteByte('\n')
			}
		}
	}
}
