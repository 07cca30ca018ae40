package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"docsum/internal/domain"

	"github.com/go-pdf/fpdf"
)

const (
	docxMainPart = "word/document.xml"
	wordMLNS     = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	markupCompNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

func newTestExtractor(maxBytes int64) *Extractor {
	return New(maxBytes, slog.Default())
}

func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(docxMainPart)
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}

	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordMLNS + `" xmlns:mc="` + markupCompNS + `">` +
		`<w:body>` + bodyXML + `<w:sectPr/></w:body></w:document>`

	if _, err = w.Write([]byte(doc)); err != nil {
		t.Fatalf("write document part: %v", err)
	}

	if err = zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	return buf.Bytes()
}

func paragraph(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p><w:pPr><w:jc w:val=\"left\"/></w:pPr>")
	for _, r := range runs {
		b.WriteString("<w:r><w:t xml:space=\"preserve\">")
		b.WriteString(r)
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")

	return b.String()
}

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 14)

	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render PDF: %v", err)
	}

	return buf.Bytes()
}

func TestExtractPlainTextIsVerbatim(t *testing.T) {
	content := "The quick brown fox.\r\n\tJumps over the lazy dog!  \n"
	e := newTestExtractor(0)

	got, err := e.Extract(context.Background(), domain.UploadedDocument{
		Name:    "notes.TXT",
		Content: []byte(content),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Format != domain.FormatPlainText {
		t.Fatalf("unexpected format: %q", got.Format)
	}

	if got.Text != content {
		t.Fatalf("expected verbatim text, got %q", got.Text)
	}
}

func TestExtractPlainTextRejectsInvalidUTF8(t *testing.T) {
	e := newTestExtractor(0)

	_, err := e.Extract(context.Background(), domain.UploadedDocument{
		Name:    "broken.txt",
		Content: []byte{0xff, 0xfe, 'a'},
	})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestExtractUnsupportedReturnsMessage(t *testing.T) {
	e := newTestExtractor(0)

	for _, name := range []string{"data.xyz", "archive.txt.zip", "README", "slides.PPTX"} {
		got, err := e.Extract(context.Background(), domain.UploadedDocument{
			Name:    name,
			Content: []byte("irrelevant"),
		})
		if err != nil {
			t.Fatalf("expected no error for %q, got %v", name, err)
		}

		if got.Supported() {
			t.Fatalf("expected %q to be unsupported", name)
		}

		if got.Text != UnsupportedFormatMessage {
			t.Fatalf("unexpected text for %q: %q", name, got.Text)
		}
	}
}

func TestExtractDOCXJoinsParagraphsWithNewlines(t *testing.T) {
	paragraphs := []string{"First paragraph.", "Second ", "", "Fourth & last"}

	var body strings.Builder
	body.WriteString(paragraph("First ", "paragraph."))
	body.WriteString(paragraph("Second "))
	body.WriteString(paragraph())
	body.WriteString(paragraph("Fourth &amp; ", "last"))

	e := newTestExtractor(0)

	got, err := e.Extract(context.Background(), domain.UploadedDocument{
		Name:    "report.docx",
		Content: buildDOCX(t, body.String()),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join(paragraphs, "\n")
	if got.Text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", got.Text, want)
	}

	if n := strings.Count(got.Text, "\n"); n != len(paragraphs)-1 {
		t.Fatalf("expected %d separators, got %d", len(paragraphs)-1, n)
	}
}

func TestExtractDOCXSkipsTablesAndFallbacks(t *testing.T) {
	body := paragraph("before") +
		`<w:tbl><w:tr><w:tc>` + paragraph("cell") + `</w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>tab</w:t><w:tab/><w:t>bed</w:t><w:br/><w:t>line</w:t>` +
		`<w:br w:type="page"/></w:r>` +
		`<mc:AlternateContent><mc:Choice Requires="wps"><w:r><w:t>!</w:t></w:r></mc:Choice>` +
		`<mc:Fallback><w:r><w:t>fallback</w:t></w:r></mc:Fallback></mc:AlternateContent>` +
		`<w:ins w:id="1" w:author="a"><w:r><w:t>inserted</w:t></w:r></w:ins></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">see </w:t></w:r>` +
		`<w:hyperlink w:anchor="top"><w:r><w:t>link</w:t></w:r></w:hyperlink>` +
		`<w:r><w:br w:type="column"/><w:t>.</w:t></w:r></w:p>`

	paragraphs, err := docxParagraphs(buildDOCX(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"before", "tab\tbed\nline", "see link."}
	if len(paragraphs) != len(want) {
		t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(paragraphs), paragraphs)
	}

	for i := range want {
		if paragraphs[i] != want[i] {
			t.Fatalf("paragraph %d: got %q want %q", i, paragraphs[i], want[i])
		}
	}
}

func TestExtractMalformedDocuments(t *testing.T) {
	e := newTestExtractor(0)

	for _, name := range []string{"bad.pdf", "bad.docx"} {
		_, err := e.Extract(context.Background(), domain.UploadedDocument{
			Name:    name,
			Content: []byte("definitely not a binary document"),
		})
		if !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("expected ErrMalformedDocument for %q, got %v", name, err)
		}
	}
}

func TestExtractDOCXWithoutDocumentPartIsMalformed(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/styles.xml")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}

	if _, err = w.Write([]byte(`<w:styles xmlns:w="` + wordMLNS + `"/>`)); err != nil {
		t.Fatalf("write part: %v", err)
	}

	if err = zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	if _, err = docxParagraphs(buf.Bytes()); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestExtractPDFConcatenatesPagesInOrder(t *testing.T) {
	content := buildPDF(t, "Alpha page", "Bravo page", "Charlie page")

	pages, err := pdfPageTexts(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}

	e := newTestExtractor(0)

	got, err := e.Extract(context.Background(), domain.UploadedDocument{
		Name:    "scan.pdf",
		Content: content,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Text != strings.Join(pages, "") {
		t.Fatalf("expected concatenation of page texts, got %q", got.Text)
	}

	last := -1
	for _, word := range []string{"Alpha", "Bravo", "Charlie"} {
		idx := strings.Index(got.Text, word)
		if idx <= last {
			t.Fatalf("expected %q after previous page text in %q", word, got.Text)
		}
		last = idx
	}
}

func TestExtractRespectsSizeLimit(t *testing.T) {
	e := newTestExtractor(4)

	_, err := e.Extract(context.Background(), domain.UploadedDocument{
		Name:    "big.txt",
		Content: []byte("12345"),
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
