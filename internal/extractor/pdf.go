package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(content []byte) (string, error) {
	pages, err := pdfPageTexts(content)
	if err != nil {
		return "", err
	}

	return strings.Join(pages, ""), nil
}

// pdfPageTexts returns the plain text of every page in page order. Pages
// without a content dictionary yield an empty string so indexes stay aligned.
func pdfPageTexts(content []byte) (pages []string, err error) {
	// The PDF reader panics on some corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: read PDF: %v", ErrMalformedDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF: %w", ErrMalformedDocument, err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrMalformedDocument, i, textErr)
		}

		pages = append(pages, text)
	}

	return pages, nil
}
