package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"docsum/internal/extractor"
)

// pageError is an error with the status and message shown on the page.
type pageError struct {
	Code    int
	Message string
	Err     error
}

func (e *pageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *pageError) Unwrap() error {
	return e.Err
}

func newPageError(code int, message string, err error) *pageError {
	return &pageError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func mapError(err error) *pageError {
	var pageErr *pageError
	if errors.As(err, &pageErr) {
		return pageErr
	}

	switch {
	case errors.Is(err, extractor.ErrMalformedDocument):
		return newPageError(http.StatusUnprocessableEntity, "The document could not be read", err)
	case errors.Is(err, extractor.ErrInvalidUTF8):
		return newPageError(http.StatusUnprocessableEntity, "The text file is not valid UTF-8", err)
	case errors.Is(err, extractor.ErrTooLarge):
		return newPageError(http.StatusRequestEntityTooLarge, "The file is too large", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newPageError(http.StatusGatewayTimeout, "The summarizer took too long", err)
	default:
		return newPageError(http.StatusBadGateway, "Failed to generate summary", err)
	}
}
