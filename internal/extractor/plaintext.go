package extractor

import "unicode/utf8"

func extractPlainText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", ErrInvalidUTF8
	}

	return string(content), nil
}
