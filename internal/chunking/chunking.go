// Package chunking splits text into token windows that fit a model's
// context, so long documents can be summarized piecewise.
package chunking

import "unicode/utf8"

const (
	defaultMaxTokens     = 512
	defaultOverlapTokens = 32
)

// Tokenizer converts text to token ids and back. Decode(Encode(s)) must
// reproduce s closely enough for the model to read it, and every token
// covers at least one byte of text.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}

type Chunker struct {
	tok           Tokenizer
	maxTokens     int
	overlapTokens int
}

type Option func(*Chunker)

// WithMaxTokens sets the window size (default 512).
func WithMaxTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens > 0 {
			c.maxTokens = tokens
		}
	}
}

// WithOverlapTokens sets how many tokens consecutive windows share.
func WithOverlapTokens(tokens int) Option {
	return func(c *Chunker) {
		if tokens >= 0 {
			c.overlapTokens = tokens
		}
	}
}

func New(tok Tokenizer, opts ...Option) *Chunker {
	c := &Chunker{
		tok:           tok,
		maxTokens:     defaultMaxTokens,
		overlapTokens: defaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Windows must advance.
	if c.overlapTokens >= c.maxTokens {
		c.overlapTokens = c.maxTokens / 2
	}

	return c
}

func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

func (c *Chunker) Count(text string) int {
	return len(c.tok.Encode(text))
}

// Fits reports whether text fits in a single window.
func (c *Chunker) Fits(text string) bool {
	return c.Count(text) <= c.maxTokens
}

// Split returns consecutive overlapping windows covering text. Text that
// already fits is returned as the only window.
func (c *Chunker) Split(text string) []string {
	ids := c.tok.Encode(text)
	if len(ids) <= c.maxTokens {
		return []string{text}
	}

	step := c.maxTokens - c.overlapTokens

	var windows []string
	for start := 0; start < len(ids); start += step {
		end := min(start+c.maxTokens, len(ids))
		windows = append(windows, c.decode(ids[start:end]))

		if end == len(ids) {
			break
		}
	}

	return windows
}

// Truncate cuts text down to the first window.
func (c *Chunker) Truncate(text string) string {
	ids := c.tok.Encode(text)
	if len(ids) <= c.maxTokens {
		return text
	}

	return c.decode(ids[:c.maxTokens])
}

// decode turns a window of ids back into text. A byte-level tokenizer can
// cut a multi-byte rune at either edge, so incomplete runes there are
// dropped.
func (c *Chunker) decode(ids []int) string {
	return trimToRunes(c.tok.Decode(ids))
}

func trimToRunes(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[1:]
	}

	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}

	return s
}
