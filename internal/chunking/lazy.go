package chunking

import (
	"sync"
	"sync/atomic"
)

// Lazy builds its Chunker the first time a text might need one. Loading a
// tokenizer can mean a network download, so texts that provably fit one
// window never trigger it. A failed load is not retried.
type Lazy struct {
	maxTokens int
	loaded    atomic.Pointer[Chunker]
	get       func() (*Chunker, error)
}

func NewLazy(load func() (Tokenizer, error), opts ...Option) *Lazy {
	l := &Lazy{maxTokens: New(nil, opts...).maxTokens}

	l.get = sync.OnceValues(func() (*Chunker, error) {
		tok, err := load()
		if err != nil {
			return nil, err
		}

		c := New(tok, opts...)
		l.loaded.Store(c)

		return c, nil
	})

	return l
}

func (l *Lazy) MaxTokens() int {
	return l.maxTokens
}

// Loaded returns the chunker if it has already been built.
func (l *Lazy) Loaded() *Chunker {
	return l.loaded.Load()
}

// MayExceed reports whether text could be longer than one window. A text
// with no more bytes than the window has no more tokens either.
func (l *Lazy) MayExceed(text string) bool {
	return len(text) > l.maxTokens
}

// Get builds the chunker on first call and returns the same result after.
func (l *Lazy) Get() (*Chunker, error) {
	return l.get()
}
