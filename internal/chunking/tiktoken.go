package chunking

import (
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken accepts either a model name ("gpt-4o") or an encoding name
// ("cl100k_base"). The BPE ranks are downloaded on first use and cached in
// TIKTOKEN_CACHE_DIR when set.
func NewTiktoken(name string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("get encoding (name = %s): %w", name, err)
		}
	}

	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

// LoadTiktoken returns a loader for NewLazy that gives up after timeout. A
// non-positive timeout waits for as long as the download takes.
// The BPE download has no deadline of its own, so a load that times out
// keeps running in the background and only warms the file cache.
func LoadTiktoken(name string, timeout time.Duration) func() (Tokenizer, error) {
	return func() (Tokenizer, error) {
		if timeout <= 0 {
			return NewTiktoken(name)
		}

		type result struct {
			tok *Tiktoken
			err error
		}

		done := make(chan result, 1)
		go func() {
			tok, err := NewTiktoken(name)
			done <- result{tok: tok, err: err}
		}()

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case r := <-done:
			if r.err != nil {
				return nil, r.err
			}

			return r.tok, nil
		case <-timer.C:
			return nil, fmt.Errorf("load encoding (name = %s): timed out after %s", name, timeout)
		}
	}
}
