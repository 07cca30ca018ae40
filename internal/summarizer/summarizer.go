package summarizer

import (
	"context"
	"errors"
)

const (
	DefaultMaxLength = 150
	DefaultMinLength = 30

	// EmptyInputWarning is shown instead of calling the model on blank input.
	EmptyInputWarning = "Please enter some text before summarizing."
)

var (
	ErrEmptyInput  = errors.New("input is empty")
	ErrEmptyOutput = errors.New("model returned an empty summary")
)

// Params are the generation settings passed with every model call. Lengths
// are in model tokens.
type Params struct {
	MaxLength int
	MinLength int
	// DoSample false selects greedy, reproducible decoding.
	DoSample bool
}

func DefaultParams() Params {
	return Params{
		MaxLength: DefaultMaxLength,
		MinLength: DefaultMinLength,
		DoSample:  false,
	}
}

// Input describes the payload for a summary request.
type Input struct {
	// Text is passed to the model verbatim.
	Text   string
	Params Params
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
