package summarizer

import "fmt"

// instructions is used by the chat-model backends, which have no native
// min/max summary length and are steered through the prompt instead.
func instructions(params Params) string {
	return fmt.Sprintf(`Write an abstractive summary of the text provided by the user.

Rules:
- Between %d and %d tokens long.
- Capture the core meaning in new wording; do not copy sentences verbatim.
- Plain prose, no headings, no lists, no preamble.
- Use the same language as the input.`,
		params.MinLength,
		params.MaxLength,
	)
}

// temperature maps DoSample onto the chat APIs: greedy decoding is
// temperature zero.
func temperature(params Params) float64 {
	if params.DoSample {
		return 1
	}

	return 0
}
