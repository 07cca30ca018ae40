package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer dials the Gemini API, so it needs a context unlike the
// other backends.
func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	model string,
	opts ...option.ClientOption,
) (*GeminiSummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("Gemini API key is empty")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiSummarizer{client: client, model: model}, nil
}

func (s *GeminiSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", ErrEmptyInput
	}

	m := s.client.GenerativeModel(s.model)
	m.SetTemperature(float32(temperature(input.Params)))
	m.SetMaxOutputTokens(int32(input.Params.MaxLength))
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instructions(input.Params))},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(input.Text))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}

		// Only the best candidate is wanted.
		break
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", ErrEmptyOutput
	}

	return summary, nil
}

func (s *GeminiSummarizer) Close() error {
	return s.client.Close()
}
