package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAISummarizer builds a new summarizer instance. opts are applied
// after the API key.
func NewOpenAISummarizer(
	apiKey string,
	model string,
	opts ...option.RequestOption,
) (*OpenAISummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is empty")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAISummarizer{
		client: openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:  openai.ChatModel(model),
	}, nil
}

func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", ErrEmptyInput
	}

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(int64(input.Params.MaxLength)),
		Temperature:     openai.Float(temperature(input.Params)),
		Instructions:    openai.String(instructions(input.Params)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(input.Text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	summary := strings.TrimSpace(resp.OutputText())

	// Hitting the output limit is the max-length cut-off, not a failure.
	if resp.Status == "incomplete" && resp.IncompleteDetails.Reason != "max_output_tokens" {
		return "", fmt.Errorf(
			"response is incomplete (reason = %s, maxOutputTokens = %d)",
			resp.IncompleteDetails.Reason,
			input.Params.MaxLength,
		)
	}

	if summary == "" {
		return "", fmt.Errorf("%w (status = %s)", ErrEmptyOutput, resp.Status)
	}

	return summary, nil
}
