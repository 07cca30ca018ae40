package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicSummarizer struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicSummarizer(
	apiKey string,
	model string,
	opts ...option.RequestOption,
) (*AnthropicSummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is empty")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicSummarizer{
		client: anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:  anthropic.Model(model),
	}, nil
}

func (s *AnthropicSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", ErrEmptyInput
	}

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       s.model,
		MaxTokens:   int64(input.Params.MaxLength),
		Temperature: param.NewOpt(temperature(input.Params)),
		System: []anthropic.TextBlockParam{
			{Text: instructions(input.Params)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input.Text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", fmt.Errorf("%w (stopReason = %s)", ErrEmptyOutput, msg.StopReason)
	}

	return summary, nil
}
