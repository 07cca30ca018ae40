package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	huggingface "github.com/hupe1980/go-huggingface"
)

const (
	defaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference"
	defaultHuggingFaceModel   = "t5-small"
	huggingFaceClientTimeout  = 2 * time.Minute
)

// HuggingFaceSummarizer runs the summarization task of the Hugging Face
// Inference API, which takes the same generation parameters as a local
// transformers pipeline.
type HuggingFaceSummarizer struct {
	client *huggingface.InferenceClient
	model  string
}

func NewHuggingFaceSummarizer(
	baseURL string,
	token string,
	model string,
	client *http.Client,
) (*HuggingFaceSummarizer, error) {
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}

	if model = strings.Trim(strings.TrimSpace(model), "/"); model == "" {
		model = defaultHuggingFaceModel
	}

	if client == nil {
		client = &http.Client{Timeout: huggingFaceClientTimeout}
	}

	ic := huggingface.NewInferenceClient(
		strings.TrimSpace(token),
		func(o *huggingface.InferenceClientOptions) {
			o.InferenceEndpoint = baseURL
			o.Model = model
			o.HTTPClient = client
		},
	)

	return &HuggingFaceSummarizer{
		client: ic,
		model:  model,
	}, nil
}

func (s *HuggingFaceSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	if strings.TrimSpace(input.Text) == "" {
		return "", ErrEmptyInput
	}

	// The request has no do_sample field. Greedy decoding is the pipeline
	// default, so only a sampling request needs a hint.
	params := huggingface.SummarizationParameters{
		MaxLength: huggingface.PTR(input.Params.MaxLength),
		MinLength: huggingface.PTR(input.Params.MinLength),
	}
	if input.Params.DoSample {
		params.Temperature = huggingface.PTR(1.0)
	}

	resp, err := s.client.Summarization(ctx, &huggingface.SummarizationRequest{
		Inputs:     []string{input.Text},
		Parameters: params,
		Options:    huggingface.Options{WaitForModel: huggingface.PTR(true)},
		Model:      s.model,
	})
	if err != nil {
		return "", fmt.Errorf("inference API error: %w", err)
	}

	if len(resp) == 0 {
		return "", ErrEmptyOutput
	}

	summary := strings.TrimSpace(resp[0].SummaryText)
	if summary == "" {
		return "", ErrEmptyOutput
	}

	return summary, nil
}
