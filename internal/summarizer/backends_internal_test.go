package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	antoption "github.com/anthropics/anthropic-sdk-go/option"
	oaoption "github.com/openai/openai-go/v3/option"
	gapioption "google.golang.org/api/option"
)

// recordingServer answers every request with reply and keeps the last
// decoded request body.
func recordingServer(t *testing.T, reply string) (*httptest.Server, *map[string]any, *string) {
	t.Helper()

	body := map[string]any{}
	path := ""

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		body = map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return srv, &body, &path
}

func number(t *testing.T, m map[string]any, key string) float64 {
	t.Helper()

	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("expected numeric %q in %v", key, m)
	}

	return v
}

const openAIResponseTemplate = `{
	"id": "resp_1",
	"object": "response",
	"created_at": 1700000000,
	"status": %q,
	"incomplete_details": {"reason": %q},
	"model": "gpt-4o-mini",
	"output": [{
		"type": "message",
		"id": "msg_1",
		"status": "incomplete",
		"role": "assistant",
		"content": [{"type": "output_text", "text": "A partial summary", "annotations": []}]
	}],
	"parallel_tool_calls": false,
	"tool_choice": "auto",
	"tools": [],
	"temperature": 0,
	"top_p": 1
}`

func openAIResponse(status, reason string) string {
	return fmt.Sprintf(openAIResponseTemplate, status, reason)
}

func TestOpenAISummarizerKeepsTextCutAtMaxOutputTokens(t *testing.T) {
	srv, body, path := recordingServer(t, openAIResponse("incomplete", "max_output_tokens"))

	s, err := NewOpenAISummarizer("sk-test", "", oaoption.WithBaseURL(srv.URL), oaoption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := s.Summarize(context.Background(), Input{Text: "Some long text.", Params: DefaultParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "A partial summary" {
		t.Fatalf("unexpected summary: %q", summary)
	}

	if !strings.HasSuffix(*path, "/responses") {
		t.Fatalf("unexpected path: %q", *path)
	}

	if got := number(t, *body, "max_output_tokens"); got != 150 {
		t.Fatalf("unexpected max_output_tokens: %v", got)
	}

	if got := number(t, *body, "temperature"); got != 0 {
		t.Fatalf("unexpected temperature: %v", got)
	}

	if (*body)["input"] != "Some long text." {
		t.Fatalf("unexpected input: %v", (*body)["input"])
	}
}

func TestOpenAISummarizerRejectsOtherIncompleteReasons(t *testing.T) {
	srv, _, _ := recordingServer(t, openAIResponse("incomplete", "content_filter"))

	s, err := NewOpenAISummarizer("sk-test", "", oaoption.WithBaseURL(srv.URL), oaoption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Summarize(context.Background(), Input{Text: "Some text.", Params: DefaultParams()})
	if err == nil || !strings.Contains(err.Error(), "content_filter") {
		t.Fatalf("expected content_filter error, got %v", err)
	}
}

func TestAnthropicSummarizerSendsParams(t *testing.T) {
	srv, body, path := recordingServer(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": " Claude summary. "}],
		"stop_reason": "end_turn",
		"stop_sequence": null,
		"usage": {"input_tokens": 10, "output_tokens": 3}
	}`)

	s, err := NewAnthropicSummarizer("sk-ant-test", "", antoption.WithBaseURL(srv.URL), antoption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := s.Summarize(context.Background(), Input{Text: "Some text.", Params: DefaultParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "Claude summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	if *path != "/v1/messages" {
		t.Fatalf("unexpected path: %q", *path)
	}

	if got := number(t, *body, "max_tokens"); got != 150 {
		t.Fatalf("unexpected max_tokens: %v", got)
	}

	if got := number(t, *body, "temperature"); got != 0 {
		t.Fatalf("unexpected temperature: %v", got)
	}

	system, ok := (*body)["system"].([]any)
	if !ok || len(system) != 1 || !strings.Contains(system[0].(map[string]any)["text"].(string), "Between 30 and 150 tokens") {
		t.Fatalf("unexpected system prompt: %v", (*body)["system"])
	}
}

func TestGeminiSummarizerSendsParams(t *testing.T) {
	srv, body, path := recordingServer(t, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"text": "Gemini summary."}]},
			"finishReason": "STOP",
			"index": 0
		}]
	}`)

	s, err := NewGeminiSummarizer(context.Background(), "gemini-test", "",
		gapioption.WithEndpoint(srv.URL),
		gapioption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		_ = s.Close()
	}()

	summary, err := s.Summarize(context.Background(), Input{Text: "Some text.", Params: DefaultParams()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "Gemini summary." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	if !strings.HasSuffix(*path, "models/gemini-1.5-flash:generateContent") {
		t.Fatalf("unexpected path: %q", *path)
	}

	config, ok := (*body)["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig in %v", *body)
	}

	if got := number(t, config, "maxOutputTokens"); got != 150 {
		t.Fatalf("unexpected maxOutputTokens: %v", got)
	}

	if got := number(t, config, "temperature"); got != 0 {
		t.Fatalf("unexpected temperature: %v", got)
	}

	if _, ok = (*body)["systemInstruction"]; !ok {
		t.Fatalf("expected a system instruction")
	}
}
