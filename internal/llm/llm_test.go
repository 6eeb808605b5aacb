package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiClientComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"SELECT "},{"text":"1;"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(Config{BaseURL: server.URL, APIKey: "k-1", Temperature: 0.1, MaxTokens: 64})
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	completion, err := client.Complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Text != "SELECT 1;" {
		t.Fatalf("Complete().Text = %q", completion.Text)
	}
	if completion.Provider != ProviderGemini || completion.Model != DefaultGeminiModel {
		t.Fatalf("Complete() provider/model = %q/%q", completion.Provider, completion.Model)
	}
	if gotPath != "/v1beta/models/"+DefaultGeminiModel+":generateContent" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotKey != "k-1" {
		t.Fatalf("api key header = %q", gotKey)
	}
	generation, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("generationConfig missing: %#v", gotBody)
	}
	if generation["maxOutputTokens"].(float64) != 64 {
		t.Fatalf("maxOutputTokens = %v", generation["maxOutputTokens"])
	}
	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if parts[0].(map[string]any)["text"] != "prompt text" {
		t.Fatalf("prompt not forwarded: %#v", parts)
	}
}

func TestGeminiClientReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewGeminiClient(Config{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	_, err = client.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestGeminiClientReportsBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(Config{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGeminiClient() error = %v", err)
	}
	_, err = client.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Revenue grew."}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Config{BaseURL: server.URL + "/", APIKey: "secret", Model: "m-1", MaxTokens: 10})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	completion, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completion.Text != "Revenue grew." || completion.Model != "m-1" || completion.Provider != ProviderOpenAI {
		t.Fatalf("Complete() = %+v", completion)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody["max_tokens"].(float64) != 10 {
		t.Fatalf("max_tokens = %v", gotBody["max_tokens"])
	}
}

func TestOpenAIClientRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Config{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	gemini, err := New(Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New(gemini) error = %v", err)
	}
	if _, ok := gemini.(*GeminiClient); !ok {
		t.Fatalf("New() default = %T", gemini)
	}
	openai, err := New(Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	if _, ok := openai.(*OpenAIClient); !ok {
		t.Fatalf("New(openai) = %T", openai)
	}
	if _, err := New(Config{Provider: "other", APIKey: "k"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected missing api key error")
	}
}
