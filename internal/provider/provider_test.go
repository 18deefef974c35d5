package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIComplete(t *testing.T) {
	var seen oaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "THE TITLE\n\nBody text."}, "finish_reason": "stop"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAI("local", srv.URL, "", "test-model")
	got, err := p.Complete(context.Background(), Request{
		System:    "you write posts",
		Prompt:    "write one",
		MaxTokens: 2000,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "THE TITLE\n\nBody text." {
		t.Errorf("Complete = %q", got)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" {
		t.Errorf("request messages = %+v", seen.Messages)
	}
	if seen.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d, want 2000", seen.MaxTokens)
	}
}

func TestOpenAICompleteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	p := NewOpenAI("local", srv.URL, "", "test-model")
	_, err := p.Complete(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if perr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", perr.StatusCode)
	}
	if !perr.Retryable() {
		t.Error("429 should be retryable")
	}
	if !strings.Contains(perr.Message, "slow down") {
		t.Errorf("Message = %q", perr.Message)
	}
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header missing")
		}
		resp := map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "hello"}},
			"stop_reason": "end_turn",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewAnthropic("sk-test", "test-model")
	p.baseURL = srv.URL

	got, err := p.Complete(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello" {
		t.Errorf("Complete = %q, want %q", got, "hello")
	}
}

func TestParseProviderError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", 400, `{"error":{"message":"bad prompt"}}`, "bad prompt"},
		{"auth", 401, `not json`, "authentication failed"},
		{"rate limit", 429, ``, "rate limited"},
		{"overloaded", 529, ``, "overloaded"},
		{"unknown", 418, `teapot`, "HTTP 418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseProviderError("test", tt.status, []byte(tt.body))
			if !strings.Contains(got.Message, tt.want) {
				t.Errorf("Message = %q, want substring %q", got.Message, tt.want)
			}
			if got.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.status)
			}
		})
	}
}
