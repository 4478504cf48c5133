package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAI_Generate(t *testing.T) {
	var got openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "review text"}}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 10, "total_tokens": 50}
		}`))
	}))
	defer server.Close()

	o, err := New("openai", "gpt-4.1-mini", "test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer o.Close()

	resp, err := o.Generate(context.Background(), "combined prompt")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text != "review text" {
		t.Errorf("Text = %q, want %q", resp.Text, "review text")
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 10 {
		t.Errorf("Usage = %+v, want 40/10", resp.Usage)
	}
	if got.Model != "gpt-4.1-mini" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "combined prompt" {
		t.Errorf("messages = %+v, want one user message", got.Messages)
	}
}

func TestOpenAI_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer server.Close()

	o, _ := New("openai", "m", "bad", WithBaseURL(server.URL))
	_, err := o.Generate(context.Background(), "p")
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestOpenAI_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": ""}, "finish_reason": "content_filter"}]}`))
	}))
	defer server.Close()

	o, _ := New("openai", "m", "k", WithBaseURL(server.URL))
	resp, err := o.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text != "" || resp.BlockReason != "content_filter" {
		t.Errorf("got %+v, want empty text blocked by content_filter", resp)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	o, _ := New("openai", "m", "k", WithBaseURL(server.URL))
	resp, err := o.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("Text = %q, want empty", resp.Text)
	}
}
