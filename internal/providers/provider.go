package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Usage holds the token counters reported by a provider. Both fields are zero
// when the response carries no usage data.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the free-form text returned by a single generation call. Text
// is empty when the provider answered without content, for example after a
// safety block; BlockReason then carries the provider's explanation if any.
type Response struct {
	Text        string
	Usage       Usage
	BlockReason string
}

// Generator performs one blocking text-generation request per call. Close
// releases the underlying connection pool and must be called once the
// generator is no longer needed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Response, error)
	Name() string
	Model() string
	Close() error
}

// Option customizes a provider at construction time.
type Option func(*settings)

type settings struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.client = c }
}

// New creates a provider by name. apiKey must be non-empty.
func New(provider, model, apiKey string, opts ...Option) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key for provider %s", provider)
	}
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.client == nil {
		// No client-side timeout: the single call may block for its full duration.
		s.client = &http.Client{}
	}

	switch Canonical(provider) {
	case "gemini":
		return newGemini(model, apiKey, s), nil
	case "openai":
		return newOpenAI(model, apiKey, s), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Canonical maps provider aliases to their canonical name.
func Canonical(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini", "google":
		return "gemini"
	case "openai":
		return "openai"
	default:
		return provider
	}
}

// CredentialEnv returns the environment variables that may hold the API key
// for provider, in lookup order.
func CredentialEnv(provider string) []string {
	switch Canonical(provider) {
	case "gemini":
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case "openai":
		return []string{"OPENAI_API_KEY"}
	default:
		return nil
	}
}

// LookupCredential returns the first non-empty credential for provider
// together with the variable it came from.
func LookupCredential(provider string) (key, envVar string) {
	for _, name := range CredentialEnv(provider) {
		if v := os.Getenv(name); v != "" {
			return v, name
		}
	}
	return "", ""
}

// usageEnvelope decodes token counters from either the Gemini
// (usageMetadata) or the OpenAI-compatible (usage) response shape.
type usageEnvelope struct {
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata,omitempty"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

func (e usageEnvelope) usage() Usage {
	switch {
	case e.UsageMetadata != nil:
		return Usage{
			InputTokens:  e.UsageMetadata.PromptTokenCount,
			OutputTokens: e.UsageMetadata.CandidatesTokenCount,
		}
	case e.Usage != nil:
		return Usage{
			InputTokens:  e.Usage.PromptTokens,
			OutputTokens: e.Usage.CompletionTokens,
		}
	default:
		return Usage{}
	}
}
