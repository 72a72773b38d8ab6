// Package llm provides chat-completion providers for the language-model
// collaborators of the matching engine: resume skill extraction and
// career report generation. Providers share one request/response shape;
// routing between backends happens in NewProvider.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// ChatResponse is a chat completion response.
type ChatResponse struct {
	Content      string `json:"content"`
	StopReason   string `json:"stop_reason"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model"`
}

// Provider is the interface for chat-completion backends.
type Provider interface {
	// Chat sends a chat request and returns the response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// RetryConfig holds retry settings for LLM calls.
type RetryConfig struct {
	MaxRetries  int           `json:"max_retries"`  // Max retry attempts (default 5)
	MaxBackoff  time.Duration `json:"max_backoff"`  // Max backoff duration (default 60s)
	InitBackoff time.Duration `json:"init_backoff"` // Initial backoff (default 1s)
}

// ProviderConfig selects and configures a chat backend.
type ProviderConfig struct {
	Provider  string      `json:"provider"` // groq, anthropic, openai, google, openai-compat
	Model     string      `json:"model"`
	APIKey    string      `json:"api_key"`
	MaxTokens int         `json:"max_tokens"`
	BaseURL   string      `json:"base_url"` // Custom endpoint (OpenRouter, LiteLLM, local Ollama)
	Retry     RetryConfig `json:"retry"`
}

// Validate validates the configuration.
func (c *ProviderConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.MaxTokens == 0 {
		return fmt.Errorf("max_tokens is required")
	}
	return nil
}

// --- Mock Provider for Testing ---

// MockProvider is a scriptable chat provider for testing. Responses are
// returned in order; the last one repeats once the script runs out.
type MockProvider struct {
	responses   []string
	err         error
	lastRequest *ChatRequest
	callCount   int

	// ChatFunc can be overridden for custom behavior.
	ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// NewMockProvider creates a new mock provider.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// SetError sets an error to return.
func (p *MockProvider) SetError(err error) {
	p.err = err
}

// LastRequest returns the last request.
func (p *MockProvider) LastRequest() *ChatRequest {
	return p.lastRequest
}

// CallCount returns the number of Chat calls made.
func (p *MockProvider) CallCount() int {
	return p.callCount
}

// Chat implements the Provider interface.
func (p *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p.callCount++
	p.lastRequest = &req

	if p.ChatFunc != nil {
		return p.ChatFunc(ctx, req)
	}
	if p.err != nil {
		return nil, p.err
	}

	content := ""
	if len(p.responses) > 0 {
		i := p.callCount - 1
		if i >= len(p.responses) {
			i = len(p.responses) - 1
		}
		content = p.responses[i]
	}

	return &ChatResponse{
		Content:    content,
		StopReason: "end_turn",
	}, nil
}
