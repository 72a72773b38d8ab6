package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaProvider generates embeddings using a local Ollama server. This is
// the zero-key option for running the matcher entirely offline with a
// model like all-minilm, the same family the original dataset was indexed
// with.
type OllamaProvider struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

// OllamaConfig configures the Ollama embedding provider.
type OllamaConfig struct {
	BaseURL   string // default: http://localhost:11434
	Model     string // default: all-minilm
	Dimension int    // model-specific; inferred for known models
}

// NewOllamaProvider creates a new Ollama embedding provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "all-minilm"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		switch model {
		case "all-minilm":
			dimension = 384
		case "mxbai-embed-large":
			dimension = 1024
		default:
			dimension = 768 // nomic-embed-text and most others
		}
	}
	return &OllamaProvider{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates embeddings one text at a time.
func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := checkInput(texts); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		jsonBody, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: text})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embed", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ollama embedding error (status %d): %s", resp.StatusCode, string(body))
		}

		var embedResp ollamaEmbedResponse
		if err := json.Unmarshal(body, &embedResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if len(embedResp.Embeddings) == 0 {
			return nil, fmt.Errorf("ollama returned no embedding for text %d", i)
		}
		results[i] = embedResp.Embeddings[0]
	}

	if err := ValidateBatch(texts, results); err != nil {
		return nil, err
	}
	return results, nil
}

// Dimension returns the embedding dimension.
func (p *OllamaProvider) Dimension() int {
	return p.dimension
}
