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

// GoogleProvider generates embeddings using Google's Gemini embedding API.
type GoogleProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GoogleConfig configures the Google embedding provider.
type GoogleConfig struct {
	APIKey  string
	Model   string // default: text-embedding-004
	BaseURL string // default: https://generativelanguage.googleapis.com/v1beta
}

// NewGoogleProvider creates a new Google embedding provider.
func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required for google embeddings")
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GoogleProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type googleEmbedRequest struct {
	Model   string             `json:"model"`
	Content googleEmbedContent `json:"content"`
}

type googleEmbedContent struct {
	Parts []googleEmbedPart `json:"parts"`
}

type googleEmbedPart struct {
	Text string `json:"text"`
}

type googleEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed generates embeddings one text at a time (the API is per-content).
func (p *GoogleProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := checkInput(texts); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		reqBody := googleEmbedRequest{
			Model:   "models/" + p.model,
			Content: googleEmbedContent{Parts: []googleEmbedPart{{Text: text}}},
		}
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", p.baseURL, p.model, p.apiKey)
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
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
			return nil, fmt.Errorf("google embedding error (status %d): %s", resp.StatusCode, string(body))
		}

		var embedResp googleEmbedResponse
		if err := json.Unmarshal(body, &embedResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		results[i] = embedResp.Embedding.Values
	}

	if err := ValidateBatch(texts, results); err != nil {
		return nil, err
	}
	return results, nil
}

// Dimension returns the embedding dimension for the configured model.
func (p *GoogleProvider) Dimension() int {
	return 768
}
