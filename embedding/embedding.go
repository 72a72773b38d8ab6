// Package embedding provides text embedding providers for the matching
// engine. A Provider maps free text to fixed-dimension vectors; the
// semantic index embeds every job posting once at build time and each
// resume once per analysis.
//
// Implementations must be deterministic for identical input given fixed
// model weights, since ranking reproducibility depends on it.
package embedding

import (
	"context"
	"fmt"
)

// Provider generates vector embeddings for text.
type Provider interface {
	// Embed generates one embedding per input text, in input order.
	// Empty input text is an error; callers must filter blanks first.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}

// ValidateBatch checks an Embed result against the request that produced
// it: one vector per text, every vector non-empty and of equal length.
// Providers proxy remote APIs, so malformed output is treated as a
// provider failure rather than trusted downstream.
func ValidateBatch(texts []string, vectors [][]float32) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding returned %d vectors for %d texts", len(vectors), len(texts))
	}
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("embedding returned an empty vector")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("embedding dimension mismatch: vector %d has %d values, want %d", i, len(v), dim)
		}
	}
	return nil
}

// checkInput rejects empty batches and blank texts before any network call.
func checkInput(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("no texts to embed")
	}
	for i, t := range texts {
		if t == "" {
			return fmt.Errorf("text %d is empty", i)
		}
	}
	return nil
}

// MockProvider is a deterministic embedding provider for testing. Vectors
// are derived from the input bytes, so identical text always yields an
// identical vector and different texts usually differ.
type MockProvider struct {
	dimension int
}

// NewMockProvider creates a mock provider with the given dimension.
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

// Embed returns deterministic fake embeddings based on the text content.
func (m *MockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := checkInput(texts); err != nil {
		return nil, err
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dimension)
		// Simple rolling hash keeps nearby texts apart without any model.
		var h uint32 = 2166136261
		for j := 0; j < m.dimension; j++ {
			h ^= uint32(text[j%len(text)])
			h *= 16777619
			vec[j] = float32(h%1000)/1000.0 - 0.5
		}
		results[i] = vec
	}
	return results, nil
}

// Dimension returns the embedding dimension.
func (m *MockProvider) Dimension() int {
	return m.dimension
}
