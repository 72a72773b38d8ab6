package embedding

import (
	"context"
	"testing"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider(64)

	a, err := p.Embed(context.Background(), []string{"golang developer"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	b, err := p.Embed(context.Background(), []string{"golang developer"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	if len(a[0]) != 64 {
		t.Fatalf("expected dimension 64, got %d", len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("mock provider should be deterministic")
		}
	}
}

func TestMockProviderDistinctTexts(t *testing.T) {
	p := NewMockProvider(64)

	vecs, err := p.Embed(context.Background(), []string{"python data scientist", "golang backend engineer"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	same := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should not produce identical vectors")
	}
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	p := NewMockProvider(8)

	if _, err := p.Embed(context.Background(), nil); err == nil {
		t.Error("expected error for empty batch")
	}
	if _, err := p.Embed(context.Background(), []string{"ok", ""}); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestValidateBatch(t *testing.T) {
	texts := []string{"a", "b"}

	if err := ValidateBatch(texts, [][]float32{{1, 2}, {3, 4}}); err != nil {
		t.Errorf("valid batch rejected: %v", err)
	}
	if err := ValidateBatch(texts, [][]float32{{1, 2}}); err == nil {
		t.Error("expected error for missing vector")
	}
	if err := ValidateBatch(texts, [][]float32{{1, 2}, {3}}); err == nil {
		t.Error("expected error for dimension mismatch")
	}
	if err := ValidateBatch(texts, [][]float32{{}, {}}); err == nil {
		t.Error("expected error for empty vectors")
	}
}
