package providers

import (
	"context"
	"errors"
	"testing"
)

func TestCohereMissingKeySurfacesSentinel(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "")
	p := NewCohereProvider("")
	if p.HasKey() {
		t.Fatalf("expected no key")
	}
	_, _, err := p.Embed(context.Background(), EmbedRequest{Inputs: []string{"x"}})
	if !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected ErrKeyMissing, got %v", err)
	}
	_, _, err = p.Generate(context.Background(), GenerateRequest{Prompt: "q"})
	if !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected ErrKeyMissing, got %v", err)
	}
}
