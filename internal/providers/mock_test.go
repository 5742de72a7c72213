package providers

import (
	"context"
	"testing"
)

func TestMockEmbedDeterministic(t *testing.T) {
	m := NewMockProvider(64)
	a, _, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"hello"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"hello"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 1 || len(a[0]) != 64 {
		t.Fatalf("unexpected vector shape: %d x %d", len(a), len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}
