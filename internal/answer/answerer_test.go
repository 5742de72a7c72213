package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/models"
	"docqa/internal/providers"
	"docqa/internal/util"
	"docqa/internal/vector"
)

func mockManager(t *testing.T) *providers.Manager {
	t.Helper()
	cfg := config.Config{LLMProviders: "mock", EmbedProviders: "mock", EmbedDim: 64}
	pm, err := providers.NewManager(cfg)
	require.NoError(t, err)
	return pm
}

func populatedStore(t *testing.T, pm *providers.Manager, texts []string) *vector.Store {
	t.Helper()
	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, models.Chunk{ChunkID: text, Index: i, Text: text})
	}
	prov, _ := pm.EmbedProviderByIndex(0)
	vectors, _, err := prov.Embed(context.Background(), providers.EmbedRequest{
		Operation: "ingest_embed",
		Inputs:    texts,
	})
	require.NoError(t, err)

	store := vector.NewStore()
	require.NoError(t, store.Add(chunks, vectors))
	return store
}

func TestAnswerWithoutIndex(t *testing.T) {
	a := New(mockManager(t), 4)
	for _, store := range []*vector.Store{nil, vector.NewStore()} {
		_, err := a.Answer(context.Background(), "what is this?", store)
		require.ErrorIs(t, err, util.ErrNoIndex)
	}
}

func TestAnswerReturnsModelText(t *testing.T) {
	pm := mockManager(t)
	store := populatedStore(t, pm, []string{
		"The shipment arrives on Tuesday.",
		"Invoices are due within thirty days.",
	})

	a := New(pm, 4)
	got, err := a.Answer(context.Background(), "When does the shipment arrive?", store)
	require.NoError(t, err)
	require.Equal(t, "Deterministic answer based on 2 retrieved context chunk(s).", got)
}

func TestAnswerLimitsContextToTopK(t *testing.T) {
	pm := mockManager(t)
	store := populatedStore(t, pm, []string{"one", "two", "three", "four", "five"})

	a := New(pm, 2)
	got, err := a.Answer(context.Background(), "anything", store)
	require.NoError(t, err)
	require.Equal(t, "Deterministic answer based on 2 retrieved context chunk(s).", got)
}

func TestAnswerMissingCredential(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "")

	cfg := config.Config{LLMProviders: "cohere", EmbedProviders: "mock", EmbedDim: 64}
	pm, err := providers.NewManager(cfg)
	require.NoError(t, err)

	store := populatedStore(t, pm, []string{"indexed text"})
	a := New(pm, 4)
	_, err = a.Answer(context.Background(), "question", store)
	require.ErrorIs(t, err, providers.ErrKeyMissing)
}
