package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/models"
	"docqa/internal/providers"
	"docqa/internal/util"
)

type fakeExtractor struct {
	res extract.Result
	err error
}

func (f fakeExtractor) Extract(path, ext string) (extract.Result, error) {
	return f.res, f.err
}

type fakeHarvester struct {
	pages []models.HarvestedPage
}

func (f fakeHarvester) Harvest(ctx context.Context, urls []string) []models.HarvestedPage {
	return f.pages
}

func mockManager(t *testing.T) *providers.Manager {
	t.Helper()
	cfg := config.Config{LLMProviders: "mock", EmbedProviders: "mock", EmbedDim: 64}
	pm, err := providers.NewManager(cfg)
	require.NoError(t, err)
	return pm
}

func TestPipelineCombinesDocumentAndReferences(t *testing.T) {
	extractor := fakeExtractor{res: extract.Result{
		Text: "See https://example.com/page for details.",
		URLs: []string{"https://example.com/page"},
	}}
	harvester := fakeHarvester{pages: []models.HarvestedPage{
		{URL: "https://example.com/page", Text: "Reference page body."},
	}}

	p := NewPipeline(extractor, harvester, mockManager(t), 1000, 200)
	store, count, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 1, store.Len())

	text := store.Chunks()[0].Text
	require.Contains(t, text, "See https://example.com/page for details.")
	require.Contains(t, text, "[Referenced from https://example.com/page]")
	require.Contains(t, text, "Reference page body.")
}

func TestPipelineChunkIDsAreStable(t *testing.T) {
	extractor := fakeExtractor{res: extract.Result{Text: strings.Repeat("word ", 600)}}
	p := NewPipeline(extractor, fakeHarvester{}, mockManager(t), 1000, 200)

	a, _, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.NoError(t, err)
	b, _, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := range a.Chunks() {
		require.Equal(t, a.Chunks()[i].ChunkID, b.Chunks()[i].ChunkID)
		require.Equal(t, i, a.Chunks()[i].Index)
	}
}

func TestPipelineSanitizesAllText(t *testing.T) {
	extractor := fakeExtractor{res: extract.Result{
		Text: "Doc\x00 body",
		URLs: []string{"https://example.com/r"},
	}}
	harvester := fakeHarvester{pages: []models.HarvestedPage{
		{URL: "https://example.com/r", Text: "ref\x00 text\x01 here"},
	}}

	p := NewPipeline(extractor, harvester, mockManager(t), 1000, 200)
	store, _, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.NoError(t, err)

	text := store.Chunks()[0].Text
	require.NotContains(t, text, "\x00")
	require.NotContains(t, text, "\x01")
	require.Contains(t, text, "Doc body")
	require.Contains(t, text, "ref text here")
}

func TestPipelineRejectsEmptyDocument(t *testing.T) {
	p := NewPipeline(fakeExtractor{res: extract.Result{Text: "   \n"}}, fakeHarvester{}, mockManager(t), 1000, 200)
	_, _, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.ErrorIs(t, err, util.ErrNoExtractableText)
}

func TestPipelinePropagatesExtractionError(t *testing.T) {
	boom := errors.New("corrupt file")
	p := NewPipeline(fakeExtractor{err: boom}, fakeHarvester{}, mockManager(t), 1000, 200)
	_, _, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.ErrorIs(t, err, boom)
}

func TestPipelineEmbeddingFailureWithoutCredential(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "")
	t.Setenv("DOCQA_COHERE_KEY", "")

	cfg := config.Config{LLMProviders: "cohere", EmbedProviders: "cohere", EmbedDim: 64}
	pm, err := providers.NewManager(cfg)
	require.NoError(t, err)

	p := NewPipeline(fakeExtractor{res: extract.Result{Text: "some document text"}}, fakeHarvester{}, pm, 1000, 200)
	_, _, err = p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.ErrorIs(t, err, util.ErrEmbeddingUnavailable)
	require.ErrorIs(t, err, providers.ErrKeyMissing)
}

func TestPipelineChunkCountForLongText(t *testing.T) {
	p := NewPipeline(fakeExtractor{res: extract.Result{Text: strings.Repeat("a", 2600)}}, fakeHarvester{}, mockManager(t), 1000, 200)
	_, count, err := p.Run(context.Background(), "/tmp/doc.pdf", "pdf")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
