package ingest

import (
	"context"
	"fmt"

	"docqa/internal/chunk"
	"docqa/internal/extract"
	"docqa/internal/models"
	"docqa/internal/providers"
	"docqa/internal/util"
	"docqa/internal/vector"
)

// TextExtractor turns a file on disk into raw text plus discovered URLs.
type TextExtractor interface {
	Extract(path, ext string) (extract.Result, error)
}

// PageHarvester fetches referenced URLs and returns their visible text.
type PageHarvester interface {
	Harvest(ctx context.Context, urls []string) []models.HarvestedPage
}

// Pipeline runs one document through extraction, reference harvesting,
// chunking and embedding, producing the in-memory index for the session.
// Every step runs synchronously inside the upload request.
type Pipeline struct {
	extractor    TextExtractor
	harvester    PageHarvester
	providers    *providers.Manager
	chunkSize    int
	chunkOverlap int
}

func NewPipeline(extractor TextExtractor, harvester PageHarvester, pm *providers.Manager, chunkSize, chunkOverlap int) *Pipeline {
	return &Pipeline{
		extractor:    extractor,
		harvester:    harvester,
		providers:    pm,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Run returns the populated index and the number of chunks it holds. There is
// no partial result: an embedding failure aborts the whole ingestion.
func (p *Pipeline) Run(ctx context.Context, path, ext string) (*vector.Store, int, error) {
	res, err := p.extractor.Extract(path, ext)
	if err != nil {
		return nil, 0, err
	}

	combined := res.Text
	for _, page := range p.harvester.Harvest(ctx, res.URLs) {
		combined += "\n" + fmt.Sprintf("[Referenced from %s]\n%s", page.URL, page.Text)
	}
	// Extracted and harvested text alike leak control characters.
	combined = util.SanitizeText(combined)

	parts, err := chunk.Split(combined, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return nil, 0, err
	}

	chunks := make([]models.Chunk, 0, len(parts))
	texts := make([]string, 0, len(parts))
	for i, part := range parts {
		chunkID := util.SHA256Hex([]byte(fmt.Sprintf("%d:%s", i, part)))
		chunks = append(chunks, models.Chunk{ChunkID: chunkID, Index: i, Text: part})
		texts = append(texts, part)
	}

	vectors, err := p.embed(ctx, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
	}

	store := vector.NewStore()
	if err := store.Add(chunks, vectors); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
	}
	return store, len(chunks), nil
}

// embed tries each configured embedding provider in preference order and
// keeps the first full batch.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for _, idx := range p.providers.PreferredEmbedOrder() {
		prov, _ := p.providers.EmbedProviderByIndex(idx)
		vectors, _, err := prov.Embed(ctx, providers.EmbedRequest{
			Operation: "ingest_embed",
			Inputs:    texts,
		})
		if err == nil && len(vectors) == len(texts) {
			return vectors, nil
		}
		if err == nil {
			err = fmt.Errorf("provider returned %d vectors for %d inputs", len(vectors), len(texts))
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no embedding providers configured")
	}
	return nil, lastErr
}
