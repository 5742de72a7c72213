package vector

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa/internal/models"
)

// Store is an in-memory brute-force cosine-similarity index over chunk
// embeddings. One Store is built per ingested document and replaced wholesale
// by the next successful upload; nothing is persisted.
type Store struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	chunks  []models.Chunk
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Add(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if s.dim == 0 {
			s.dim = len(v)
		}
		if len(v) != s.dim {
			return fmt.Errorf("vector dimension mismatch: got %d want %d", len(v), s.dim)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK chunks nearest to query by cosine similarity, most
// similar first.
func (s *Store) Search(query []float32, topK int) []models.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	if topK > len(s.vectors) {
		topK = len(s.vectors)
	}
	results := make([]models.SearchResult, 0, len(s.vectors))
	for i, v := range s.vectors {
		results = append(results, models.SearchResult{
			Chunk: s.chunks[i],
			Score: cosine(v, query),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results[:topK]
}

// Chunks returns the indexed chunks in insertion order.
func (s *Store) Chunks() []models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
