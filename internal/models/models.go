package models

// HarvestedPage is the visible text pulled from one URL referenced by a
// document.
type HarvestedPage struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type Chunk struct {
	ChunkID string `json:"chunk_id"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
}

type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
