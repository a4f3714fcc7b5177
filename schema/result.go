package schema

// SearchResult represents a stored chunk returned by similarity search.
type SearchResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	// Score is the backend similarity score; for euclidean collections it is
	// the distance, so lower values are closer.
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
