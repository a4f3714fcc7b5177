// Package embeddings defines embedding clients and routes embedding
// requests to them by model name.
package embeddings

import "context"

// Embedder is a minimal interface for computing vector embeddings
// for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces one embedding per input text using the named model.
type Generator interface {
	GenerateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error)
}
