// Package vectordb defines the contract every vector store backend satisfies
// and the record model shared by the backends.
package vectordb

import (
	"context"
	"strings"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
)

// VectorStore stores embedded chunks in named collections.
//
// Implementations must be safe for concurrent use. Errors are *errs.Error
// values of kind Creation, Write, Read or Deletion wrapping the backend
// error.
type VectorStore interface {
	// CreateCollection creates an empty collection. When the backend reports
	// that it already exists the returned creation error wraps
	// errs.AlreadyExists.
	CreateCollection(ctx context.Context, params CollectionParams) error
	// Upsert writes one record per (embedding, text) pair, replacing records
	// with the same content derived id.
	Upsert(ctx context.Context, collection string, embeddings [][]float32, texts []string, attrs map[string]string, dedupFields []string) error
	// Search returns up to k records closest to query, closest first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]schema.SearchResult, error)
	// DropCollection removes a collection; dropping a missing one succeeds.
	DropCollection(ctx context.Context, collection string) error
	// Count returns the exact number of records in a collection.
	Count(ctx context.Context, collection string) (int64, error)
	// Name is the stable backend identifier stored in the catalog.
	Name() string
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}

// Persister is implemented by stores that keep data in memory and flush it
// explicitly.
type Persister interface {
	Persist(ctx context.Context) error
}

// Metric is the distance function of a collection.
type Metric string

const (
	Dot       Metric = "dot"
	Euclidean Metric = "euclidean"
	Cosine    Metric = "cosine"
)

// ParseMetric resolves a metric name.
func ParseMetric(name string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(name))) {
	case Dot:
		return Dot, nil
	case Euclidean, "l2":
		return Euclidean, nil
	case Cosine, "cos":
		return Cosine, nil
	}
	return "", errs.Validation("unsupported metric %q", name)
}

// CollectionParams describes a collection to create.
type CollectionParams struct {
	Name        string
	Dim         int
	Metric      Metric
	DedupFields []string
}

// Validate checks params before any side effect.
func (p CollectionParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errs.Validation("index name is required")
	}
	if p.Dim <= 0 {
		return errs.Validation("vector dimension must be positive, got %d", p.Dim)
	}
	if _, err := ParseMetric(string(p.Metric)); err != nil {
		return err
	}
	return nil
}
