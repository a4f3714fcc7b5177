// Package index ties the catalog, a vector store and an embedding generator
// together into named indexes.
//
// A Manager creates, loads and drops indexes. Creation registers the catalog
// row and the vector collection as one unit: the row only becomes visible
// once the collection exists.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/vecindex/catalog"
	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/splitter"
	"github.com/viant/vecindex/vectordb"
)

// Catalog is the subset of catalog.Repository used by the Manager.
type Catalog interface {
	Begin(ctx context.Context) (catalog.Tx, error)
	GetIndex(ctx context.Context, name string) (*catalog.Definition, error)
	ListIndexes(ctx context.Context) ([]catalog.Definition, error)
	DeleteIndex(ctx context.Context, name string) error
}

// Manager creates and opens indexes.
type Manager struct {
	catalog   Catalog
	store     vectordb.VectorStore
	stores    map[string]vectordb.VectorStore
	generator embeddings.Generator
	logger    *slog.Logger
	chunkSize int
	overlap   int
}

// NewManager creates a Manager creating new collections in store.
func NewManager(cat Catalog, store vectordb.VectorStore, generator embeddings.Generator, opts ...Option) *Manager {
	m := &Manager{
		catalog:   cat,
		store:     store,
		stores:    map[string]vectordb.VectorStore{},
		generator: generator,
		logger:    slog.Default(),
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.stores[store.Name()] = store
	return m
}

// Backend returns the name of the store new indexes are created in.
func (m *Manager) Backend() string { return m.store.Name() }

// CreateIndex registers a new index and creates its collection.
//
// Nothing is written when validation fails, when the name is taken, or when
// the collection cannot be created. If the catalog commit fails after the
// collection was created, the collection is left behind; this is logged and
// reported as a persistence error.
func (m *Manager) CreateIndex(ctx context.Context, params vectordb.CollectionParams, embeddingModel, splitterKind string) error {
	if err := params.Validate(); err != nil {
		return err
	}
	kind, err := splitter.ParseKind(splitterKind)
	if err != nil {
		return err
	}
	if embeddingModel == "" {
		return errs.Validation("embedding model is required")
	}
	tx, err := m.catalog.Begin(ctx)
	if err != nil {
		return err
	}
	def := catalog.Definition{
		Name:           params.Name,
		EmbeddingModel: embeddingModel,
		TextSplitter:   kind.String(),
		Backend:        m.store.Name(),
		DedupFields:    params.DedupFields,
	}
	if err := tx.CreateIndex(ctx, def); err != nil {
		m.rollback(tx, params.Name)
		return err
	}
	if err := m.store.CreateCollection(ctx, params); err != nil {
		m.rollback(tx, params.Name)
		return err
	}
	if err := tx.Commit(); err != nil {
		m.logger.Error("index registration failed after collection was created",
			"index", params.Name, "collection", params.Name, "backend", m.store.Name(), "error", err)
		return errs.Persistence(params.Name, fmt.Errorf("collection %q created in %s but catalog commit failed: %w", params.Name, m.store.Name(), err))
	}
	m.logger.Info("index created", "index", params.Name, "backend", m.store.Name(),
		"dim", params.Dim, "metric", string(params.Metric), "model", embeddingModel, "splitter", kind.String())
	return nil
}

func (m *Manager) rollback(tx catalog.Tx, name string) {
	if err := tx.Rollback(); err != nil {
		m.logger.Warn("catalog rollback failed", "index", name, "error", err)
	}
}

// Load opens an existing index.
func (m *Manager) Load(ctx context.Context, name string) (*Index, error) {
	def, err := m.catalog.GetIndex(ctx, name)
	if err != nil {
		return nil, err
	}
	textSplitter, err := splitter.NewByName(def.TextSplitter)
	if err != nil {
		return nil, err
	}
	store, err := m.backend(def)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("index loaded", "index", name, "backend", def.Backend)
	return &Index{
		definition: *def,
		store:      store,
		generator:  m.generator,
		splitter:   textSplitter,
		chunkSize:  m.chunkSize,
		overlap:    m.overlap,
	}, nil
}

// DropIndex removes the collection and then the catalog row.
func (m *Manager) DropIndex(ctx context.Context, name string) error {
	def, err := m.catalog.GetIndex(ctx, name)
	if err != nil {
		return err
	}
	store, err := m.backend(def)
	if err != nil {
		return err
	}
	if err := store.DropCollection(ctx, name); err != nil {
		return err
	}
	if err := m.catalog.DeleteIndex(ctx, name); err != nil {
		return err
	}
	m.logger.Info("index dropped", "index", name, "backend", def.Backend)
	return nil
}

// ListIndexes returns every registered index definition.
func (m *Manager) ListIndexes(ctx context.Context) ([]catalog.Definition, error) {
	return m.catalog.ListIndexes(ctx)
}

func (m *Manager) backend(def *catalog.Definition) (vectordb.VectorStore, error) {
	store, ok := m.stores[def.Backend]
	if !ok {
		return nil, errs.Validation("index %q uses vector backend %q which is not configured", def.Name, def.Backend)
	}
	return store, nil
}
