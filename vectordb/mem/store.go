// Package mem implements an in-process vector store backed by an HNSW graph
// per collection, with optional snapshots to any afs supported location.
package mem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/afs"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/vectordb"
)

// Name is the backend identifier.
const Name = "memory"

// Store keeps collections in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	snapshotURL string
	fs          afs.Service
	m           int
	efSearch    int
}

// Option configures the store.
type Option func(*Store)

// WithSnapshotURL sets the location Persist writes to and Open restores from.
func WithSnapshotURL(URL string) Option {
	return func(s *Store) { s.snapshotURL = URL }
}

// WithM sets the HNSW neighbourhood size.
func WithM(m int) Option {
	return func(s *Store) {
		if m > 0 {
			s.m = m
		}
	}
}

// WithEfSearch sets the HNSW search candidate list size.
func WithEfSearch(ef int) Option {
	return func(s *Store) {
		if ef > 0 {
			s.efSearch = ef
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: map[string]*collection{},
		fs:          afs.New(),
		m:           16,
		efSearch:    64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and restores every snapshot found at the snapshot URL.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := New(opts...)
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the backend identifier.
func (s *Store) Name() string { return Name }

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(ctx context.Context, params vectordb.CollectionParams) error {
	if err := params.Validate(); err != nil {
		return errs.Creation(params.Name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[params.Name]; ok {
		return errs.Creation(params.Name, errs.AlreadyExists(params.Name))
	}
	s.collections[params.Name] = newCollection(params, s.m, s.efSearch)
	return nil
}

// Upsert writes records, replacing those with equal ids.
func (s *Store) Upsert(ctx context.Context, name string, embeddings [][]float32, texts []string, attrs map[string]string, dedupFields []string) error {
	records, err := vectordb.BuildRecords(name, embeddings, texts, attrs, dedupFields)
	if err != nil {
		return err
	}
	c, err := s.collection(name)
	if err != nil {
		return errs.Write(name, err)
	}
	if err := c.upsert(records); err != nil {
		return errs.Write(name, err)
	}
	return nil
}

// Search returns up to k nearest records.
func (s *Store) Search(ctx context.Context, name string, query []float32, k int) ([]schema.SearchResult, error) {
	c, err := s.collection(name)
	if err != nil {
		return nil, errs.Read(name, err)
	}
	matches, err := c.search(query, k)
	if err != nil {
		return nil, errs.Read(name, err)
	}
	results := make([]schema.SearchResult, 0, len(matches))
	for _, match := range matches {
		result, err := match.record.Result(name, match.score)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// DropCollection removes the collection and its snapshot.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	delete(s.collections, name)
	s.mu.Unlock()
	if s.snapshotURL == "" {
		return nil
	}
	URL := s.snapshotFile(name)
	if ok, _ := s.fs.Exists(ctx, URL); ok {
		if err := s.fs.Delete(ctx, URL); err != nil {
			return errs.Deletion(name, err)
		}
	}
	return nil
}

// Count returns the number of live records.
func (s *Store) Count(ctx context.Context, name string) (int64, error) {
	c, err := s.collection(name)
	if err != nil {
		return 0, errs.Read(name, err)
	}
	return int64(c.count()), nil
}

// Collections lists collection names in sorted order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) collection(name string) (*collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", name)
	}
	return c, nil
}
