package sqlitevec

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/vectordbtest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), WithDSN(filepath.Join(t.TempDir(), "vectors.sqlite")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Conformance(t *testing.T) {
	vectordbtest.Run(t, func(t *testing.T) vectordb.VectorStore {
		return newTestStore(t)
	})
}

func TestStore_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	params := vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Dot}
	require.NoError(t, store.CreateCollection(ctx, params))
	err := store.CreateCollection(ctx, params)
	assert.True(t, errors.Is(err, errs.ErrCreation))
	assert.True(t, errors.Is(err, errs.ErrAlreadyExists))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "vectors.sqlite")
	store, err := NewStore(ctx, WithDSN(dsn))
	require.NoError(t, err)
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{1, 0}}, []string{"a"}, map[string]string{"k": "v"}, nil))
	require.NoError(t, store.Close())

	store, err = NewStore(ctx, WithDSN(dsn))
	require.NoError(t, err)
	defer store.Close()
	results, err := store.Search(ctx, "docs", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v", results[0].Metadata["k"])
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestStore_CorruptMetadata(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{1, 0}}, []string{"a"}, nil, nil))
	_, err := store.db.ExecContext(ctx, `UPDATE vecindex_record SET meta = '{oops' WHERE collection = 'docs'`)
	require.NoError(t, err)

	_, err = store.Search(ctx, "docs", []float32{1, 0}, 1)
	assert.True(t, errors.Is(err, errs.ErrSerialization))
}
