package mem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/vectordbtest"
)

func TestStore_Conformance(t *testing.T) {
	vectordbtest.Run(t, func(t *testing.T) vectordb.VectorStore {
		return New()
	})
}

func TestStore_ConformanceWithSnapshots(t *testing.T) {
	vectordbtest.Run(t, func(t *testing.T) vectordb.VectorStore {
		return New(WithSnapshotURL(t.TempDir()))
	})
}

func TestStore_PersistAndOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(WithSnapshotURL(dir))
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "empty", Dim: 3, Metric: vectordb.Euclidean}))
	attrs := map[string]string{"user_id": "u1"}
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{1, 0}, {0, 1}}, []string{"east", "north"}, attrs, nil))
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{0.9, 0.1}}, []string{"east"}, attrs, nil))
	require.NoError(t, store.Persist(ctx))

	restored, err := Open(ctx, WithSnapshotURL(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "empty"}, restored.Collections())

	count, err := restored.Count(ctx, "docs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	results, err := restored.Search(ctx, "docs", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "east", results[0].Text)
	assert.Equal(t, "u1", results[0].Metadata["user_id"])

	require.NoError(t, restored.DropCollection(ctx, "docs"))
	reopened, err := Open(ctx, WithSnapshotURL(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"empty"}, reopened.Collections())
}

func TestStore_PersistFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(WithSnapshotURL(dir))
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{1, 0}}, []string{"east"}, nil, nil))
	require.NoError(t, store.Persist(ctx))

	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{0, 1}}, []string{"north"}, nil, nil))
	require.NoError(t, os.RemoveAll(filepath.Join(dir, stagingDir)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stagingDir), []byte("blocked"), 0o644))
	err := store.Persist(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrWrite))

	restored, err := Open(ctx, WithSnapshotURL(dir))
	require.NoError(t, err)
	count, err := restored.Count(ctx, "docs")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, os.Remove(filepath.Join(dir, stagingDir)))
	require.NoError(t, store.Persist(ctx))
	restored, err = Open(ctx, WithSnapshotURL(dir))
	require.NoError(t, err)
	count, err = restored.Count(ctx, "docs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestStore_ReplacedRecordsKeepResultSize(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Euclidean}))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{0, 0}}, []string{"origin"}, nil, nil))
	}
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{5, 5}}, []string{"far"}, nil, nil))

	results, err := store.Search(ctx, "docs", []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "origin", results[0].Text)
	assert.Equal(t, "far", results[1].Text)
}

func TestStore_ReingestKeepsGraphBounded(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "d", Dim: 2, Metric: vectordb.Cosine}))
	fields := []string{"url"}
	attrs := map[string]string{"url": "http://example.com"}
	require.NoError(t, store.Upsert(ctx, "d", [][]float32{{0, 1}}, []string{"other"}, nil, nil))
	for i := 0; i < 200; i++ {
		require.NoError(t, store.Upsert(ctx, "d", [][]float32{{1, float32(i) / 200}}, []string{"page"}, attrs, fields))
	}

	c, err := store.collection("d")
	require.NoError(t, err)
	assert.Equal(t, 2, c.count())
	assert.LessOrEqual(t, c.graph.Len(), 4)

	results, err := store.Search(ctx, "d", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "page", results[0].Text)
	assert.Equal(t, "other", results[1].Text)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	assert.Error(t, store.Upsert(ctx, "docs", [][]float32{{1, 0, 0}}, []string{"a"}, nil, nil))
	_, err := store.Search(ctx, "docs", []float32{1}, 1)
	assert.Error(t, err)
}

func TestStore_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(WithSnapshotURL(dir))
	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: "docs", Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.Upsert(ctx, "docs", [][]float32{{1, 0}}, []string{"east"}, nil, nil))
	require.NoError(t, store.Persist(ctx))

	path := filepath.Join(dir, "docs"+snapshotExt)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Open(ctx, WithSnapshotURL(dir))
	assert.True(t, errors.Is(err, errs.ErrSerialization))
}

func TestSeal(t *testing.T) {
	sealed, err := seal([]byte("payload"))
	require.NoError(t, err)
	payload, err := unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(payload))

	_, err = unseal(sealed[:4])
	assert.Error(t, err)
}
