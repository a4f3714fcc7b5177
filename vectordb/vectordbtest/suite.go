// Package vectordbtest holds the behaviour every vectordb.VectorStore
// backend must share. Backend packages run it from their own tests.
package vectordbtest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/vectordb"
)

// Factory returns a store ready for use; it may be shared between subtests.
type Factory func(t *testing.T) vectordb.VectorStore

// CollectionName returns a collection name unique across runs so the suite
// can share a long lived server.
func CollectionName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Run executes the conformance suite.
func Run(t *testing.T, factory Factory) {
	t.Run("CreateAndSearch", func(t *testing.T) { testCreateAndSearch(t, factory(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, factory(t)) })
	t.Run("UpsertDedupFields", func(t *testing.T) { testUpsertDedupFields(t, factory(t)) })
	t.Run("UpsertTextHash", func(t *testing.T) { testUpsertTextHash(t, factory(t)) })
	t.Run("UpsertLengthMismatch", func(t *testing.T) { testUpsertLengthMismatch(t, factory(t)) })
	t.Run("UpsertZeroCosine", func(t *testing.T) { testUpsertZeroCosine(t, factory(t)) })
	t.Run("DropIdempotent", func(t *testing.T) { testDropIdempotent(t, factory(t)) })
	t.Run("MissingCollection", func(t *testing.T) { testMissingCollection(t, factory(t)) })
	t.Run("Metrics", func(t *testing.T) { testMetrics(t, factory(t)) })
	t.Run("Name", func(t *testing.T) { assert.NotEmpty(t, factory(t).Name()) })
}

func create(t *testing.T, store vectordb.VectorStore, prefix string, dim int, metric vectordb.Metric) string {
	t.Helper()
	name := CollectionName(prefix)
	require.NoError(t, store.CreateCollection(context.Background(), vectordb.CollectionParams{Name: name, Dim: dim, Metric: metric}))
	t.Cleanup(func() { _ = store.DropCollection(context.Background(), name) })
	return name
}

func testCreateAndSearch(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := create(t, store, "search", 2, vectordb.Cosine)

	count, err := store.Count(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	results, err := store.Search(ctx, name, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	attrs := map[string]string{"user_id": "u1"}
	require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}, {0, 1}}, []string{"east", "north"}, attrs, nil))

	results, err = store.Search(ctx, name, []float32{1, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "east", results[0].Text)
	assert.Equal(t, vectordb.RecordID("east", attrs, nil), results[0].ID)
	assert.Equal(t, 0, results[0].ChunkIndex)
	assert.Equal(t, "u1", results[0].Metadata["user_id"])

	results, err = store.Search(ctx, name, []float32{0.1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "north", results[0].Text)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.Equal(t, "east", results[1].Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func testCreateDuplicate(t *testing.T, store vectordb.VectorStore) {
	name := create(t, store, "dup", 2, vectordb.Cosine)
	err := store.CreateCollection(context.Background(), vectordb.CollectionParams{Name: name, Dim: 2, Metric: vectordb.Cosine})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrCreation), err.Error())
}

func testUpsertDedupFields(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := create(t, store, "dedup", 2, vectordb.Cosine)
	fields := []string{"user_id", "url"}
	attrs := map[string]string{"user_id": "u1", "url": "http://example.com", "lang": "en"}

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}, {0, 1}}, []string{"chunk one", "chunk two"}, attrs, fields))
	}
	count, err := store.Count(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	results, err := store.Search(ctx, name, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk two", results[0].Text)
	assert.Equal(t, vectordb.RecordID("", attrs, fields), results[0].ID)
}

func testUpsertTextHash(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := create(t, store, "texthash", 2, vectordb.Cosine)

	require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}}, []string{"same"}, map[string]string{"v": "1"}, nil))
	require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}}, []string{"same"}, map[string]string{"v": "2"}, nil))
	count, err := store.Count(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	results, err := store.Search(ctx, name, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].Metadata["v"])

	require.NoError(t, store.Upsert(ctx, name, [][]float32{{0, 1}}, []string{"other"}, nil, nil))
	count, err = store.Count(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func testUpsertLengthMismatch(t *testing.T, store vectordb.VectorStore) {
	name := create(t, store, "mismatch", 2, vectordb.Cosine)
	err := store.Upsert(context.Background(), name, [][]float32{{1, 0}}, []string{"a", "b"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrWrite))
}

func testUpsertZeroCosine(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := create(t, store, "zero", 2, vectordb.Cosine)
	require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}}, []string{"east"}, nil, nil))

	err := store.Upsert(ctx, name, [][]float32{{0, 0}}, []string{"nowhere"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrWrite), err.Error())
	assert.True(t, errors.Is(err, vectordb.ErrZeroVector), err.Error())

	results, err := store.Search(ctx, name, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "east", results[0].Text)

	euclidean := create(t, store, "zerol2", 2, vectordb.Euclidean)
	require.NoError(t, store.Upsert(ctx, euclidean, [][]float32{{0, 0}}, []string{"origin"}, nil, nil))
}

func testDropIdempotent(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := CollectionName("drop")
	require.NoError(t, store.DropCollection(ctx, name))

	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: name, Dim: 2, Metric: vectordb.Cosine}))
	require.NoError(t, store.Upsert(ctx, name, [][]float32{{1, 0}}, []string{"a"}, nil, nil))
	require.NoError(t, store.DropCollection(ctx, name))
	require.NoError(t, store.DropCollection(ctx, name))

	_, err := store.Count(ctx, name)
	assert.True(t, errors.Is(err, errs.ErrRead))

	require.NoError(t, store.CreateCollection(ctx, vectordb.CollectionParams{Name: name, Dim: 2, Metric: vectordb.Cosine}))
	count, err := store.Count(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	require.NoError(t, store.DropCollection(ctx, name))
}

func testMissingCollection(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	name := CollectionName("missing")

	_, err := store.Count(ctx, name)
	assert.True(t, errors.Is(err, errs.ErrRead))

	_, err = store.Search(ctx, name, []float32{1, 0}, 1)
	assert.True(t, errors.Is(err, errs.ErrRead))

	err = store.Upsert(ctx, name, [][]float32{{1, 0}}, []string{"a"}, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrWrite))
}

func testMetrics(t *testing.T, store vectordb.VectorStore) {
	ctx := context.Background()
	vectors := [][]float32{{1, 0}, {3, 0.5}}
	texts := []string{"near", "far"}

	euclidean := create(t, store, "l2", 2, vectordb.Euclidean)
	require.NoError(t, store.Upsert(ctx, euclidean, vectors, texts, nil, nil))
	results, err := store.Search(ctx, euclidean, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Text)

	dot := create(t, store, "dot", 2, vectordb.Dot)
	require.NoError(t, store.Upsert(ctx, dot, vectors, texts, nil, nil))
	results, err = store.Search(ctx, dot, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "far", results[0].Text)
}
