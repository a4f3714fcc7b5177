package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/vecindex/catalog"
	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/embeddings/simple"
	"github.com/viant/vecindex/index"
	"github.com/viant/vecindex/logging"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/mem"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	ctx := context.Background()
	repo, err := catalog.Open(ctx, catalog.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	router := embeddings.NewRouter()
	router.Register("bow", simple.NewBagOfWords(384))
	manager := index.NewManager(repo, mem.New(), router, index.WithLogger(logging.Discard()))
	require.NoError(t, manager.CreateIndex(ctx, vectordb.CollectionParams{Name: "hello", Dim: 384, Metric: vectordb.Cosine}, "bow", "noop"))
	return &Handler{manager: manager, logger: logging.Discard()}
}

func TestHandler_AddSearch(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	added, err := h.add(ctx, &AddInput{Index: "hello", Texts: []string{"hello world", "hello pipe", "nba"}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, added.Records)

	out, err := h.search(ctx, &SearchInput{Index: "hello", Query: "pipe", Limit: 1})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "hello pipe", out.Results[0].Text)

	out, err = h.search(ctx, &SearchInput{Index: "hello", Query: "pipe"})
	require.NoError(t, err)
	assert.Len(t, out.Results, 3)
}

func TestHandler_Errors(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	_, err := h.search(ctx, &SearchInput{Query: "pipe"})
	assert.ErrorContains(t, err, "missing index")
	_, err = h.search(ctx, &SearchInput{Index: "hello"})
	assert.ErrorContains(t, err, "missing query")
	_, err = h.search(ctx, &SearchInput{Index: "missing", Query: "pipe"})
	assert.Error(t, err)
	_, err = h.add(ctx, nil)
	assert.Error(t, err)
}

func TestHandler_Indexes(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	out, err := h.indexes(ctx, &IndexesInput{})
	require.NoError(t, err)
	require.Len(t, out.Indexes, 1)
	assert.Equal(t, "hello", out.Indexes[0].Name)
	assert.Equal(t, mem.Name, out.Indexes[0].Backend)
	assert.EqualValues(t, 0, out.Indexes[0].Records)

	out, err = h.indexes(ctx, &IndexesInput{Name: "other"})
	require.NoError(t, err)
	assert.Empty(t, out.Indexes)
}

func TestBuildErrorResult(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)

	_, err := h.search(ctx, &SearchInput{Query: "pipe"})
	result, rpcErr := buildErrorResult(err)
	assert.Nil(t, result)
	require.NotNil(t, rpcErr)
	assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)

	_, err = h.search(ctx, &SearchInput{Index: "missing", Query: "pipe"})
	require.Error(t, err)
	result, rpcErr = buildErrorResult(err)
	assert.Nil(t, rpcErr)
	require.NotNil(t, result)
	require.NotNil(t, result.IsError)
	assert.True(t, *result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(schema.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "index not found: missing")
}
