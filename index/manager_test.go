package index

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/viant/vecindex/catalog"
	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/embeddings/simple"
	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/logging"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/mem"
	"github.com/viant/vecindex/vectordb/sqlitevec"
)

const (
	testModel = "bow"
	testDim   = 384
)

func newCatalog(t *testing.T) *catalog.Repository {
	t.Helper()
	repo, err := catalog.Open(context.Background(), catalog.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newRouter() *embeddings.Router {
	router := embeddings.NewRouter()
	router.Register(testModel, simple.NewBagOfWords(testDim))
	return router
}

func newManager(t *testing.T, store vectordb.VectorStore, opts ...Option) (*Manager, *catalog.Repository) {
	t.Helper()
	repo := newCatalog(t)
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewManager(repo, store, newRouter(), opts...), repo
}

func params(name string, dedupFields ...string) vectordb.CollectionParams {
	return vectordb.CollectionParams{Name: name, Dim: testDim, Metric: vectordb.Cosine, DedupFields: dedupFields}
}

// failingStore fails collection creation and delegates everything else.
type failingStore struct {
	vectordb.VectorStore
	created int32
}

func (s *failingStore) CreateCollection(ctx context.Context, p vectordb.CollectionParams) error {
	atomic.AddInt32(&s.created, 1)
	return errs.Creation(p.Name, errors.New("backend unavailable"))
}

// countingGenerator records how many embedding calls were made.
type countingGenerator struct {
	embeddings.Generator
	calls int32
}

func (g *countingGenerator) GenerateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error) {
	atomic.AddInt32(&g.calls, 1)
	return g.Generator.GenerateEmbeddings(ctx, texts, model)
}

func TestManager_CreateIndex_Unique(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	manager, repo := newManager(t, store)

	require.NoError(t, manager.CreateIndex(ctx, params("docs"), testModel, "noop"))
	err := manager.CreateIndex(ctx, params("docs"), testModel, "noop")
	assert.True(t, errors.Is(err, errs.ErrAlreadyExists))
	assert.True(t, errors.Is(err, errs.AlreadyExists("docs")))

	changed := params("docs", "user_id", "url")
	changed.Dim = 8
	err = manager.CreateIndex(ctx, changed, "text-embedding-3-small", "markdown")
	assert.True(t, errors.Is(err, errs.ErrAlreadyExists))

	defs, err := repo.ListIndexes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	def, err := repo.GetIndex(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, mem.Name, def.Backend)
	assert.Equal(t, testModel, def.EmbeddingModel)
	assert.Equal(t, "noop", def.TextSplitter)
	assert.Empty(t, def.DedupFields)
	assert.Equal(t, []string{"docs"}, store.Collections())

	idx, err := manager.Load(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, idx.AddTexts(ctx, []schema.Text{{Texts: []string{"hello world"}}}))
	results, err := idx.Search(ctx, "hello", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestManager_CreateIndex_Validation(t *testing.T) {
	testCases := []struct {
		description string
		params      vectordb.CollectionParams
		model       string
		splitter    string
	}{
		{description: "unknown splitter", params: params("docs"), model: testModel, splitter: "xml"},
		{description: "empty name", params: params(""), model: testModel, splitter: "noop"},
		{description: "zero dim", params: vectordb.CollectionParams{Name: "docs", Metric: vectordb.Cosine}, model: testModel, splitter: "noop"},
		{description: "bad metric", params: vectordb.CollectionParams{Name: "docs", Dim: 3, Metric: "manhattan"}, model: testModel, splitter: "noop"},
		{description: "no model", params: params("docs"), splitter: "noop"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			store := mem.New()
			manager, repo := newManager(t, store)
			err := manager.CreateIndex(ctx, testCase.params, testCase.model, testCase.splitter)
			assert.True(t, errors.Is(err, errs.ErrValidation), err)
			defs, err := repo.ListIndexes(ctx)
			require.NoError(t, err)
			assert.Empty(t, defs)
			assert.Empty(t, store.Collections())
		})
	}
}

func TestManager_CreateIndex_StoreFailureLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{VectorStore: mem.New()}
	manager, repo := newManager(t, store)

	err := manager.CreateIndex(ctx, params("docs"), testModel, "noop")
	assert.True(t, errors.Is(err, errs.ErrCreation))
	assert.EqualValues(t, 1, store.created)

	_, err = repo.GetIndex(ctx, "docs")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = manager.Load(ctx, "docs")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestManager_CreateIndex_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	manager, _ := newManager(t, store)

	var created, duplicates int32
	group := errgroup.Group{}
	for i := 0; i < 8; i++ {
		group.Go(func() error {
			err := manager.CreateIndex(ctx, params("race"), testModel, "noop")
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case errors.Is(err, errs.ErrAlreadyExists):
				atomic.AddInt32(&duplicates, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	assert.EqualValues(t, 1, created)
	assert.EqualValues(t, 7, duplicates)
	assert.Equal(t, []string{"race"}, store.Collections())
}

type commitFailingCatalog struct {
	Catalog
}

func (c *commitFailingCatalog) Begin(ctx context.Context) (catalog.Tx, error) {
	tx, err := c.Catalog.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &commitFailingTx{Tx: tx}, nil
}

type commitFailingTx struct {
	catalog.Tx
}

func (t *commitFailingTx) Commit() error {
	_ = t.Tx.Rollback()
	return errors.New("disk I/O error")
}

func TestManager_CreateIndex_CommitFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	buf := &bytes.Buffer{}
	logger := logging.New(logging.Config{Level: "error", Format: logging.FormatJSON}, buf)
	manager := NewManager(&commitFailingCatalog{Catalog: newCatalog(t)}, store, newRouter(), WithLogger(logger))

	err := manager.CreateIndex(ctx, params("orphan"), testModel, "noop")
	assert.True(t, errors.Is(err, errs.ErrPersistence))
	assert.Equal(t, []string{"orphan"}, store.Collections())
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"collection":"orphan"`)
	assert.Contains(t, buf.String(), `"backend":"memory"`)
}

func TestManager_Load(t *testing.T) {
	ctx := context.Background()
	manager, repo := newManager(t, mem.New())

	_, err := manager.Load(ctx, "missing")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, repo.CreateIndex(ctx, catalog.Definition{Name: "remote", EmbeddingModel: testModel, TextSplitter: "noop", Backend: "qdrant"}))
	_, err = manager.Load(ctx, "remote")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	require.NoError(t, repo.CreateIndex(ctx, catalog.Definition{Name: "odd", EmbeddingModel: testModel, TextSplitter: "xml", Backend: mem.Name}))
	_, err = manager.Load(ctx, "odd")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	require.NoError(t, manager.CreateIndex(ctx, params("docs", "url"), testModel, "Markdown"))
	idx, err := manager.Load(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", idx.Name())
	assert.Equal(t, "markdown", idx.Definition().TextSplitter)
	assert.Equal(t, []string{"url"}, idx.Definition().DedupFields)
}

func TestManager_DropIndex(t *testing.T) {
	ctx := context.Background()
	store := mem.New()
	manager, _ := newManager(t, store)
	require.NoError(t, manager.CreateIndex(ctx, params("docs"), testModel, "noop"))

	require.NoError(t, manager.DropIndex(ctx, "docs"))
	assert.Empty(t, store.Collections())
	assert.True(t, errors.Is(manager.DropIndex(ctx, "docs"), errs.ErrNotFound))

	defs, err := manager.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)

	require.NoError(t, manager.CreateIndex(ctx, params("docs"), testModel, "noop"))
}

func TestManager_WithBackends(t *testing.T) {
	ctx := context.Background()
	primary := mem.New()
	secondary, err := sqlitevec.NewStore(ctx, sqlitevec.WithDSN(filepath.Join(t.TempDir(), "vectors.sqlite")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = secondary.Close() })

	repo := newCatalog(t)
	legacy := NewManager(repo, secondary, newRouter(), WithLogger(logging.Discard()))
	require.NoError(t, legacy.CreateIndex(ctx, params("legacy"), testModel, "noop"))

	manager := NewManager(repo, primary, newRouter(), WithLogger(logging.Discard()), WithBackends(secondary))
	assert.Equal(t, mem.Name, manager.Backend())
	idx, err := manager.Load(ctx, "legacy")
	require.NoError(t, err)
	require.NoError(t, idx.AddTexts(ctx, []schema.Text{{Texts: []string{"kept in sqlite"}}}))
	count, err := secondary.Count(ctx, "legacy")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
