package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecindex/errs"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	def := Definition{
		Name:           "docs",
		EmbeddingModel: "all-minilm-l12-v2",
		TextSplitter:   "noop",
		Backend:        "qdrant",
		DedupFields:    []string{"user_id", "url"},
	}
	require.NoError(t, repo.CreateIndex(ctx, def))

	actual, err := repo.GetIndex(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, def.Name, actual.Name)
	assert.Equal(t, def.EmbeddingModel, actual.EmbeddingModel)
	assert.Equal(t, def.TextSplitter, actual.TextSplitter)
	assert.Equal(t, def.Backend, actual.Backend)
	assert.Equal(t, def.DedupFields, actual.DedupFields)
	assert.False(t, actual.CreatedAt.IsZero())

	err = repo.CreateIndex(ctx, def)
	assert.True(t, errors.Is(err, errs.ErrAlreadyExists))
	assert.True(t, errors.Is(err, errs.AlreadyExists("docs")))

	err = repo.CreateIndex(ctx, Definition{Name: "docs", EmbeddingModel: "other", TextSplitter: "size", Backend: "memory"})
	assert.True(t, errors.Is(err, errs.ErrAlreadyExists))
	unchanged, err := repo.GetIndex(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, actual, unchanged)
}

func TestRepository_NoDedupFieldsStoredAsNull(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.CreateIndex(ctx, Definition{Name: "plain", EmbeddingModel: "m", TextSplitter: "noop", Backend: "memory"}))

	var dedup *string
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT dedup_fields FROM vector_index WHERE name = 'plain'`).Scan(&dedup))
	assert.Nil(t, dedup)

	def, err := repo.GetIndex(ctx, "plain")
	require.NoError(t, err)
	assert.Empty(t, def.DedupFields)
}

func TestRepository_GetMissing(t *testing.T) {
	_, err := newTestRepository(t).GetIndex(context.Background(), "nope")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestRepository_CorruptDedupFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	_, err := repo.db.ExecContext(ctx, `INSERT INTO vector_index(name, embedding_model, text_splitter, vector_db, dedup_fields, created_at)
VALUES('bad', 'm', 'noop', 'memory', '{not json', ?)`, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.GetIndex(ctx, "bad")
	assert.True(t, errors.Is(err, errs.ErrSerialization))
}

func TestRepository_TxRollback(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateIndex(ctx, Definition{Name: "temp", EmbeddingModel: "m", TextSplitter: "noop", Backend: "memory"}))
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback())

	_, err = repo.GetIndex(ctx, "temp")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestRepository_ListDelete(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t)
	repo.now = func() time.Time { return clock }
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, repo.CreateIndex(ctx, Definition{Name: name, EmbeddingModel: "m", TextSplitter: "size", Backend: "sqlite"}))
	}
	defs, err := repo.ListIndexes(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "a", defs[0].Name)
	assert.Equal(t, "c", defs[2].Name)
	assert.True(t, clock.Equal(defs[0].CreatedAt))

	require.NoError(t, repo.DeleteIndex(ctx, "b"))
	assert.True(t, errors.Is(repo.DeleteIndex(ctx, "b"), errs.ErrNotFound))
	defs, err = repo.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestDialect(t *testing.T) {
	pg, err := newDialect("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t WHERE a = $1 AND b = $2", pg.bind("SELECT a FROM t WHERE a = ? AND b = ?"))

	my, err := newDialect("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?", my.bind("SELECT ?"))
	assert.Equal(t, "user:pw@tcp(db:3306)/idx?parseTime=true", my.dsn("user:pw@tcp(db:3306)/idx"))
	assert.Equal(t, "u@/idx?tls=true&parseTime=true", my.dsn("u@/idx?tls=true"))
	assert.Equal(t, "u@/idx?parseTime=false", my.dsn("u@/idx?parseTime=false"))
	assert.False(t, my.isUniqueViolation(errors.New("Duplicate entry")))
}
