// Package pgvector implements a vector store on PostgreSQL with the pgvector
// extension. Every collection is its own table.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/vectordb"
)

// Name is the backend identifier.
const Name = "pgvector"

const (
	tablePrefix        = "vecindex_"
	maxIdentifierBytes = 63

	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// Store is a pgvector backed VectorStore.
type Store struct {
	pool          *pgxpool.Pool
	openedLocally bool
}

// Option configures the store.
type Option func(*Store)

// WithPool sets an existing connection pool.
func WithPool(pool *pgxpool.Pool) Option {
	return func(s *Store) { s.pool = pool }
}

// New connects to dsn unless a pool is supplied and ensures the extension
// and the collection registry exist.
func New(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		if dsn == "" {
			return nil, fmt.Errorf("pgvector: dsn is required")
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect pgvector: %w", err)
		}
		s.pool = pool
		s.openedLocally = true
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS vecindex_collection (
			name       TEXT PRIMARY KEY,
			dim        INTEGER NOT NULL,
			metric     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("pgvector schema: %w", err)
		}
	}
	return s, nil
}

// Close closes the pool if the store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Name returns the backend identifier.
func (s *Store) Name() string { return Name }

// CreateCollection registers the collection and creates its table in one
// transaction.
func (s *Store) CreateCollection(ctx context.Context, params vectordb.CollectionParams) error {
	if err := params.Validate(); err != nil {
		return errs.Creation(params.Name, err)
	}
	if len(tablePrefix)+len(params.Name) > maxIdentifierBytes {
		return errs.Creation(params.Name, errs.Validation("collection name longer than %d bytes", maxIdentifierBytes-len(tablePrefix)))
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Creation(params.Name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `INSERT INTO vecindex_collection(name, dim, metric) VALUES($1, $2, $3)`,
		params.Name, params.Dim, string(params.Metric)); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return errs.Creation(params.Name, errs.AlreadyExists(params.Name))
		}
		return errs.Creation(params.Name, err)
	}
	DDL := fmt.Sprintf(`CREATE TABLE %s (
		id          TEXT PRIMARY KEY,
		chunk_index INTEGER NOT NULL,
		content     TEXT,
		metadata    JSONB,
		embedding   vector(%d) NOT NULL
	)`, table(params.Name), params.Dim)
	if _, err := tx.Exec(ctx, DDL); err != nil {
		return errs.Creation(params.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Creation(params.Name, err)
	}
	return nil
}

// Upsert inserts or replaces records in one transaction.
func (s *Store) Upsert(ctx context.Context, collection string, embeddings [][]float32, texts []string, attrs map[string]string, dedupFields []string) error {
	records, err := vectordb.BuildRecords(collection, embeddings, texts, attrs, dedupFields)
	if err != nil {
		return err
	}
	metric, err := s.metric(ctx, collection)
	if err != nil {
		return errs.Write(collection, err)
	}
	if err := vectordb.CheckDirection(metric, records); err != nil {
		return errs.Write(collection, err)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Write(collection, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	SQL := fmt.Sprintf(`INSERT INTO %s(id, chunk_index, content, metadata, embedding)
VALUES($1, $2, $3, $4::jsonb, $5::vector)
ON CONFLICT (id) DO UPDATE SET
	chunk_index = EXCLUDED.chunk_index,
	content = EXCLUDED.content,
	metadata = EXCLUDED.metadata,
	embedding = EXCLUDED.embedding`, table(collection))
	for _, record := range records {
		if _, err := tx.Exec(ctx, SQL, record.ID, record.ChunkIndex, record.Text, record.Metadata, vectorLiteral(record.Embedding)); err != nil {
			return errs.Write(collection, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Write(collection, err)
	}
	return nil
}

// Search orders the collection table by the pgvector distance operator of
// the collection metric.
func (s *Store) Search(ctx context.Context, collection string, query []float32, k int) ([]schema.SearchResult, error) {
	metric, err := s.metric(ctx, collection)
	if err != nil {
		return nil, errs.Read(collection, err)
	}
	if k <= 0 {
		return nil, nil
	}
	distance, score := "embedding <=> $1::vector", "1 - (embedding <=> $1::vector)"
	switch metric {
	case vectordb.Euclidean:
		distance, score = "embedding <-> $1::vector", "embedding <-> $1::vector"
	case vectordb.Dot:
		distance, score = "embedding <#> $1::vector", "-(embedding <#> $1::vector)"
	}
	SQL := fmt.Sprintf(`SELECT id, chunk_index, content, metadata::text, %s AS score
FROM %s
ORDER BY %s ASC, id
LIMIT $2`, score, table(collection), distance)
	rows, err := s.pool.Query(ctx, SQL, vectorLiteral(query), k)
	if err != nil {
		return nil, errs.Read(collection, err)
	}
	defer rows.Close()
	var results []schema.SearchResult
	for rows.Next() {
		var record vectordb.Record
		var content, metadata *string
		var value float64
		if err := rows.Scan(&record.ID, &record.ChunkIndex, &content, &metadata, &value); err != nil {
			return nil, errs.Read(collection, err)
		}
		if content != nil {
			record.Text = *content
		}
		if metadata != nil {
			record.Metadata = *metadata
		}
		result, err := record.Result(collection, float32(value))
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Read(collection, err)
	}
	return results, nil
}

// DropCollection removes the registry row and the table.
func (s *Store) DropCollection(ctx context.Context, collection string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Deletion(collection, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `DELETE FROM vecindex_collection WHERE name = $1`, collection); err != nil {
		return errs.Deletion(collection, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table(collection))); err != nil {
		return errs.Deletion(collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Deletion(collection, err)
	}
	return nil
}

// Count returns the number of rows of the collection table.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table(collection))).Scan(&count)
	if err != nil {
		if pgCode(err) == codeUndefinedTable {
			return 0, errs.Read(collection, fmt.Errorf("collection %q does not exist", collection))
		}
		return 0, errs.Read(collection, err)
	}
	return count, nil
}

func table(collection string) string {
	return pgx.Identifier{tablePrefix + collection}.Sanitize()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// vectorLiteral renders v in the pgvector text input format.
func vectorLiteral(v []float32) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String()
}

func (s *Store) metric(ctx context.Context, collection string) (vectordb.Metric, error) {
	var metric string
	err := s.pool.QueryRow(ctx, `SELECT metric FROM vecindex_collection WHERE name = $1`, collection).Scan(&metric)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("collection %q does not exist", collection)
	}
	if err != nil {
		return "", err
	}
	return vectordb.Metric(metric), nil
}
