// Package sqlitevec implements a vector store on an embedded SQLite database
// using the sqlite-vec embedding codec and SQL distance functions.
package sqlitevec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/sqlite-vec/engine"
	"github.com/viant/sqlite-vec/vector"

	"github.com/viant/vecindex/db/sqliteutil"
	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/vectordb"
)

// Name is the backend identifier.
const Name = "sqlite"

// Store is a SQLite backed VectorStore. All collections share one records
// table keyed by (collection, id).
type Store struct {
	db            *sql.DB
	dsn           string
	ensureSchema  bool
	openedLocally bool
}

// Option configures the sqlite store.
type Option func(*Store)

// WithDB sets an existing *sql.DB to use. Its connections must be opened
// after NewStore registered the distance functions.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

// WithDSN sets the SQLite DSN to open (e.g. /path/to/vectors.sqlite).
func WithDSN(dsn string) Option {
	return func(s *Store) { s.dsn = dsn }
}

// WithEnsureSchema controls whether tables are created automatically.
func WithEnsureSchema(enabled bool) Option {
	return func(s *Store) { s.ensureSchema = enabled }
}

// NewStore opens/initializes a sqlite Store.
func NewStore(ctx context.Context, opts ...Option) (*Store, error) {
	s := &Store{ensureSchema: true}
	for _, opt := range opts {
		opt(s)
	}
	if err := registerFunctions(); err != nil {
		return nil, err
	}
	if s.db == nil {
		if s.dsn == "" {
			return nil, fmt.Errorf("sqlitevec: dsn required")
		}
		db, err := engine.Open(sqliteutil.EnsurePragmas(s.dsn, sqliteutil.DefaultOptions()))
		if err != nil {
			return nil, err
		}
		s.db = db
		s.db.SetMaxOpenConns(4)
		s.db.SetMaxIdleConns(4)
		s.openedLocally = true
	}
	if s.ensureSchema {
		if err := s.ensureSchemaDDL(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying DB if Store opened it.
func (s *Store) Close() error {
	if s.openedLocally && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Name returns the backend identifier.
func (s *Store) Name() string { return Name }

// CreateCollection registers a collection.
func (s *Store) CreateCollection(ctx context.Context, params vectordb.CollectionParams) error {
	if err := params.Validate(); err != nil {
		return errs.Creation(params.Name, err)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO vecindex_collection(name, dim, metric) VALUES(?,?,?)`,
		params.Name, params.Dim, string(params.Metric))
	if err != nil {
		if sqliteutil.IsUniqueViolation(err) {
			return errs.Creation(params.Name, errs.AlreadyExists(params.Name))
		}
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
	info, err := s.lookup(ctx, collection)
	if err != nil {
		return errs.Write(collection, err)
	}
	if err := vectordb.CheckDirection(info.metric, records); err != nil {
		return errs.Write(collection, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Write(collection, err)
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vecindex_record(collection, id, chunk_index, content, meta, embedding)
VALUES(?,?,?,?,?,?)
ON CONFLICT(collection, id) DO UPDATE SET
	chunk_index=excluded.chunk_index,
	content=excluded.content,
	meta=excluded.meta,
	embedding=excluded.embedding`)
	if err != nil {
		return errs.Write(collection, err)
	}
	defer stmt.Close()
	for _, record := range records {
		if len(record.Embedding) != info.dim {
			return errs.Write(collection, fmt.Errorf("expected vector dimension %d, got %d", info.dim, len(record.Embedding)))
		}
		blob, err := vector.EncodeEmbedding(record.Embedding)
		if err != nil {
			return errs.Serialization(collection, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, record.ID, record.ChunkIndex, record.Text, record.Metadata, blob); err != nil {
			return errs.Write(collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.Write(collection, err)
	}
	return nil
}

// Search ranks the collection's records with the collection metric.
func (s *Store) Search(ctx context.Context, collection string, query []float32, k int) ([]schema.SearchResult, error) {
	info, err := s.lookup(ctx, collection)
	if err != nil {
		return nil, errs.Read(collection, err)
	}
	if k <= 0 {
		return nil, nil
	}
	if len(query) != info.dim {
		return nil, errs.Read(collection, fmt.Errorf("expected query dimension %d, got %d", info.dim, len(query)))
	}
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, errs.Serialization(collection, err)
	}
	fn, order := cosineFunc, "DESC"
	switch info.metric {
	case vectordb.Euclidean:
		fn, order = l2Func, "ASC"
	case vectordb.Dot:
		fn = dotFunc
	}
	SQL := fmt.Sprintf(`SELECT id, chunk_index, content, meta, %s(embedding, ?) AS score
FROM vecindex_record
WHERE collection = ?
ORDER BY score %s, id
LIMIT ?`, fn, order)
	rows, err := s.db.QueryContext(ctx, SQL, blob, collection, k)
	if err != nil {
		return nil, errs.Read(collection, err)
	}
	defer rows.Close()
	var results []schema.SearchResult
	for rows.Next() {
		var record vectordb.Record
		var content, metaJSON sql.NullString
		var score float64
		if err := rows.Scan(&record.ID, &record.ChunkIndex, &content, &metaJSON, &score); err != nil {
			return nil, errs.Read(collection, err)
		}
		record.Text = content.String
		record.Metadata = metaJSON.String
		result, err := record.Result(collection, float32(score))
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

// DropCollection removes the collection and its records.
func (s *Store) DropCollection(ctx context.Context, collection string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Deletion(collection, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM vecindex_record WHERE collection = ?`, collection); err != nil {
		return errs.Deletion(collection, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vecindex_collection WHERE name = ?`, collection); err != nil {
		return errs.Deletion(collection, err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Deletion(collection, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	if _, err := s.lookup(ctx, collection); err != nil {
		return 0, errs.Read(collection, err)
	}
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vecindex_record WHERE collection = ?`, collection).Scan(&count); err != nil {
		return 0, errs.Read(collection, err)
	}
	return count, nil
}

type collectionInfo struct {
	dim    int
	metric vectordb.Metric
}

func (s *Store) lookup(ctx context.Context, collection string) (*collectionInfo, error) {
	info := &collectionInfo{}
	var metric string
	err := s.db.QueryRowContext(ctx, `SELECT dim, metric FROM vecindex_collection WHERE name = ?`, collection).Scan(&info.dim, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	if err != nil {
		return nil, err
	}
	info.metric = vectordb.Metric(metric)
	return info, nil
}

func (s *Store) ensureSchemaDDL(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vecindex_collection (
			name       TEXT PRIMARY KEY,
			dim        INTEGER NOT NULL,
			metric     TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS vecindex_record (
			collection  TEXT NOT NULL,
			id          TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content     TEXT,
			meta        TEXT,
			embedding   BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
