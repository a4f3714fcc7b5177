// Package catalog persists index definitions in a relational database.
//
// The catalog is the source of truth for which indexes exist. Creating an
// index is done through a transaction (Begin, Tx.CreateIndex, Tx.Commit) so
// the caller can create the vector collection before the row becomes
// visible and roll back when that fails.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viant/sqlite-vec/engine"

	"github.com/viant/vecindex/errs"
)

// Tx is an open catalog transaction.
type Tx interface {
	// CreateIndex inserts def; a duplicate name yields errs.KindAlreadyExists.
	CreateIndex(ctx context.Context, def Definition) error
	Commit() error
	Rollback() error
}

// Repository stores definitions in the vector_index table.
type Repository struct {
	db            *sql.DB
	dialect       dialect
	openedLocally bool
	now           func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New wraps an open database; driver selects the SQL dialect.
func New(db *sql.DB, driver string, opts ...Option) (*Repository, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	r := &Repository{db: db, dialect: d, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Open connects to dsn with driver (sqlite, postgres or mysql) and ensures
// the schema exists.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Repository, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	if dsn == "" {
		return nil, errs.Validation("catalog dsn is required")
	}
	var db *sql.DB
	if d.driver == DriverSQLite {
		db, err = engine.Open(d.dsn(dsn))
	} else {
		db, err = sql.Open(d.driver, d.dsn(dsn))
	}
	if err != nil {
		return nil, errs.Persistence("open", err)
	}
	r, err := New(db, d.driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.openedLocally = true
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the database when Open created it.
func (r *Repository) Close() error {
	if r.openedLocally {
		return r.db.Close()
	}
	return nil
}

// Driver returns the dialect name.
func (r *Repository) Driver() string { return r.dialect.driver }

// EnsureSchema creates the vector_index table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.schema()); err != nil {
		return errs.Persistence("schema", err)
	}
	return nil
}

// Begin opens a transaction.
func (r *Repository) Begin(ctx context.Context) (Tx, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Persistence("begin", err)
	}
	return &tx{repository: r, tx: sqlTx}, nil
}

// CreateIndex inserts def in its own transaction.
func (r *Repository) CreateIndex(ctx context.Context, def Definition) error {
	t, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	if err := t.CreateIndex(ctx, def); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}

// GetIndex returns the definition named name.
func (r *Repository) GetIndex(ctx context.Context, name string) (*Definition, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.bind(`SELECT name, embedding_model, text_splitter, vector_db, dedup_fields, created_at
FROM vector_index WHERE name = ?`), name)
	def, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound(name)
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

// ListIndexes returns all definitions ordered by name.
func (r *Repository) ListIndexes(ctx context.Context) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, embedding_model, text_splitter, vector_db, dedup_fields, created_at
FROM vector_index ORDER BY name`)
	if err != nil {
		return nil, errs.Persistence("list", err)
	}
	defer rows.Close()
	var result []Definition
	for rows.Next() {
		def, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("list", err)
	}
	return result, nil
}

// DeleteIndex removes the definition named name.
func (r *Repository) DeleteIndex(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.bind(`DELETE FROM vector_index WHERE name = ?`), name)
	if err != nil {
		return errs.Persistence(name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errs.Persistence(name, err)
	}
	if affected == 0 {
		return errs.NotFound(name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scan(row scanner) (*Definition, error) {
	def := &Definition{}
	var dedup *string
	if err := row.Scan(&def.Name, &def.EmbeddingModel, &def.TextSplitter, &def.Backend, &dedup, &def.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errs.Persistence("scan", err)
	}
	fields, err := decodeDedupFields(dedup)
	if err != nil {
		return nil, errs.Serialization(def.Name, fmt.Errorf("dedup fields: %w", err))
	}
	def.DedupFields = fields
	return def, nil
}

type tx struct {
	repository *Repository
	tx         *sql.Tx
}

func (t *tx) CreateIndex(ctx context.Context, def Definition) error {
	if def.Name == "" {
		return errs.Validation("index name is required")
	}
	dedup, err := encodeDedupFields(def.DedupFields)
	if err != nil {
		return errs.Serialization(def.Name, err)
	}
	createdAt := def.CreatedAt
	if createdAt.IsZero() {
		createdAt = t.repository.now().UTC()
	}
	_, err = t.tx.ExecContext(ctx, t.repository.dialect.bind(`INSERT INTO vector_index(name, embedding_model, text_splitter, vector_db, dedup_fields, created_at)
VALUES(?, ?, ?, ?, ?, ?)`), def.Name, def.EmbeddingModel, def.TextSplitter, def.Backend, dedup, createdAt)
	if err != nil {
		if t.repository.dialect.isUniqueViolation(err) {
			return errs.AlreadyExists(def.Name)
		}
		return errs.Persistence(def.Name, err)
	}
	return nil
}

func (t *tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return errs.Persistence("commit", err)
	}
	return nil
}

func (t *tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errs.Persistence("rollback", err)
	}
	return nil
}
