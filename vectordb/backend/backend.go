// Package backend opens the vector store selected by configuration.
package backend

import (
	"context"
	"fmt"

	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	"github.com/viant/vecindex/config"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/mem"
	"github.com/viant/vecindex/vectordb/pgvector"
	"github.com/viant/vecindex/vectordb/qdrant"
	"github.com/viant/vecindex/vectordb/sqlitevec"
)

// Open creates the store named by cfg.Backend.
func Open(ctx context.Context, cfg config.VectorStoreConfig) (vectordb.VectorStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		var opts []mem.Option
		if cfg.Memory.SnapshotURL != "" {
			opts = append(opts, mem.WithSnapshotURL(cfg.Memory.SnapshotURL))
		}
		return mem.Open(ctx, opts...)
	case config.BackendSQLite:
		return sqlitevec.NewStore(ctx, sqlitevec.WithDSN(cfg.SQLite.DSN))
	case config.BackendPgvector:
		return pgvector.New(ctx, cfg.Pgvector.DSN)
	case config.BackendQdrant:
		return qdrant.New(cfg.Qdrant)
	}
	return nil, fmt.Errorf("unsupported vector backend %q", cfg.Backend)
}

// Close releases store resources; in-memory stores with a snapshot location
// are persisted first.
func Close(ctx context.Context, store vectordb.VectorStore) error {
	var err error
	if persister, ok := store.(vectordb.Persister); ok {
		err = persister.Persist(ctx)
	}
	if closer, ok := store.(vectordb.Closer); ok {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
