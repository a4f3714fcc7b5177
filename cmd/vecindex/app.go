package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/vecindex/catalog"
	"github.com/viant/vecindex/config"
	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/embeddings/provider"
	"github.com/viant/vecindex/index"
	"github.com/viant/vecindex/logging"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/backend"
)

// app holds the components a command works with.
type app struct {
	config  *config.Config
	logger  *slog.Logger
	catalog *catalog.Repository
	store   vectordb.VectorStore
	manager *index.Manager
}

func openApp(ctx context.Context, options *globalOptions, logOutput io.Writer) (*app, error) {
	cfg, err := loadConfig(ctx, options.configPath)
	if err != nil {
		return nil, err
	}
	if options.logLevel != "" {
		cfg.Logging.Level = options.logLevel
	}
	logger := logging.New(cfg.Logging, logOutput)

	if isSQLite(cfg.Catalog.Driver) {
		if err := ensureParentDir(cfg.Catalog.DSN); err != nil {
			return nil, err
		}
	}
	if cfg.VectorStore.Backend == config.BackendSQLite {
		if err := ensureParentDir(cfg.VectorStore.SQLite.DSN); err != nil {
			return nil, err
		}
	}
	repo, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	store, err := backend.Open(ctx, cfg.VectorStore)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	router, err := provider.NewRouter(cfg.Embeddings.Models)
	if err != nil {
		_ = repo.Close()
		_ = backend.Close(ctx, store)
		return nil, err
	}
	manager := index.NewManager(repo, store, embeddings.NewCache(router, cfg.MCPServer.QueryCacheSize),
		index.WithLogger(logger),
		index.WithChunking(cfg.Splitter.ChunkSize, cfg.Splitter.Overlap),
	)
	return &app{config: cfg, logger: logger, catalog: repo, store: store, manager: manager}, nil
}

func (a *app) Close(ctx context.Context) error {
	return errors.Join(backend.Close(ctx, a.store), a.catalog.Close())
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	if err := cfg.Expand(ctx); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func isSQLite(driver string) bool {
	return strings.HasPrefix(strings.ToLower(driver), "sqlite")
}

// ensureParentDir creates the directory of a local sqlite database file.
func ensureParentDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
