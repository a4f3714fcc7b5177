// Package config loads the vecindex YAML configuration.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"

	"github.com/viant/vecindex/embeddings/provider"
	"github.com/viant/vecindex/logging"
	"github.com/viant/vecindex/vectordb/qdrant"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPgvector = "pgvector"
	BackendQdrant   = "qdrant"
)

// Config is the root configuration.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings"`
	Splitter    SplitterConfig    `yaml:"splitter"`
	Logging     logging.Config    `yaml:"logging"`
	MCPServer   MCPServerConfig   `yaml:"mcpServer"`
}

// MCPServerConfig defines MCP server settings.
type MCPServerConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
	// QueryCacheSize bounds the query embedding cache; 0 disables it.
	QueryCacheSize int `yaml:"queryCacheSize"`
}

// Address returns Addr, or a loopback address on Port, or 127.0.0.1:6061.
func (c MCPServerConfig) Address() string {
	if c.Addr != "" {
		return c.Addr
	}
	if c.Port > 0 {
		return fmt.Sprintf("127.0.0.1:%d", c.Port)
	}
	return "127.0.0.1:6061"
}

// CatalogConfig defines the metadata database.
type CatalogConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Secret string `yaml:"secret,omitempty"`
}

// VectorStoreConfig selects and configures the vector backend.
type VectorStoreConfig struct {
	Backend  string         `yaml:"backend"`
	Qdrant   qdrant.Config  `yaml:"qdrant"`
	Pgvector PgvectorConfig `yaml:"pgvector"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Memory   MemoryConfig   `yaml:"memory"`
}

// PgvectorConfig defines the Postgres vector backend.
type PgvectorConfig struct {
	DSN    string `yaml:"dsn"`
	Secret string `yaml:"secret,omitempty"`
}

// SQLiteConfig defines the embedded SQLite vector backend.
type SQLiteConfig struct {
	DSN string `yaml:"dsn"`
}

// MemoryConfig defines the in-process backend; SnapshotURL may be any afs
// URL (file, s3, gs).
type MemoryConfig struct {
	SnapshotURL string `yaml:"snapshotURL,omitempty"`
}

// EmbeddingsConfig lists the embedding models available to indexes.
type EmbeddingsConfig struct {
	Models []provider.Config `yaml:"models"`
}

// SplitterConfig sets the chunking applied during ingestion.
type SplitterConfig struct {
	ChunkSize int `yaml:"chunkSize"`
	Overlap   int `yaml:"overlap"`
}

// Default returns an all local setup under ~/.vecindex.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{Driver: "sqlite", DSN: "~/.vecindex/catalog.sqlite"},
		VectorStore: VectorStoreConfig{
			Backend: BackendSQLite,
			SQLite:  SQLiteConfig{DSN: "~/.vecindex/vectors.sqlite"},
			Qdrant:  qdrant.Config{Host: "localhost", Port: 6334},
		},
		Embeddings: EmbeddingsConfig{Models: []provider.Config{
			{Name: "simple", Provider: provider.Simple, Dim: 384},
			{Name: "bow", Provider: provider.BagOfWords, Dim: 384},
		}},
		Splitter:  SplitterConfig{ChunkSize: 1000},
		Logging:   logging.DefaultConfig(),
		MCPServer: MCPServerConfig{QueryCacheSize: 1000},
	}
}

// Load reads path on top of Default, then expands user paths and secrets.
func Load(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.expand(context.Background()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Expand resolves ~ paths and secrets of a programmatically built config.
func (c *Config) Expand(ctx context.Context) error {
	return c.expand(ctx)
}

func (c *Config) expand(ctx context.Context) error {
	var err error
	if c.Catalog.DSN, err = expandStoreDSN(c.Catalog.DSN, c.Catalog.Driver); err != nil {
		return err
	}
	if c.Catalog.DSN, err = ExpandDSNWithSecret(ctx, c.Catalog.DSN, c.Catalog.Secret); err != nil {
		return err
	}
	if c.VectorStore.SQLite.DSN, err = expandStoreDSN(c.VectorStore.SQLite.DSN, "sqlite"); err != nil {
		return err
	}
	if c.VectorStore.Pgvector.DSN, err = ExpandDSNWithSecret(ctx, c.VectorStore.Pgvector.DSN, c.VectorStore.Pgvector.Secret); err != nil {
		return err
	}
	if c.VectorStore.Memory.SnapshotURL, err = expandUserPath(c.VectorStore.Memory.SnapshotURL); err != nil {
		return err
	}
	return nil
}

// Validate rejects unknown drivers, backends and providers.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Catalog.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pg", "mysql":
	default:
		return fmt.Errorf("config: unsupported catalog driver %q", c.Catalog.Driver)
	}
	if strings.TrimSpace(c.Catalog.DSN) == "" {
		return fmt.Errorf("config: catalog.dsn is required")
	}
	switch c.VectorStore.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.VectorStore.SQLite.DSN == "" {
			return fmt.Errorf("config: vectorStore.sqlite.dsn is required")
		}
	case BackendPgvector:
		if c.VectorStore.Pgvector.DSN == "" {
			return fmt.Errorf("config: vectorStore.pgvector.dsn is required")
		}
	case BackendQdrant:
	default:
		return fmt.Errorf("config: unsupported vector backend %q", c.VectorStore.Backend)
	}
	seen := map[string]bool{}
	for _, model := range c.Embeddings.Models {
		if model.Name == "" {
			return fmt.Errorf("config: embedding model name is required")
		}
		if seen[model.Name] {
			return fmt.Errorf("config: duplicate embedding model %q", model.Name)
		}
		seen[model.Name] = true
		if !isProvider(model.Provider) {
			return fmt.Errorf("config: unsupported embedding provider %q for model %q", model.Provider, model.Name)
		}
	}
	if c.Splitter.ChunkSize <= 0 {
		return fmt.Errorf("config: splitter.chunkSize must be positive, got %d", c.Splitter.ChunkSize)
	}
	if c.Splitter.Overlap < 0 || c.Splitter.Overlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("config: splitter.overlap must be in [0, chunkSize), got %d", c.Splitter.Overlap)
	}
	return nil
}

func isProvider(name string) bool {
	for _, candidate := range provider.Providers() {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' && !strings.HasPrefix(trimmed, "file:") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(trimmed, "file:") {
		prefix := "file://"
		rest := strings.TrimPrefix(trimmed, prefix)
		if rest == trimmed {
			prefix = "file:"
			rest = strings.TrimPrefix(trimmed, prefix)
		}
		rest = strings.TrimLeft(rest, "/")
		if !strings.HasPrefix(rest, "~") {
			return path, nil
		}
		abs := filepath.ToSlash(filepath.Join(home, strings.TrimPrefix(rest, "~")))
		return prefix + "/" + strings.TrimLeft(abs, "/"), nil
	}
	if trimmed == "~" {
		return home, nil
	}
	if !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	return filepath.Join(home, trimmed[2:]), nil
}

func expandStoreDSN(dsn, driver string) (string, error) {
	if dsn == "" {
		return dsn, nil
	}
	if strings.HasPrefix(driver, "sqlite") || dsn[0] == '~' || strings.HasPrefix(dsn, "file:") {
		return expandUserPath(dsn)
	}
	return dsn, nil
}

// ExpandDSNWithSecret loads a scy secret and expands its placeholders in dsn.
func ExpandDSNWithSecret(ctx context.Context, dsn, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("secret %q provided but dsn is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(dsn), nil
}
