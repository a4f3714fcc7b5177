package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "vecindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  driver: sqlite
  dsn: ~/idx/catalog.sqlite
vectorStore:
  backend: qdrant
  qdrant:
    host: qdrant.local
    port: 6334
    apiKey: key
embeddings:
  models:
    - name: text-embedding-3-small
      provider: openai
      apiKey: sk-test
    - name: bow
      provider: bow
      dim: 384
splitter:
  chunkSize: 500
  overlap: 50
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "idx", "catalog.sqlite"), cfg.Catalog.DSN)
	assert.Equal(t, BackendQdrant, cfg.VectorStore.Backend)
	assert.Equal(t, "qdrant.local", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 6334, cfg.VectorStore.Qdrant.Port)
	require.Len(t, cfg.Embeddings.Models, 2)
	assert.Equal(t, "openai", cfg.Embeddings.Models[0].Provider)
	assert.Equal(t, 500, cfg.Splitter.ChunkSize)
	assert.Equal(t, 50, cfg.Splitter.Overlap)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecindex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vectorStore:\n  backend: faiss\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unsupported vector backend")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Expand(context.Background()))
	assert.NotContains(t, cfg.Catalog.DSN, "~")
	assert.NotContains(t, cfg.VectorStore.SQLite.DSN, "~")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(c *Config)
		expect      string
	}{
		{description: "catalog driver", mutate: func(c *Config) { c.Catalog.Driver = "oracle" }, expect: "catalog driver"},
		{description: "catalog dsn", mutate: func(c *Config) { c.Catalog.DSN = "" }, expect: "catalog.dsn"},
		{description: "pgvector dsn", mutate: func(c *Config) { c.VectorStore.Backend = BackendPgvector }, expect: "pgvector.dsn"},
		{description: "provider", mutate: func(c *Config) { c.Embeddings.Models[0].Provider = "cohere" }, expect: "embedding provider"},
		{description: "duplicate model", mutate: func(c *Config) { c.Embeddings.Models[1].Name = c.Embeddings.Models[0].Name }, expect: "duplicate"},
		{description: "chunk size", mutate: func(c *Config) { c.Splitter.ChunkSize = 0 }, expect: "chunkSize"},
		{description: "overlap", mutate: func(c *Config) { c.Splitter.Overlap = 1000 }, expect: "overlap"},
	}
	for _, testCase := range testCases {
		cfg := Default()
		testCase.mutate(cfg)
		assert.ErrorContains(t, cfg.Validate(), testCase.expect, testCase.description)
	}
}

func TestExpandUserPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	testCases := []struct {
		input  string
		expect string
	}{
		{input: "", expect: ""},
		{input: "/tmp/x.db", expect: "/tmp/x.db"},
		{input: "~", expect: home},
		{input: "~/x.db", expect: filepath.Join(home, "x.db")},
		{input: "file:~/x.db", expect: "file:" + filepath.ToSlash(filepath.Join(home, "x.db"))},
		{input: "s3://bucket/snapshots", expect: "s3://bucket/snapshots"},
	}
	for _, testCase := range testCases {
		actual, err := expandUserPath(testCase.input)
		require.NoError(t, err, testCase.input)
		assert.Equal(t, testCase.expect, actual, testCase.input)
	}
	_, err = expandUserPath("~bob/x")
	assert.Error(t, err)
}

func TestExpandDSNWithSecret_Empty(t *testing.T) {
	dsn, err := ExpandDSNWithSecret(context.Background(), "postgres://db", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", dsn)
	_, err = ExpandDSNWithSecret(context.Background(), "", "secret://x")
	assert.Error(t, err)
}

func TestMCPServerConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:6061", MCPServerConfig{}.Address())
	assert.Equal(t, "127.0.0.1:7000", MCPServerConfig{Port: 7000}.Address())
	assert.Equal(t, "0.0.0.0:8080", MCPServerConfig{Addr: "0.0.0.0:8080", Port: 7000}.Address())
}
