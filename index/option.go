package index

import (
	"log/slog"

	"github.com/viant/vecindex/vectordb"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 0
)

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithChunking sets the maximum chunk size and overlap used by AddTexts.
func WithChunking(chunkSize, overlap int) Option {
	return func(m *Manager) {
		m.chunkSize = chunkSize
		m.overlap = overlap
	}
}

// WithBackends registers additional stores so that indexes created against
// another backend can still be loaded and dropped.
func WithBackends(stores ...vectordb.VectorStore) Option {
	return func(m *Manager) {
		for _, store := range stores {
			if store != nil {
				m.stores[store.Name()] = store
			}
		}
	}
}
