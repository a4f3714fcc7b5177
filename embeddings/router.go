package embeddings

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/vecindex/errs"
)

// Router dispatches embedding requests to the embedder registered for a model.
type Router struct {
	mu        sync.RWMutex
	embedders map[string]Embedder
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{embedders: map[string]Embedder{}}
}

// Register binds model to embedder, replacing any previous binding.
func (r *Router) Register(model string, embedder Embedder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedders[model] = embedder
}

// Has reports whether model is registered.
func (r *Router) Has(model string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.embedders[model]
	return ok
}

// Models returns registered model names in sorted order.
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]string, 0, len(r.embedders))
	for model := range r.embedders {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// GenerateEmbeddings embeds texts with the embedder registered for model.
func (r *Router) GenerateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error) {
	r.mu.RLock()
	embedder, ok := r.embedders[model]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.Embedding(model, fmt.Errorf("model is not registered"))
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errs.Embedding(model, err)
	}
	if len(vectors) != len(texts) {
		return nil, errs.Embedding(model, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts)))
	}
	return vectors, nil
}
