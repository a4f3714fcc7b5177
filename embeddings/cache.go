package embeddings

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a Generator that remembers single text requests, the shape of
// search queries, in a bounded LRU. Batches pass through uncached.
type Cache struct {
	generator Generator
	cache     *lru.Cache[string, []float32]
}

// NewCache wraps generator; a non positive capacity disables caching.
func NewCache(generator Generator, capacity int) *Cache {
	ret := &Cache{generator: generator}
	if capacity > 0 {
		ret.cache, _ = lru.New[string, []float32](capacity)
	}
	return ret
}

// GenerateEmbeddings implements Generator.
func (c *Cache) GenerateEmbeddings(ctx context.Context, texts []string, model string) ([][]float32, error) {
	if len(texts) != 1 || c.cache == nil {
		return c.generator.GenerateEmbeddings(ctx, texts, model)
	}
	key := model + "\n" + texts[0]
	if vec, ok := c.cache.Get(key); ok {
		return [][]float32{cloneVec(vec)}, nil
	}
	vecs, err := c.generator.GenerateEmbeddings(ctx, texts, model)
	if err != nil {
		return nil, err
	}
	if len(vecs) == 1 {
		c.cache.Add(key, cloneVec(vecs[0]))
	}
	return vecs, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

func cloneVec(vec []float32) []float32 {
	if vec == nil {
		return nil
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
