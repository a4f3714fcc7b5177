package index

import (
	"context"
	"fmt"

	"github.com/viant/vecindex/catalog"
	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/splitter"
	"github.com/viant/vecindex/vectordb"
)

// Index is a loaded index bound to its store, embedding model and splitter.
type Index struct {
	definition catalog.Definition
	store      vectordb.VectorStore
	generator  embeddings.Generator
	splitter   splitter.Splitter
	chunkSize  int
	overlap    int
}

// Name returns the index name, which is also its collection name.
func (i *Index) Name() string { return i.definition.Name }

// Definition returns the catalog definition the index was loaded from.
func (i *Index) Definition() catalog.Definition { return i.definition }

// AddTexts splits, embeds and upserts each batch in turn. Empty chunks are
// dropped. A failing batch stops the call; earlier batches stay written.
func (i *Index) AddTexts(ctx context.Context, batches []schema.Text) error {
	for n, batch := range batches {
		var chunks []string
		for _, document := range batch.Texts {
			parts, err := i.splitter.Split(document, i.chunkSize, i.overlap)
			if err != nil {
				return err
			}
			for _, part := range parts {
				if part != "" {
					chunks = append(chunks, part)
				}
			}
		}
		if len(chunks) == 0 {
			continue
		}
		vectors, err := i.embed(ctx, chunks)
		if err != nil {
			return fmt.Errorf("batch %d: %w", n, err)
		}
		if err := i.store.Upsert(ctx, i.definition.Name, vectors, chunks, batch.Metadata, i.definition.DedupFields); err != nil {
			return fmt.Errorf("batch %d: %w", n, err)
		}
	}
	return nil
}

// Search embeds query and returns up to k closest chunks.
func (i *Index) Search(ctx context.Context, query string, k int) ([]schema.SearchResult, error) {
	if k <= 0 {
		return nil, errs.Validation("k must be positive, got %d", k)
	}
	vectors, err := i.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return i.store.Search(ctx, i.definition.Name, vectors[0], k)
}

// Count returns the number of stored records.
func (i *Index) Count(ctx context.Context) (int64, error) {
	return i.store.Count(ctx, i.definition.Name)
}

func (i *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := i.definition.EmbeddingModel
	vectors, err := i.generator.GenerateEmbeddings(ctx, texts, model)
	if err != nil {
		if errs.KindOf(err) == "" {
			return nil, errs.Embedding(model, err)
		}
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, errs.Embedding(model, fmt.Errorf("got %d embeddings for %d texts", len(vectors), len(texts)))
	}
	return vectors, nil
}
