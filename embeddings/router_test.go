package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/vecindex/errs"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return s.vectors, s.err
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, s.err
}

func TestRouter_GenerateEmbeddings(t *testing.T) {
	ctx := context.Background()
	router := NewRouter()
	router.Register("ok", &stubEmbedder{vectors: [][]float32{{1, 2}}})
	router.Register("short", &stubEmbedder{vectors: [][]float32{}})
	router.Register("broken", &stubEmbedder{err: errors.New("quota exceeded")})

	vectors, err := router.GenerateEmbeddings(ctx, []string{"a"}, "ok")
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}}, vectors)

	testCases := []struct {
		description string
		model       string
	}{
		{description: "unknown model", model: "missing"},
		{description: "count mismatch", model: "short"},
		{description: "embedder failure", model: "broken"},
	}
	for _, testCase := range testCases {
		_, err := router.GenerateEmbeddings(ctx, []string{"a"}, testCase.model)
		require.Error(t, err, testCase.description)
		assert.True(t, errors.Is(err, errs.ErrEmbedding), testCase.description)
	}
	assert.Equal(t, []string{"broken", "ok", "short"}, router.Models())
	assert.True(t, router.Has("ok"))
	assert.False(t, router.Has("missing"))
}
