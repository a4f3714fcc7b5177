// Package simple provides deterministic local embedders that need no model
// server. They are meant for tests, demos and offline setups.
package simple

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultDim = 64

// Embedder returns deterministic pseudo random vectors seeded by the text.
// Equal texts map to equal vectors; similarity carries no meaning.
type Embedder struct {
	Dim int
}

// New constructs a hash seeded embedder.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = defaultDim
	}
	return &Embedder{Dim: dim}
}

// EmbedDocuments embeds documents deterministically.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, s := range docs {
		out[i] = embedString(s, e.Dim)
	}
	return out, nil
}

// EmbedQuery embeds a query deterministically.
func (e *Embedder) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	return embedString(q, e.Dim), nil
}

func embedString(s string, dim int) []float32 {
	v := make([]float32, dim)
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*16777619 ^ uint32(s[i])
	}
	seed := h
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%10000)/10000.0 + 0.0001
	}
	return v
}

// BagOfWords hashes lowercase word tokens into Dim buckets and returns the
// L2 normalized counts, so texts sharing words are close under cosine.
type BagOfWords struct {
	Dim int
}

// NewBagOfWords constructs a feature hashing embedder.
func NewBagOfWords(dim int) *BagOfWords {
	if dim <= 0 {
		dim = defaultDim
	}
	return &BagOfWords{Dim: dim}
}

// EmbedDocuments embeds documents.
func (e *BagOfWords) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = e.embed(doc)
	}
	return out, nil
}

// EmbedQuery embeds a query.
func (e *BagOfWords) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *BagOfWords) embed(text string) []float32 {
	v := make([]float32, e.Dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		// keep the vector non-zero so cosine stays defined
		v[0] = 1
		return v
	}
	for _, token := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%uint32(e.Dim)]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
