package mcp

import (
	"time"

	"github.com/viant/vecindex/schema"
)

type SearchInput struct {
	Index string `json:"index"`
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchOutput struct {
	Results []schema.SearchResult `json:"results"`
}

type IndexesInput struct {
	Name string `json:"name,omitempty"`
}

type IndexInfo struct {
	Name           string    `json:"name"`
	Backend        string    `json:"backend"`
	EmbeddingModel string    `json:"embeddingModel"`
	TextSplitter   string    `json:"textSplitter"`
	DedupFields    []string  `json:"dedupFields,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Records        int64     `json:"records"`
}

type IndexesOutput struct {
	Indexes []IndexInfo `json:"indexes"`
}

type AddInput struct {
	Index    string            `json:"index"`
	Texts    []string          `json:"texts"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type AddOutput struct {
	Records int64 `json:"records"`
}
