// Package provider builds embedders from configuration.
package provider

import (
	"fmt"
	"strings"

	"github.com/viant/vecindex/embeddings"
	"github.com/viant/vecindex/embeddings/ollama"
	"github.com/viant/vecindex/embeddings/openai"
	"github.com/viant/vecindex/embeddings/simple"
	"github.com/viant/vecindex/embeddings/vertexai"
)

const (
	OpenAI     = "openai"
	Ollama     = "ollama"
	VertexAI   = "vertexai"
	Simple     = "simple"
	BagOfWords = "bow"
)

// Config describes one embedding model.
type Config struct {
	// Name is the model name indexes refer to.
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"`
	// Model is the provider side model id; defaults to Name.
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"baseURL,omitempty"`
	APIKey    string `yaml:"apiKey,omitempty"`
	ProjectID string `yaml:"projectID,omitempty"`
	Location  string `yaml:"location,omitempty"`
	// Dim is used by the local providers only.
	Dim int `yaml:"dim,omitempty"`
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{OpenAI, Ollama, VertexAI, Simple, BagOfWords}
}

// New creates the embedder described by cfg.
func New(cfg Config) (embeddings.Embedder, error) {
	model := cfg.Model
	if model == "" {
		model = cfg.Name
	}
	switch strings.ToLower(cfg.Provider) {
	case OpenAI:
		return &openai.Embedder{C: openai.NewClient(cfg.APIKey, model, openai.WithBaseURL(cfg.BaseURL))}, nil
	case Ollama:
		return &ollama.Embedder{C: ollama.NewClient(model, ollama.WithBaseURL(cfg.BaseURL))}, nil
	case VertexAI:
		client, err := vertexai.NewClient(cfg.ProjectID, model, vertexai.WithLocation(cfg.Location))
		if err != nil {
			return nil, err
		}
		return &vertexai.Embedder{C: client}, nil
	case Simple:
		return simple.New(cfg.Dim), nil
	case BagOfWords:
		return simple.NewBagOfWords(cfg.Dim), nil
	}
	return nil, fmt.Errorf("unsupported embedding provider %q for model %q", cfg.Provider, cfg.Name)
}

// NewRouter registers an embedder for every config.
func NewRouter(configs []Config) (*embeddings.Router, error) {
	router := embeddings.NewRouter()
	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("embedding model name is required")
		}
		embedder, err := New(cfg)
		if err != nil {
			return nil, err
		}
		router.Register(cfg.Name, embedder)
	}
	return router, nil
}
