package schema

// Text is one ingestion batch: documents sharing the same metadata.
// Metadata is stored alongside every chunk and, when the index declares
// dedup fields, selects the values the record id is derived from.
type Text struct {
	Texts    []string          `json:"texts" yaml:"texts"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
