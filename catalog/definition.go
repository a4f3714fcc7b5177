package catalog

import (
	"encoding/json"
	"time"
)

// Definition is the persisted configuration of an index. It does not change
// after creation.
type Definition struct {
	Name           string    `json:"name"`
	EmbeddingModel string    `json:"embeddingModel"`
	TextSplitter   string    `json:"textSplitter"`
	Backend        string    `json:"backend"`
	DedupFields    []string  `json:"dedupFields,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// encodeDedupFields stores an empty list as NULL.
func encodeDedupFields(fields []string) (any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decodeDedupFields(value *string) ([]string, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	var fields []string
	if err := json.Unmarshal([]byte(*value), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
