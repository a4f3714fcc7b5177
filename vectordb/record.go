package vectordb

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/viant/bintly"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
)

// Record is one stored chunk.
type Record struct {
	// ID is the hex MD5 content hash, see RecordID.
	ID         string
	Embedding  []float32
	Text       string
	ChunkIndex int
	// Metadata is the JSON encoded batch metadata.
	Metadata   string
	Attributes map[string]string
}

// RecordID derives the record id. Without dedup fields it hashes text. With
// dedup fields it hashes the values of those fields present in attrs,
// concatenated in field order, and ignores text; every chunk of a batch then
// shares one id.
func RecordID(text string, attrs map[string]string, dedupFields []string) string {
	h := md5.New()
	if len(dedupFields) == 0 {
		h.Write([]byte(text))
	} else {
		for _, field := range dedupFields {
			if value, ok := attrs[field]; ok {
				h.Write([]byte(value))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BuildRecords pairs embeddings with texts and assigns ids. Records sharing
// an id collapse onto the last one, matching what a sequential upsert
// would leave behind.
func BuildRecords(collection string, embeddings [][]float32, texts []string, attrs map[string]string, dedupFields []string) ([]Record, error) {
	if len(embeddings) != len(texts) {
		return nil, errs.Write(collection, fmt.Errorf("got %d embeddings for %d texts", len(embeddings), len(texts)))
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	metadata, err := json.Marshal(attrs)
	if err != nil {
		return nil, errs.Serialization(collection, err)
	}
	records := make([]Record, 0, len(texts))
	position := map[string]int{}
	for i, text := range texts {
		record := Record{
			ID:         RecordID(text, attrs, dedupFields),
			Embedding:  embeddings[i],
			Text:       text,
			ChunkIndex: i,
			Metadata:   string(metadata),
			Attributes: attrs,
		}
		if at, ok := position[record.ID]; ok {
			records[at] = record
			continue
		}
		position[record.ID] = len(records)
		records = append(records, record)
	}
	return records, nil
}

// DecodeMetadata parses a stored metadata document.
func DecodeMetadata(collection, document string) (map[string]any, error) {
	if document == "" {
		return map[string]any{}, nil
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(document), &result); err != nil {
		return nil, errs.Serialization(collection, fmt.Errorf("metadata: %w", err))
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// Result converts the record into a search result.
func (r *Record) Result(collection string, score float32) (schema.SearchResult, error) {
	metadata, err := DecodeMetadata(collection, r.Metadata)
	if err != nil {
		return schema.SearchResult{}, err
	}
	return schema.SearchResult{
		ID:         r.ID,
		Text:       r.Text,
		ChunkIndex: r.ChunkIndex,
		Score:      score,
		Metadata:   metadata,
	}, nil
}

// EncodeBinary encodes the record to a binary stream
func (r *Record) EncodeBinary(stream *bintly.Writer) error {
	stream.String(r.ID)
	stream.Int(r.ChunkIndex)
	stream.String(r.Text)
	stream.String(r.Metadata)

	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	stream.Int(len(keys))
	for _, k := range keys {
		stream.String(k)
		stream.String(r.Attributes[k])
	}

	stream.Int(len(r.Embedding))
	for _, v := range r.Embedding {
		stream.Float32(v)
	}
	return nil
}

// DecodeBinary decodes the record from a binary stream
func (r *Record) DecodeBinary(stream *bintly.Reader) error {
	stream.String(&r.ID)
	stream.Int(&r.ChunkIndex)
	stream.String(&r.Text)
	stream.String(&r.Metadata)

	var size int
	stream.Int(&size)
	if size < 0 {
		return fmt.Errorf("invalid attribute count %d", size)
	}
	r.Attributes = make(map[string]string, size)
	for i := 0; i < size; i++ {
		var key, value string
		stream.String(&key)
		stream.String(&value)
		r.Attributes[key] = value
	}

	stream.Int(&size)
	if size < 0 {
		return fmt.Errorf("invalid embedding size %d", size)
	}
	r.Embedding = make([]float32, size)
	for i := range r.Embedding {
		stream.Float32(&r.Embedding[i])
	}
	return nil
}

// ErrZeroVector reports an embedding with no direction under cosine.
var ErrZeroVector = errors.New("zero vector has no cosine direction")

// CheckDirection returns ErrZeroVector when metric is cosine and any record
// embedding has zero magnitude.
func CheckDirection(metric Metric, records []Record) error {
	if metric != Cosine {
		return nil
	}
	for i := range records {
		if IsZero(records[i].Embedding) {
			return ErrZeroVector
		}
	}
	return nil
}

// IsZero reports whether every component of embedding is zero.
func IsZero(embedding []float32) bool {
	for _, v := range embedding {
		if v != 0 {
			return false
		}
	}
	return true
}
