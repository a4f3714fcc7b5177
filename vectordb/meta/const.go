// Package meta names the payload fields every vector store persists with a record.
package meta

const (
	// Text is the chunk text.
	Text = "text"
	// ChunkIndex is the position of the chunk within its batch.
	ChunkIndex = "chunk_index"
	// Metadata is the JSON encoded batch metadata.
	Metadata = "metadata"
	// Attributes holds the batch metadata as a nested map where the backend supports it.
	Attributes = "attributes"
)
