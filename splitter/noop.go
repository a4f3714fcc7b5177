package splitter

// NoopSplitter returns the document unchanged as a single chunk.
type NoopSplitter struct{}

// Split returns document as the only chunk, even when it is empty.
func (s *NoopSplitter) Split(document string, maxChunkSize, overlap int) ([]string, error) {
	return []string{document}, nil
}
