package splitter

// SizeSplitter implements content splitting based purely on size
type SizeSplitter struct{}

// Split cuts document into windows of maxChunkSize runes, each window
// starting maxChunkSize-overlap runes after the previous one.
func (s *SizeSplitter) Split(document string, maxChunkSize, overlap int) ([]string, error) {
	maxChunkSize, overlap, err := normalize(maxChunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return splitBySize([]rune(document), maxChunkSize, overlap), nil
}

func splitBySize(runes []rune, maxChunkSize, overlap int) []string {
	var chunks []string
	step := maxChunkSize - overlap
	for start := 0; start < len(runes); start += step {
		end := start + maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
