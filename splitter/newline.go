package splitter

import (
	"strings"
	"unicode/utf8"
)

// NewlineSplitter packs consecutive non-empty lines into chunks of at most
// maxChunkSize runes. A single line longer than the limit is cut by size.
type NewlineSplitter struct{}

// Split splits document on line boundaries.
func (s *NewlineSplitter) Split(document string, maxChunkSize, overlap int) ([]string, error) {
	maxChunkSize, overlap, err := normalize(maxChunkSize, overlap)
	if err != nil {
		return nil, err
	}
	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}
	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineLen := utf8.RuneCountInString(line)
		if lineLen > maxChunkSize {
			flush()
			chunks = append(chunks, splitBySize([]rune(line), maxChunkSize, overlap)...)
			continue
		}
		sep := 0
		if currentLen > 0 {
			sep = 1
		}
		if currentLen+sep+lineLen > maxChunkSize {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentLen += sep + lineLen
	}
	flush()
	return chunks, nil
}
