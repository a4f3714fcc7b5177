package splitter

import (
	"strings"
	"unicode/utf8"
)

// MarkdownSplitter handles Markdown content splitting based on headers
type MarkdownSplitter struct{}

// Split keeps small documents whole, otherwise cuts before every heading
// and re-splits sections that are still over the limit.
func (s *MarkdownSplitter) Split(document string, maxChunkSize, overlap int) ([]string, error) {
	maxChunkSize, overlap, err := normalize(maxChunkSize, overlap)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(document) == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(document) <= maxChunkSize {
		return []string{document}, nil
	}
	var chunks []string
	for _, section := range sections(document) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		if utf8.RuneCountInString(section) <= maxChunkSize {
			chunks = append(chunks, section)
			continue
		}
		chunks = append(chunks, splitBySize([]rune(section), maxChunkSize, overlap)...)
	}
	return chunks, nil
}

// sections cuts document before every ATX heading and before the title
// line of every setext heading.
func sections(document string) []string {
	lines := strings.SplitAfter(document, "\n")
	var result []string
	var current strings.Builder
	cut := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
		}
	}
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			cut()
		} else if i+1 < len(lines) && isSetextUnderline(lines[i+1]) && strings.TrimSpace(line) != "" {
			cut()
		}
		current.WriteString(line)
	}
	cut()
	return result
}

func isSetextUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 {
		return false
	}
	return strings.Trim(trimmed, "=") == "" || strings.Trim(trimmed, "-") == ""
}
