// Package splitter breaks documents into chunks before they are embedded.
package splitter

import (
	"strings"

	"github.com/viant/vecindex/errs"
)

// Splitter defines the interface for content splitting strategies
type Splitter interface {
	// Split divides document into chunks of at most maxChunkSize runes,
	// consecutive chunks sharing up to overlap runes where the strategy
	// supports it.
	Split(document string, maxChunkSize, overlap int) ([]string, error)
}

// Kind names a splitting strategy; its string form is what the catalog stores.
type Kind string

const (
	// Noop keeps every document as a single chunk.
	Noop Kind = "noop"
	// Newline emits one chunk per group of lines.
	Newline Kind = "newline"
	// Size emits fixed size rune windows.
	Size Kind = "size"
	// Markdown splits on headings.
	Markdown Kind = "markdown"
)

// Kinds lists the supported strategies.
func Kinds() []Kind {
	return []Kind{Noop, Newline, Size, Markdown}
}

func (k Kind) String() string { return string(k) }

// ParseKind resolves a persisted or user supplied splitter name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, candidate := range Kinds() {
		if candidate == kind {
			return kind, nil
		}
	}
	return "", errs.Validation("unsupported text splitter %q", name)
}

// New returns the splitter for kind.
func New(kind Kind) (Splitter, error) {
	switch kind {
	case Noop:
		return &NoopSplitter{}, nil
	case Newline:
		return &NewlineSplitter{}, nil
	case Size:
		return &SizeSplitter{}, nil
	case Markdown:
		return &MarkdownSplitter{}, nil
	}
	return nil, errs.Validation("unsupported text splitter %q", string(kind))
}

// NewByName parses name and returns the matching splitter.
func NewByName(name string) (Splitter, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind)
}

func normalize(maxChunkSize, overlap int) (int, int, error) {
	if maxChunkSize <= 0 {
		return 0, 0, errs.Validation("max chunk size must be positive, got %d", maxChunkSize)
	}
	if overlap < 0 || overlap >= maxChunkSize {
		return 0, 0, errs.Validation("overlap %d must be in [0, %d)", overlap, maxChunkSize)
	}
	return maxChunkSize, overlap, nil
}
