package source

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"
)

// Filter decides which files of a tree are ingested.
type Filter struct {
	// Exclusions contains patterns of files/directories to exclude
	Exclusions []string
	// Inclusions, when set, restricts ingestion to matching paths
	Inclusions []string
	// MaxFileSize is the maximum size of files to ingest in bytes
	MaxFileSize int
}

// FilterOption modifies a Filter.
type FilterOption func(*Filter)

// WithExclusions adds exclusion patterns.
func WithExclusions(patterns ...string) FilterOption {
	return func(f *Filter) { f.Exclusions = append(f.Exclusions, patterns...) }
}

// WithInclusions adds inclusion patterns.
func WithInclusions(patterns ...string) FilterOption {
	return func(f *Filter) { f.Inclusions = append(f.Inclusions, patterns...) }
}

// WithMaxFileSize sets the maximum file size.
func WithMaxFileSize(size int) FilterOption {
	return func(f *Filter) { f.MaxFileSize = size }
}

// WithGitignore adds patterns from a .gitignore file
func WithGitignore(reader io.Reader) FilterOption {
	return func(f *Filter) {
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			f.Exclusions = append(f.Exclusions, line)
		}
	}
}

// NewFilter creates a filter starting from the default exclusions.
func NewFilter(opts ...FilterOption) *Filter {
	f := &Filter{Exclusions: defaultExclusions()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsExcluded checks if a file, given by its path relative to the collected
// root, should be skipped.
func (f *Filter) IsExcluded(path string, size int) bool {
	if f.MaxFileSize > 0 && size > f.MaxFileSize {
		return true
	}
	path = filepath.ToSlash(path)
	if len(f.Inclusions) > 0 && !f.isIncluded(path) {
		return true
	}
	return f.matchesExclusion(path)
}

// matchesExclusion applies exclusion patterns only. Directories are pruned
// with it so that included files below a non matching directory are reached.
func (f *Filter) matchesExclusion(path string) bool {
	for _, pattern := range f.Exclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if matches(path, pattern) {
			return true
		}
	}
	return false
}

func (f *Filter) isIncluded(path string) bool {
	for _, pattern := range f.Inclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.Contains(path, pattern) || matchGlob(path, pattern) {
			return true
		}
	}
	return false
}

func matches(path, pattern string) bool {
	// substring match covers directory patterns such as node_modules/
	if strings.Contains(path, pattern) {
		return true
	}
	if matchGlob(path, pattern) {
		return true
	}
	baseName := filepath.Base(path)
	return pattern == baseName || strings.HasSuffix(pattern, "/"+baseName)
}

func matchGlob(path, pattern string) bool {
	clean := strings.TrimPrefix(pattern, "/")
	if matched, _ := filepath.Match(clean, path); matched {
		return true
	}
	if matched, _ := filepath.Match("*/"+clean, path); matched {
		return true
	}
	matched, _ := filepath.Match(clean, filepath.Base(path))
	return matched
}

func defaultExclusions() []string {
	return []string{
		"node_modules/",
		".git/",
		".idea/",
		".vscode/",
		"vendor/",
		"__pycache__/",
		".DS_Store",
		"*.min.js",
		"*.map",
		"*.wasm",
		"*.lock",
		"*.log",
		"*.swp",
		".env",
		"*.tmp",
		"*.exe",
		"*.dll",
	}
}
