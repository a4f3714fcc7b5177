// Package source collects documents from a file tree or object storage
// prefix for ingestion.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/viant/vecindex/extract"
)

// PathKey is the metadata key carrying the document path relative to the
// collected root.
const PathKey = "path"

// Document is one collected file.
type Document struct {
	URL  string
	Path string
	Text string
}

// Collector walks a location and extracts the text of every file the
// filter accepts.
type Collector struct {
	fs     afs.Service
	filter *Filter
}

// NewCollector creates a collector; a nil filter uses NewFilter().
func NewCollector(filter *Filter) *Collector {
	if filter == nil {
		filter = NewFilter()
	}
	return &Collector{fs: afs.New(), filter: filter}
}

// Collect returns the documents under location in listing order.
func (c *Collector) Collect(ctx context.Context, location string) ([]Document, error) {
	root, err := normalize(location)
	if err != nil {
		return nil, err
	}
	var result []Document
	if err := c.collect(ctx, root, url.Path(root), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Collector) collect(ctx context.Context, location, rootPath string, result *[]Document) error {
	objects, err := c.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("list %s: %w", location, err)
	}
	locationPath := strings.TrimSuffix(url.Path(location), "/")
	for _, object := range objects {
		objectPath := url.Path(object.URL())
		if object.IsDir() && strings.TrimSuffix(objectPath, "/") == locationPath {
			continue
		}
		relative := strings.TrimPrefix(strings.TrimPrefix(objectPath, rootPath), "/")
		if object.IsDir() {
			if c.filter.matchesExclusion(relative + "/") {
				continue
			}
			if err := c.collect(ctx, url.Join(location, object.Name()), rootPath, result); err != nil {
				return err
			}
			continue
		}
		if c.filter.IsExcluded(relative, int(object.Size())) {
			continue
		}
		data, err := c.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return fmt.Errorf("read %s: %w", object.URL(), err)
		}
		text, err := extract.Text(object.Name(), data)
		if err != nil {
			return fmt.Errorf("extract %s: %w", object.URL(), err)
		}
		*result = append(*result, Document{URL: object.URL(), Path: relative, Text: text})
	}
	return nil
}

// normalize turns relative and absolute OS paths into file URLs.
func normalize(location string) (string, error) {
	if url.Scheme(location, "") != "" {
		return location, nil
	}
	if url.IsRelative(location) {
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
		location = abs
	}
	return url.ToFileURL(location), nil
}
