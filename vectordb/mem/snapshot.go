package mem

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/bintly"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/vectordb"
)

const (
	snapshotExt     = ".vidx"
	snapshotVersion = 1
	// stagingDir holds snapshots being written; the previous snapshot stays
	// in place until the new one is complete.
	stagingDir = ".staging"
)

// Persist writes every collection to the snapshot URL, uploading to a
// staging location first and moving the result over the old snapshot. It is
// a no-op when no snapshot URL is configured.
func (s *Store) Persist(ctx context.Context) error {
	if s.snapshotURL == "" {
		return nil
	}
	s.mu.RLock()
	collections := make([]*collection, 0, len(s.collections))
	for _, c := range s.collections {
		collections = append(collections, c)
	}
	s.mu.RUnlock()
	for _, c := range collections {
		data, err := encodeCollection(c)
		if err != nil {
			return errs.Serialization(c.params.Name, err)
		}
		URL := s.snapshotFile(c.params.Name)
		stagingURL := url.Join(s.snapshotURL, stagingDir, c.params.Name+snapshotExt)
		if err := s.fs.Upload(ctx, stagingURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return errs.Write(c.params.Name, fmt.Errorf("snapshot %s: %w", stagingURL, err))
		}
		if err := s.fs.Move(ctx, stagingURL, URL); err != nil {
			return errs.Write(c.params.Name, fmt.Errorf("snapshot %s: %w", URL, err))
		}
	}
	return nil
}

func (s *Store) load(ctx context.Context) error {
	if s.snapshotURL == "" {
		return nil
	}
	if ok, _ := s.fs.Exists(ctx, s.snapshotURL); !ok {
		return nil
	}
	objects, err := s.fs.List(ctx, s.snapshotURL)
	if err != nil {
		return errs.Read(s.snapshotURL, err)
	}
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), snapshotExt) {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return errs.Read(object.Name(), err)
		}
		c, err := s.decodeCollection(data)
		if err != nil {
			return errs.Serialization(object.URL(), err)
		}
		s.mu.Lock()
		s.collections[c.params.Name] = c
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) snapshotFile(name string) string {
	return url.Join(s.snapshotURL, name+snapshotExt)
}

func encodeCollection(c *collection) ([]byte, error) {
	records := c.records()
	writers := bintly.NewWriters()
	writer := writers.Get()
	defer writers.Put(writer)

	writer.Int(snapshotVersion)
	writer.String(c.params.Name)
	writer.Int(c.params.Dim)
	writer.String(string(c.params.Metric))
	writer.Int(len(records))
	for i := range records {
		if err := records[i].EncodeBinary(writer); err != nil {
			return nil, err
		}
	}
	return seal(writer.Bytes())
}

func (s *Store) decodeCollection(data []byte) (*collection, error) {
	readers := bintly.NewReaders()
	reader := readers.Get()
	defer readers.Put(reader)
	payload, err := unseal(data)
	if err != nil {
		return nil, err
	}
	if err := reader.FromBytes(payload); err != nil {
		return nil, err
	}

	var version int
	reader.Int(&version)
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	params := vectordb.CollectionParams{}
	var metric string
	reader.String(&params.Name)
	reader.Int(&params.Dim)
	reader.String(&metric)
	params.Metric = vectordb.Metric(metric)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	var size int
	reader.Int(&size)
	if size < 0 {
		return nil, fmt.Errorf("invalid record count %d", size)
	}
	c := newCollection(params, s.m, s.efSearch)
	for i := 0; i < size; i++ {
		record := vectordb.Record{}
		if err := record.DecodeBinary(reader); err != nil {
			return nil, err
		}
		vector, err := c.prepare(record.Embedding)
		if err != nil {
			return nil, err
		}
		c.insert(record, vector)
	}
	return c, nil
}
