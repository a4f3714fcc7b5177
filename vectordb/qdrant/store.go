// Package qdrant implements a vector store on a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/viant/vecindex/errs"
	"github.com/viant/vecindex/schema"
	"github.com/viant/vecindex/vectordb"
	"github.com/viant/vecindex/vectordb/meta"
)

// Name is the backend identifier.
const Name = "qdrant"

// Config holds the connection settings.
type Config struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"apiKey,omitempty"`
	UseTLS bool   `yaml:"useTLS,omitempty"`
}

// client is the subset of *qdrant.Client the store uses.
type client interface {
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Close() error
}

// Store is a Qdrant backed VectorStore.
type Store struct {
	client client
}

// New connects to the server described by cfg.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Store{client: c}, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Name returns the backend identifier.
func (s *Store) Name() string { return Name }

// CreateCollection creates a collection with a single dense vector.
func (s *Store) CreateCollection(ctx context.Context, params vectordb.CollectionParams) error {
	if err := params.Validate(); err != nil {
		return errs.Creation(params.Name, err)
	}
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: params.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(params.Dim),
			Distance: distance(params.Metric),
		}),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return errs.Creation(params.Name, errs.AlreadyExists(params.Name))
		}
		return errs.Creation(params.Name, err)
	}
	return nil
}

// Upsert writes points and waits for the write to be applied.
func (s *Store) Upsert(ctx context.Context, collection string, embeddings [][]float32, texts []string, attrs map[string]string, dedupFields []string) error {
	records, err := vectordb.BuildRecords(collection, embeddings, texts, attrs, dedupFields)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.checkDirection(ctx, collection, records); err != nil {
		return err
	}
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		pointID, err := toPointID(record.ID)
		if err != nil {
			return errs.Write(collection, err)
		}
		payload, err := qdrant.TryValueMap(payloadOf(record))
		if err != nil {
			return errs.Serialization(collection, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID),
			Vectors: qdrant.NewVectors(record.Embedding...),
			Payload: payload,
		})
	}
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	}); err != nil {
		return errs.Write(collection, err)
	}
	return nil
}

// Search queries the nearest points with their payload.
func (s *Store) Search(ctx context.Context, collection string, query []float32, k int) ([]schema.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errs.Read(collection, err)
	}
	results := make([]schema.SearchResult, 0, len(points))
	for _, point := range points {
		record := vectordb.Record{
			ID:         fromPointID(point.GetId()),
			Text:       point.GetPayload()[meta.Text].GetStringValue(),
			ChunkIndex: int(point.GetPayload()[meta.ChunkIndex].GetIntegerValue()),
			Metadata:   point.GetPayload()[meta.Metadata].GetStringValue(),
		}
		result, err := record.Result(collection, point.GetScore())
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// DropCollection deletes the collection; a missing collection is not an error.
func (s *Store) DropCollection(ctx context.Context, collection string) error {
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		if isNotFound(err) {
			return nil
		}
		return errs.Deletion(collection, err)
	}
	return nil
}

// Count returns the exact number of points.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, errs.Read(collection, err)
	}
	return int64(count), nil
}

// checkDirection looks up the collection distance only when a zero vector is
// present, keeping the common upsert to one round trip.
func (s *Store) checkDirection(ctx context.Context, collection string, records []vectordb.Record) error {
	for i := range records {
		if !vectordb.IsZero(records[i].Embedding) {
			continue
		}
		info, err := s.client.GetCollectionInfo(ctx, collection)
		if err != nil {
			return errs.Write(collection, err)
		}
		if info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetDistance() == qdrant.Distance_Cosine {
			return errs.Write(collection, vectordb.ErrZeroVector)
		}
		return nil
	}
	return nil
}

func distance(metric vectordb.Metric) qdrant.Distance {
	switch metric {
	case vectordb.Dot:
		return qdrant.Distance_Dot
	case vectordb.Euclidean:
		return qdrant.Distance_Euclid
	}
	return qdrant.Distance_Cosine
}

func payloadOf(record vectordb.Record) map[string]any {
	attributes := make(map[string]any, len(record.Attributes))
	for k, v := range record.Attributes {
		attributes[k] = v
	}
	return map[string]any{
		meta.Text:       record.Text,
		meta.ChunkIndex: int64(record.ChunkIndex),
		meta.Metadata:   record.Metadata,
		meta.Attributes: attributes,
	}
}

// toPointID renders the hex md5 record id as the UUID Qdrant accepts.
func toPointID(id string) (string, error) {
	raw, err := hex.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("invalid record id %q: %w", id, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("invalid record id %q: %w", id, err)
	}
	return u.String(), nil
}

func fromPointID(id *qdrant.PointId) string {
	if u := id.GetUuid(); u != "" {
		return strings.ReplaceAll(u, "-", "")
	}
	return fmt.Sprint(id.GetNum())
}

func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	return containsAny(err, "doesn't exist", "not found")
}

func isAlreadyExists(err error) bool {
	if status.Code(err) == codes.AlreadyExists {
		return true
	}
	return containsAny(err, "already exists")
}

// containsAny is the fallback for servers that report these conditions as
// InvalidArgument with a descriptive message.
func containsAny(err error, fragments ...string) bool {
	var st interface{ GRPCStatus() *status.Status }
	message := err.Error()
	if errors.As(err, &st) {
		message = st.GRPCStatus().Message()
	}
	message = strings.ToLower(message)
	for _, fragment := range fragments {
		if strings.Contains(message, fragment) {
			return true
		}
	}
	return false
}
