package mem

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/viant/vecindex/vectordb"
)

// collection maps record ids onto graph keys. A replaced record gets a
// fresh key and its old node stays in the graph as an orphan; deleting
// nodes from the graph is avoided because it can break small graphs.
// Once orphans outnumber live records the graph is rebuilt.
type collection struct {
	mu      sync.RWMutex
	params  vectordb.CollectionParams
	graph   *hnsw.Graph[uint64]
	entries map[string]*entry
	keys    map[uint64]*entry
	nextKey uint64
}

type entry struct {
	key    uint64
	record vectordb.Record
	vector []float32
}

type match struct {
	record *vectordb.Record
	score  float32
}

func newCollection(params vectordb.CollectionParams, m, efSearch int) *collection {
	return &collection{
		params:  params,
		graph:   newGraph(params.Metric, m, efSearch),
		entries: map[string]*entry{},
		keys:    map[uint64]*entry{},
	}
}

func newGraph(metric vectordb.Metric, m, efSearch int) *hnsw.Graph[uint64] {
	graph := hnsw.NewGraph[uint64]()
	graph.M = m
	graph.EfSearch = efSearch
	graph.Ml = 0.25
	switch metric {
	case vectordb.Euclidean:
		graph.Distance = hnsw.EuclideanDistance
	case vectordb.Dot:
		graph.Distance = negativeDot
	default:
		graph.Distance = hnsw.CosineDistance
	}
	return graph
}

func negativeDot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return -sum
}

func (c *collection) prepare(vector []float32) ([]float32, error) {
	if len(vector) != c.params.Dim {
		return nil, fmt.Errorf("expected vector dimension %d, got %d", c.params.Dim, len(vector))
	}
	out := make([]float32, len(vector))
	copy(out, vector)
	if c.params.Metric == vectordb.Cosine {
		var norm float64
		for _, v := range out {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			return nil, vectordb.ErrZeroVector
		}
		norm = math.Sqrt(norm)
		for i := range out {
			out[i] = float32(float64(out[i]) / norm)
		}
	}
	return out, nil
}

func (c *collection) upsert(records []vectordb.Record) error {
	vectors := make([][]float32, len(records))
	for i := range records {
		vector, err := c.prepare(records[i].Embedding)
		if err != nil {
			return err
		}
		vectors[i] = vector
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, record := range records {
		c.insert(record, vectors[i])
	}
	return nil
}

func (c *collection) insert(record vectordb.Record, vector []float32) {
	if previous, ok := c.entries[record.ID]; ok {
		delete(c.keys, previous.key)
	}
	e := &entry{key: c.nextKey, record: record, vector: vector}
	c.nextKey++
	c.graph.Add(hnsw.MakeNode(e.key, vector))
	c.entries[record.ID] = e
	c.keys[e.key] = e
	if c.graph.Len() > 2*len(c.entries) {
		c.rebuild()
	}
}

// rebuild replaces the graph with one holding only live records, added in
// key order.
func (c *collection) rebuild() {
	graph := newGraph(c.params.Metric, c.graph.M, c.graph.EfSearch)
	live := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		live = append(live, e)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].key < live[j].key })
	nodes := make([]hnsw.Node[uint64], len(live))
	for i, e := range live {
		nodes[i] = hnsw.MakeNode(e.key, e.vector)
	}
	graph.Add(nodes...)
	c.graph = graph
}

func (c *collection) search(query []float32, k int) ([]match, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := c.prepare(query)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return nil, nil
	}
	orphans := c.graph.Len() - len(c.entries)
	nodes := c.graph.Search(vector, k+orphans)
	type candidate struct {
		entry    *entry
		distance float32
	}
	candidates := make([]candidate, 0, len(nodes))
	for _, node := range nodes {
		e, ok := c.keys[node.Key]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{entry: e, distance: c.graph.Distance(vector, node.Value)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	matches := make([]match, len(candidates))
	for i, candidate := range candidates {
		matches[i] = match{record: &candidate.entry.record, score: c.score(candidate.distance)}
	}
	return matches, nil
}

// score converts a graph distance to the score reported to callers.
func (c *collection) score(distance float32) float32 {
	switch c.params.Metric {
	case vectordb.Dot:
		return -distance
	case vectordb.Euclidean:
		return distance
	}
	return 1 - distance
}

func (c *collection) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// records returns live records in insertion order.
func (c *collection) records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	result := make([]vectordb.Record, len(entries))
	for i, e := range entries {
		result[i] = e.record
	}
	return result
}
