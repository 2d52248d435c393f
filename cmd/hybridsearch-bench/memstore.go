package main

import (
	"context"
	"sort"

	"github.com/darkhanakh/claude-context/filterexpr"
	"github.com/darkhanakh/claude-context/sparse"
	"github.com/darkhanakh/claude-context/vectorstore"
)

// memStore is an in-memory vectorstore.Store, standing in for a live
// Qdrant instance so this program can exercise the dispatcher without
// any network dependency — the same role the teacher's examples give a
// throwaway embedder or client.
type memStore struct {
	hybrid map[string]bool
	points map[string][]vectorstore.Document
}

func newMemStore() *memStore {
	return &memStore{
		hybrid: map[string]bool{},
		points: map[string][]vectorstore.Document{},
	}
}

var _ vectorstore.Store = (*memStore)(nil)

func (m *memStore) HasCollection(ctx context.Context, name string) (bool, error) {
	_, ok := m.points[name]
	return ok, nil
}

func (m *memStore) CreateCollection(ctx context.Context, name string, dim int) error {
	m.points[name] = nil
	m.hybrid[name] = false
	return nil
}

func (m *memStore) CreateHybridCollection(ctx context.Context, name string, dim int) error {
	m.points[name] = nil
	m.hybrid[name] = true
	return nil
}

func (m *memStore) Insert(ctx context.Context, collection string, points []vectorstore.Document) error {
	m.points[collection] = append(m.points[collection], points...)
	return nil
}

func (m *memStore) InsertHybrid(ctx context.Context, collection string, points []vectorstore.Document) error {
	return m.Insert(ctx, collection, points)
}

func (m *memStore) Search(ctx context.Context, collection, channel string, vector any, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	var hits []vectorstore.SearchHit
	for _, doc := range m.points[collection] {
		score, ok := score(vector, doc)
		if !ok {
			continue
		}
		hits = append(hits, vectorstore.SearchHit{Document: doc, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits, nil
}

func (m *memStore) Scroll(ctx context.Context, collection string, filter *filterexpr.Filter, fields []string, limit int) ([]vectorstore.Document, error) {
	docs := m.points[collection]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *memStore) Delete(ctx context.Context, collection string, ids []string) error {
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := m.points[collection][:0]
	for _, doc := range m.points[collection] {
		if !remove[doc.ID] {
			kept = append(kept, doc)
		}
	}
	m.points[collection] = kept
	return nil
}

func (m *memStore) DropCollection(ctx context.Context, name string) error {
	delete(m.points, name)
	delete(m.hybrid, name)
	return nil
}

func (m *memStore) IsHybrid(ctx context.Context, name string) (bool, error) {
	return m.hybrid[name], nil
}

// score computes a dot-product similarity between the query vector and
// a document's matching channel vector. Dense queries score against
// doc.Dense; sparse queries score against doc.Sparse.
func score(vector any, doc vectorstore.Document) (float64, bool) {
	switch v := vector.(type) {
	case []float32:
		if len(doc.Dense) == 0 {
			return 0, false
		}
		return dotDense(v, doc.Dense), true
	case sparse.Vector:
		if doc.Sparse.Empty() {
			return 0, false
		}
		return dotSparse(v, doc.Sparse), true
	default:
		return 0, false
	}
}

func dotDense(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func dotSparse(a, b sparse.Vector) float64 {
	bv := make(map[int32]float64, len(b.Indices))
	for i, idx := range b.Indices {
		bv[idx] = b.Values[i]
	}
	var sum float64
	for i, idx := range a.Indices {
		if w, ok := bv[idx]; ok {
			sum += a.Values[i] * w
		}
	}
	return sum
}
