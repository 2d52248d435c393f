package hybrid

import (
	"context"
	"testing"

	"github.com/darkhanakh/claude-context/filterexpr"
	"github.com/darkhanakh/claude-context/fusion"
	"github.com/darkhanakh/claude-context/rerank"
	"github.com/darkhanakh/claude-context/sparse"
	"github.com/darkhanakh/claude-context/vectorstore"
)

// fakeStore is a minimal in-memory vectorstore.Store for dispatcher tests.
type fakeStore struct {
	hybrid      map[string]bool
	byChannel   map[string][]vectorstore.SearchHit
	searchCalls int
}

func newFakeStore(hybrid bool) *fakeStore {
	return &fakeStore{hybrid: map[string]bool{"code": hybrid}, byChannel: map[string][]vectorstore.SearchHit{}}
}

func (f *fakeStore) HasCollection(ctx context.Context, name string) (bool, error) { return true, nil }
func (f *fakeStore) CreateCollection(ctx context.Context, name string, dim int) error { return nil }
func (f *fakeStore) CreateHybridCollection(ctx context.Context, name string, dim int) error {
	return nil
}
func (f *fakeStore) Insert(ctx context.Context, collection string, points []vectorstore.Document) error {
	return nil
}
func (f *fakeStore) InsertHybrid(ctx context.Context, collection string, points []vectorstore.Document) error {
	return nil
}
func (f *fakeStore) Search(ctx context.Context, collection, channel string, vector any, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	f.searchCalls++
	return f.byChannel[channel], nil
}
func (f *fakeStore) Scroll(ctx context.Context, collection string, filter *filterexpr.Filter, fields []string, limit int) ([]vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeStore) Delete(ctx context.Context, collection string, ids []string) error { return nil }
func (f *fakeStore) DropCollection(ctx context.Context, name string) error             { return nil }
func (f *fakeStore) IsHybrid(ctx context.Context, name string) (bool, error) {
	return f.hybrid[name], nil
}

var _ vectorstore.Store = (*fakeStore)(nil)

// fakeReranker returns its documents reversed, each with a relevance
// score of its original index plus one.
type fakeReranker struct{}

func (fakeReranker) Rerank(ctx context.Context, query string, documents []rerank.Document, opts rerank.Options) ([]rerank.Result, error) {
	results := make([]rerank.Result, 0, len(documents))
	for i := len(documents) - 1; i >= 0; i-- {
		results = append(results, rerank.Result{
			Document:       documents[i],
			RelevanceScore: float64(i) + 1,
			OriginalIndex:  i,
		})
	}
	return results, nil
}
func (fakeReranker) ProviderName() string { return "fake" }
func (fakeReranker) ModelName() string    { return "fake-model" }

var _ rerank.Reranker = fakeReranker{}

func TestHybridSearch_S5EmptySparseOnlyQuerySkipsBackend(t *testing.T) {
	store := newFakeStore(true)
	d := NewDispatcher(store, nil)

	requests := []SearchRequest{
		{Data: sparse.Vector{}},
	}

	results, err := d.HybridSearch(context.Background(), "code", requests, fusion.RRF, fusion.Params{}, 10, "", RerankOptions{})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %+v", results)
	}
	if store.searchCalls != 0 {
		t.Fatalf("expected no backend search calls, got %d", store.searchCalls)
	}
}

func TestHybridSearch_DenseOnHybridRoutesToNamedChannel(t *testing.T) {
	store := newFakeStore(true)
	store.byChannel[denseChannel] = []vectorstore.SearchHit{
		{Document: vectorstore.Document{ID: "doc-1"}, Score: 0.9},
	}

	d := NewDispatcher(store, nil)
	requests := []SearchRequest{{Data: []float32{0.1, 0.2}, Limit: 5}}

	results, err := d.HybridSearch(context.Background(), "code", requests, fusion.RRF, fusion.Params{}, 10, "", RerankOptions{})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != "doc-1" {
		t.Fatalf("expected doc-1 routed via dense channel, got %+v", results)
	}
}

func TestHybridSearch_DenseOnNonHybridUsesUnnamedChannel(t *testing.T) {
	store := newFakeStore(false)
	store.byChannel[""] = []vectorstore.SearchHit{
		{Document: vectorstore.Document{ID: "doc-2"}, Score: 0.5},
	}

	d := NewDispatcher(store, nil)
	requests := []SearchRequest{{Data: []float32{0.1}}}

	results, err := d.HybridSearch(context.Background(), "code", requests, fusion.RRF, fusion.Params{}, 10, "", RerankOptions{})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != "doc-2" {
		t.Fatalf("expected doc-2 via unnamed channel, got %+v", results)
	}
}

func TestHybridSearch_FusesAcrossChannels(t *testing.T) {
	store := newFakeStore(true)
	store.byChannel[denseChannel] = []vectorstore.SearchHit{
		{Document: vectorstore.Document{ID: "doc-a"}, Score: 0.9},
		{Document: vectorstore.Document{ID: "doc-b"}, Score: 0.1},
	}
	store.byChannel[sparseChannel] = []vectorstore.SearchHit{
		{Document: vectorstore.Document{ID: "doc-b"}, Score: 3.0},
	}

	d := NewDispatcher(store, nil)
	requests := []SearchRequest{
		{Data: []float32{0.1}},
		{Data: sparse.Vector{Indices: []int32{1}, Values: []float64{1.0}}},
	}

	results, err := d.HybridSearch(context.Background(), "code", requests, fusion.RRF, fusion.Params{K: 60}, 10, "", RerankOptions{})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 fused docs, got %d", len(results))
	}
	if results[0].Document.ID != "doc-b" {
		t.Errorf("expected doc-b to rank first (appears in both channels), got %q", results[0].Document.ID)
	}
}

func TestHybridSearch_RerankHandoffReordersResults(t *testing.T) {
	store := newFakeStore(true)
	store.byChannel[denseChannel] = []vectorstore.SearchHit{
		{Document: vectorstore.Document{ID: "doc-1", Content: "first"}, Score: 0.9},
		{Document: vectorstore.Document{ID: "doc-2", Content: "second"}, Score: 0.5},
	}

	d := NewDispatcher(store, fakeReranker{})
	requests := []SearchRequest{{Data: []float32{0.1}}}

	results, err := d.HybridSearch(context.Background(), "code", requests, fusion.RRF, fusion.Params{}, 10, "query", RerankOptions{})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 reranked results, got %d", len(results))
	}
	if results[0].Document.ID != "doc-2" || !results[0].Reranked {
		t.Errorf("expected fakeReranker to reverse order, got %+v", results)
	}
}

func TestHybridSearch_HybridModeCachedAfterFirstObservation(t *testing.T) {
	store := newFakeStore(true)
	d := NewDispatcher(store, nil)

	hybrid1, err := d.isHybrid(context.Background(), "code")
	if err != nil || !hybrid1 {
		t.Fatalf("isHybrid = %v, %v", hybrid1, err)
	}

	store.hybrid["code"] = false // backend "changes"; cache should not reflect it
	hybrid2, err := d.isHybrid(context.Background(), "code")
	if err != nil || !hybrid2 {
		t.Fatalf("expected cached hybrid=true despite backend change, got %v, %v", hybrid2, err)
	}
}
