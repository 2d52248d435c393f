// Command hybridsearch-bench is a small smoke-test harness that wires
// the tokenizer, the BM25 sparse encoder, an in-memory VectorStore, and
// the HybridDispatcher together end to end, without a live Qdrant
// instance — in the spirit of the teacher's own examples/hybrid and
// examples/sparse programs, but exercising this module's own hybrid
// dense+sparse data model rather than Milvus's.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/darkhanakh/claude-context/fusion"
	"github.com/darkhanakh/claude-context/hybrid"
	"github.com/darkhanakh/claude-context/sparse"
	"github.com/darkhanakh/claude-context/vectorstore"
)

const collectionName = "code_chunks_demo"

type sourceChunk struct {
	id, path, content string
}

func main() {
	ctx := context.Background()

	corpus := []sourceChunk{
		{id: "chunk-1", path: "internal/retry/backoff.go", content: "func computeBackoffDelay(attempt int, base time.Duration) time.Duration { return base * time.Duration(1<<attempt) }"},
		{id: "chunk-2", path: "internal/retry/policy.go", content: "type RetryPolicy struct { MaxAttempts int; Backoff BackoffFunc }"},
		{id: "chunk-3", path: "internal/cache/lru.go", content: "func (c *LRUCache) evictOldest() { c.list.Remove(c.list.Back()) }"},
		{id: "chunk-4", path: "internal/cache/ttl.go", content: "type TTLEntry struct { Value any; ExpiresAt time.Time }"},
	}

	encoder := sparse.NewEncoder(sparse.DefaultParams())
	texts := make([]string, len(corpus))
	for i, c := range corpus {
		texts[i] = c.content
	}
	encoder.BuildVocabulary(texts)

	store := newMemStore()
	if err := store.CreateHybridCollection(ctx, collectionName, denseDim); err != nil {
		log.Fatalf("create collection: %v", err)
	}

	docs := make([]vectorstore.Document, len(corpus))
	for i, c := range corpus {
		docs[i] = vectorstore.Document{
			ID:           c.id,
			Dense:        mockDenseEmbed(c.content),
			Sparse:       encoder.EmbedDocument(ctx, c.content),
			Content:      c.content,
			RelativePath: c.path,
		}
	}
	if err := store.InsertHybrid(ctx, collectionName, docs); err != nil {
		log.Fatalf("insert: %v", err)
	}

	dispatcher := hybrid.NewDispatcher(store, nil)

	query := "backoff retry attempt"
	requests := []hybrid.SearchRequest{
		{Data: mockDenseEmbed(query), Limit: 10},
		{Data: encoder.EmbedQuery(ctx, query), Limit: 10},
	}

	results, err := dispatcher.HybridSearch(ctx, collectionName, requests, fusion.RRF, fusion.Params{K: 60}, 10, query, hybrid.RerankOptions{})
	if err != nil {
		log.Fatalf("hybrid search: %v", err)
	}

	fmt.Printf("query: %q\n\nfused results (%d):\n", query, len(results))
	for i, r := range results {
		fmt.Printf("%d. %s (fused score %.4f) — %s\n", i+1, r.Document.RelativePath, r.FusedScore, r.Document.Content)
	}
}

const denseDim = 16

// mockDenseEmbed stands in for a real embedding model: a deterministic,
// content-derived vector, not a semantically meaningful one. It exists
// only to exercise the dense search channel.
func mockDenseEmbed(text string) []float32 {
	vec := make([]float32, denseDim)
	var h uint32 = 2166136261
	for _, r := range text {
		h ^= uint32(r)
		h *= 16777619
		vec[int(h)%denseDim] += 1
	}
	return vec
}
