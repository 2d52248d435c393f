// Package hybrid implements the HybridDispatcher (§4.4): it normalizes
// channel addressing across hybrid and non-hybrid collections, runs
// per-channel searches against a vectorstore.Store, fuses the results,
// and optionally hands the top results to a rerank.Reranker.
package hybrid

import (
	"sync"

	"github.com/darkhanakh/claude-context/filterexpr"
	"github.com/darkhanakh/claude-context/rerank"
	"github.com/darkhanakh/claude-context/vectorstore"
)

// SearchRequest is one per-channel query within a single hybridSearch
// call. Data must be a []float32 (dense), a sparse.Vector (sparse), or
// a string (text mode, unsupported and skipped with a warning).
type SearchRequest struct {
	Data    any
	Channel string
	Limit   int
	Filter  *filterexpr.Filter
}

// RerankOptions configures the optional reranker hand-off.
type RerankOptions struct {
	// TopN bounds how many of the fused results are sent to the
	// reranker; 0 means "all of them".
	TopN int

	// Threshold drops reranked results below this relevance score; 0
	// means "no threshold".
	Threshold float64
}

// Result is one final (document, score) pair. RelevanceScore is only
// meaningful when a Reranker was configured and ran.
type Result struct {
	Document       vectorstore.Document
	FusedScore     float64
	RelevanceScore float64
	Reranked       bool
}

// Dispatcher is the HybridDispatcher of §4.4.
type Dispatcher struct {
	store    vectorstore.Store
	reranker rerank.Reranker

	// hybridMode is the per-collection hybrid-mode cache of §5/§4.7:
	// Unknown -> Hybrid or Unknown -> NonHybrid on first observation,
	// monotonic for the process lifetime. sync.Map tolerates
	// concurrent reads and idempotent concurrent writes.
	hybridMode sync.Map
}

// NewDispatcher constructs a Dispatcher. reranker may be nil, meaning
// no second-stage reranking is performed.
func NewDispatcher(store vectorstore.Store, reranker rerank.Reranker) *Dispatcher {
	return &Dispatcher{store: store, reranker: reranker}
}

// PreloadHybridMode seeds the hybrid-mode cache for name without a
// live backend round-trip, per §9's configuration-hint guidance.
func (d *Dispatcher) PreloadHybridMode(name string, hybrid bool) {
	d.hybridMode.Store(name, hybrid)
}
