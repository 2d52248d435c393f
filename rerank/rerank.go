// Package rerank defines the second-stage reranker contract (§4.5): an
// asynchronous, stateless scorer that refines a fused result list with
// a learned relevance model. Only the interface lives here; concrete
// providers (e.g. rerank/httprerank) are values constructed from a
// config record, per §9's capability-not-inheritance guidance.
package rerank

import "context"

// Document is one candidate handed to a Reranker.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Options carries the tunables of a single Rerank call.
type Options struct {
	// TopN limits the returned result count; 0 means "no limit".
	TopN int

	// Threshold drops results whose RelevanceScore falls below it;
	// 0 means "no threshold".
	Threshold float64
}

// Result is one reranked document, with its relevance score and its
// position in the original input slice.
type Result struct {
	Document       Document
	RelevanceScore float64
	OriginalIndex  int
}

// Reranker is anything that can score a query against a candidate
// document list and return them in provider-defined ranking order.
type Reranker interface {
	// Rerank scores documents against query and returns them
	// reordered. A non-nil error means the call failed outright; the
	// caller must not fall back to the original ordering (§4.4).
	Rerank(ctx context.Context, query string, documents []Document, opts Options) ([]Result, error)

	// ProviderName identifies the backing service (e.g. "openai-compatible").
	ProviderName() string

	// ModelName identifies the specific model in use.
	ModelName() string
}
