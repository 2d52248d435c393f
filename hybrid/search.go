package hybrid

import (
	"context"
	"fmt"
	"strings"

	"github.com/darkhanakh/claude-context/fusion"
	"github.com/darkhanakh/claude-context/internal/xlog"
	"github.com/darkhanakh/claude-context/rerank"
	"github.com/darkhanakh/claude-context/sparse"
	"github.com/darkhanakh/claude-context/vectorstore"
)

const (
	denseChannel  = "dense"
	sparseChannel = "sparse"
)

// HybridSearch runs each request as an independent per-channel search
// against collection, fuses the results with strategy/fusionParams,
// truncates to limit, and — if a Reranker is configured — hands the
// top results to it. queryText is only used for the reranker
// hand-off; it may be empty when no reranker is configured.
func (d *Dispatcher) HybridSearch(
	ctx context.Context,
	collection string,
	requests []SearchRequest,
	strategy fusion.Strategy,
	fusionParams fusion.Params,
	limit int,
	queryText string,
	rerankOpts RerankOptions,
) ([]Result, error) {
	hybridMode, err := d.isHybrid(ctx, collection)
	if err != nil {
		return nil, err
	}

	docsByID := make(map[string]vectorstore.Document)
	var channels []fusion.ChannelResult

	for _, req := range requests {
		if _, isText := req.Data.(string); isText {
			xlog.Warn(ctx, "hybrid: text-mode query data is not supported, skipping channel", "channel", req.Channel)
			continue
		}

		channel, vec, skip := resolveChannel(req, hybridMode)
		if skip {
			continue
		}

		hits, err := d.store.Search(ctx, collection, channel, vec, vectorstore.SearchOptions{
			Limit:  req.Limit,
			Filter: req.Filter,
		})
		if err != nil {
			return nil, err
		}

		scoredDocs := make([]fusion.ScoredDoc, 0, len(hits))
		for _, hit := range hits {
			id := hit.Document.ID
			if _, ok := docsByID[id]; !ok {
				docsByID[id] = hit.Document
			}
			scoredDocs = append(scoredDocs, fusion.ScoredDoc{ID: id, Score: hit.Score})
		}

		channelName := channel
		if channelName == "" {
			channelName = fmt.Sprintf("channel-%d", len(channels))
		}
		channels = append(channels, fusion.ChannelResult{Channel: channelName, Docs: scoredDocs})
	}

	if len(channels) == 0 {
		return nil, nil
	}

	fused := fusion.Fuse(channels, strategy, fusionParams, limit)

	results := make([]Result, 0, len(fused))
	for _, f := range fused {
		doc, ok := docsByID[f.ID]
		if !ok {
			continue
		}
		results = append(results, Result{Document: doc, FusedScore: f.Score})
	}

	if d.reranker == nil || len(results) == 0 {
		return results, nil
	}

	return d.applyRerank(ctx, queryText, results, rerankOpts)
}

// resolveChannel implements the per-request channel selection of
// §4.4: sparse detection is a dual heuristic (structured sparse value
// OR the substring "sparse" in the channel name, per §9), empty sparse
// vectors are skipped silently, and text-mode data is skipped with a
// warning.
func resolveChannel(req SearchRequest, hybrid bool) (channel string, vector any, skip bool) {
	if _, isText := req.Data.(string); isText {
		return "", nil, true
	}

	isSparseRequest := false
	var sparseData any
	if v, ok := req.Data.(sparse.Vector); ok {
		if v.Empty() {
			return "", nil, true
		}
		sparseData = v
		isSparseRequest = true
	} else if strings.Contains(strings.ToLower(req.Channel), sparseChannel) {
		sparseData = req.Data
		isSparseRequest = true
	}

	if isSparseRequest {
		if hybrid {
			return sparseChannel, sparseData, false
		}
		return "", sparseData, false
	}

	dense, ok := req.Data.([]float32)
	if !ok {
		return "", nil, true
	}
	if hybrid {
		return denseChannel, dense, false
	}
	return "", dense, false
}

// isHybrid consults the dispatcher's own cache before falling back to
// a live backend check, per §4.7's state machine.
func (d *Dispatcher) isHybrid(ctx context.Context, collection string) (bool, error) {
	if v, ok := d.hybridMode.Load(collection); ok {
		return v.(bool), nil
	}

	hybrid, err := d.store.IsHybrid(ctx, collection)
	if err != nil {
		return false, err
	}
	d.hybridMode.Store(collection, hybrid)
	return hybrid, nil
}

// applyRerank hands the top N fused results to the configured
// Reranker and maps its output back onto Result, preserving the
// reranker's ordering. Failures propagate unchanged: the dispatcher
// never falls back to the fused ordering (§4.4).
func (d *Dispatcher) applyRerank(ctx context.Context, queryText string, fused []Result, opts RerankOptions) ([]Result, error) {
	candidates := fused
	if opts.TopN > 0 && opts.TopN < len(candidates) {
		candidates = candidates[:opts.TopN]
	}

	docs := make([]rerank.Document, len(candidates))
	for i, r := range candidates {
		docs[i] = rerank.Document{
			ID:       r.Document.ID,
			Content:  r.Document.Content,
			Metadata: r.Document.Metadata,
		}
	}

	reranked, err := d.reranker.Rerank(ctx, queryText, docs, rerank.Options{
		TopN:      opts.TopN,
		Threshold: opts.Threshold,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(reranked))
	for _, rr := range reranked {
		if rr.OriginalIndex < 0 || rr.OriginalIndex >= len(candidates) {
			continue
		}
		base := candidates[rr.OriginalIndex]
		out = append(out, Result{
			Document:       base.Document,
			FusedScore:     base.FusedScore,
			RelevanceScore: rr.RelevanceScore,
			Reranked:       true,
		})
	}
	return out, nil
}
