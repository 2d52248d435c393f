// Package fusion combines per-channel ranked result lists into a
// single ordered list via Reciprocal Rank Fusion, weighted sum, or a
// plain-average fallback (§4.4's RankFusion).
package fusion

import "sort"

// Strategy selects the fusion formula.
type Strategy string

const (
	// RRF is Reciprocal Rank Fusion, the default strategy.
	RRF Strategy = "rrf"

	// Weighted sums raw per-channel scores with per-channel weights.
	Weighted Strategy = "weighted"

	// Average is the fallback for any unrecognized strategy value: it
	// means the mean of a document's raw per-channel scores.
	Average Strategy = "average"
)

// ScoredDoc is one entry in a single channel's ranked result list. Its
// position in the enclosing ChannelResult.Docs slice is its rank.
type ScoredDoc struct {
	ID    string
	Score float64
}

// ChannelResult is one channel's complete, score-descending ranked
// result list, as returned directly by a vector search.
type ChannelResult struct {
	Channel string
	Docs    []ScoredDoc
}

// Params carries the tunable knobs of §6: the RRF constant k and the
// optional per-channel weight list for the Weighted strategy.
type Params struct {
	// K is the RRF constant; 0 means "use the default of 60".
	K int

	// Weights are indexed by the channel's position in the Fuse call's
	// channels argument. An index past the end of Weights (i.e. no
	// entry supplied for that channel) falls back to 1/n_channels; an
	// explicit weight of 0 is honored as-is, disabling that channel.
	Weights []float64
}

// Result is one fused (doc, score) pair in the final ordering.
type Result struct {
	ID    string
	Score float64
}

const defaultRRFK = 60

// Fuse combines channels into a single descending-score-ordered,
// limit-truncated list. Ties are broken by insertion order: the order
// in which a document is first seen while scanning channels in the
// order given, which in turn preserves each channel's own rank
// ordering (§4.4's ordering guarantee). An unrecognized strategy
// silently falls back to Average rather than failing, per §4.4.
func Fuse(channels []ChannelResult, strategy Strategy, params Params, limit int) []Result {
	type accum struct {
		id        string
		order     int
		rawScores []float64
		ranks     []int
	}

	index := make(map[string]int)
	var entries []*accum

	for _, ch := range channels {
		for rank, doc := range ch.Docs {
			i, ok := index[doc.ID]
			if !ok {
				i = len(entries)
				index[doc.ID] = i
				entries = append(entries, &accum{id: doc.ID, order: i})
			}
			e := entries[i]
			e.rawScores = append(e.rawScores, doc.Score)
			e.ranks = append(e.ranks, rank)
		}
	}

	results := make([]Result, 0, len(entries))

	switch strategy {
	case RRF:
		k := params.K
		if k == 0 {
			k = defaultRRFK
		}
		for _, e := range entries {
			var score float64
			for _, rank := range e.ranks {
				score += 1.0 / float64(k+rank+1)
			}
			results = append(results, Result{ID: e.id, Score: score})
		}

	case Weighted:
		n := len(channels)
		weightFor := func(chIdx int) float64 {
			if chIdx < len(params.Weights) {
				return params.Weights[chIdx]
			}
			if n == 0 {
				return 0
			}
			return 1.0 / float64(n)
		}
		chanIdxOf := channelIndexer(channels)
		for _, e := range entries {
			var score float64
			docChannels := chanIdxOf[e.id]
			for i, raw := range e.rawScores {
				score += weightFor(docChannels[i]) * raw
			}
			results = append(results, Result{ID: e.id, Score: score})
		}

	default:
		for _, e := range entries {
			var sum float64
			for _, raw := range e.rawScores {
				sum += raw
			}
			mean := 0.0
			if len(e.rawScores) > 0 {
				mean = sum / float64(len(e.rawScores))
			}
			results = append(results, Result{ID: e.id, Score: mean})
		}
	}

	order := make(map[string]int, len(entries))
	for _, e := range entries {
		order[e.id] = e.order
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].ID] < order[results[j].ID]
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// channelIndexer returns, per document id, the channel index
// associated with each entry in that document's rawScores slice, in
// the same order rawScores was populated.
func channelIndexer(channels []ChannelResult) map[string][]int {
	out := make(map[string][]int)
	for chIdx, ch := range channels {
		for _, doc := range ch.Docs {
			out[doc.ID] = append(out[doc.ID], chIdx)
		}
	}
	return out
}
