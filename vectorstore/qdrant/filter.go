package qdrant

import (
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/filterexpr"
)

// toQdrantFilter translates the backend-neutral filter AST of §4.3
// into a Qdrant filter. A nil input (no filter recognized, or none
// given) translates to a nil filter, matching "no filter" semantics.
func toQdrantFilter(f *filterexpr.Filter) *qc.Filter {
	if f == nil {
		return nil
	}

	switch {
	case f.Must != nil:
		return &qc.Filter{Must: []*qc.Condition{matchCondition(*f.Must)}}
	case f.MustNot != nil:
		return &qc.Filter{MustNot: []*qc.Condition{matchCondition(*f.MustNot)}}
	case len(f.Any) > 0:
		conds := make([]*qc.Condition, 0, len(f.Any))
		for _, p := range f.Any {
			conds = append(conds, matchCondition(p))
		}
		return &qc.Filter{Should: conds}
	default:
		return nil
	}
}

func matchCondition(p filterexpr.Predicate) *qc.Condition {
	return qc.NewMatch(p.Field, p.Value)
}
