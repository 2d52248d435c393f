// Package filterexpr parses the small, fixed filter grammar shared by
// point search and scroll/query into a backend-neutral filter AST
// (§4.3). It never returns a hard error: unrecognized input yields a
// nil Filter and a logged warning, since a missing filter degrades to
// "search everything" rather than aborting the request.
package filterexpr

import (
	"context"
	"regexp"
	"strings"

	"github.com/darkhanakh/claude-context/internal/xlog"
)

// Op is the comparison operator of a leaf predicate.
type Op string

const (
	// OpEq is field == value.
	OpEq Op = "=="
	// OpNe is field != value.
	OpNe Op = "!="
)

// Filter is the backend-neutral filter AST. Exactly one of Must,
// MustNot or Any is set, matching the three grammar forms of §4.3.
//
//   - field in [v1, v2, ...]  -> Any holds one Predicate per value, OR'd
//   - field == value          -> Must holds the single equality predicate
//   - field != value          -> MustNot holds the single equality predicate
type Filter struct {
	Must    *Predicate
	MustNot *Predicate
	Any     []Predicate
}

// Predicate is a single field/operator/value leaf.
type Predicate struct {
	Field string
	Op    Op
	Value string
}

var (
	fieldPattern = `[A-Za-z_][A-Za-z0-9_]*`

	inPattern = regexp.MustCompile(
		`(?i)^\s*(` + fieldPattern + `)\s+in\s*\[\s*(.*?)\s*\]\s*$`,
	)
	eqPattern = regexp.MustCompile(
		`(?i)^\s*(` + fieldPattern + `)\s*==\s*(.+?)\s*$`,
	)
	nePattern = regexp.MustCompile(
		`(?i)^\s*(` + fieldPattern + `)\s*!=\s*(.+?)\s*$`,
	)
)

// Parse parses expr into a Filter. Unrecognized input returns a nil
// Filter with a logged warning rather than an error; this is the only
// failure mode, per §4.3/§7.
func Parse(ctx context.Context, expr string) *Filter {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil
	}

	if m := inPattern.FindStringSubmatch(trimmed); m != nil {
		field, rawValues := m[1], m[2]
		values := splitValues(rawValues)
		if len(values) == 0 {
			xlog.Warn(ctx, "filterexpr: 'in' list has no values, filter expression not recognized", "expr", expr)
			return nil
		}
		preds := make([]Predicate, 0, len(values))
		for _, v := range values {
			preds = append(preds, Predicate{Field: field, Op: OpEq, Value: unquote(v)})
		}
		return &Filter{Any: preds}
	}

	if m := eqPattern.FindStringSubmatch(trimmed); m != nil {
		field, rawValue := m[1], m[2]
		return &Filter{Must: &Predicate{Field: field, Op: OpEq, Value: unquote(rawValue)}}
	}

	if m := nePattern.FindStringSubmatch(trimmed); m != nil {
		field, rawValue := m[1], m[2]
		return &Filter{MustNot: &Predicate{Field: field, Op: OpEq, Value: unquote(rawValue)}}
	}

	xlog.Warn(ctx, "filterexpr: filter expression not recognized", "expr", expr)
	return nil
}

// splitValues splits the interior of an `in [...]` list on commas,
// trimming surrounding whitespace from each element and dropping empty
// elements produced by trailing commas.
func splitValues(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		values = append(values, p)
	}
	return values
}

// unquote strips a single layer of matching single or double quotes
// from a value, leaving unquoted values untouched.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
