// Package query evaluates filter and aggregation expressions over a
// Snapshot. The engine is read-only: it never mutates the Snapshot, so one
// Snapshot can serve concurrent queries.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ludo-technologies/tsindex/domain"
)

// Filter selects records. The zero Filter matches everything.
type Filter struct {
	// Kind restricts to one record kind; empty matches all.
	Kind domain.RecordKind

	// Field names the record field the predicates below apply to. Records
	// whose kind does not have the field never match.
	Field    string
	Equals   string
	Contains string
	Pattern  *regexp.Regexp

	hasEquals   bool
	hasContains bool
}

// CompileFilter builds a Filter from request fields, validating that at most
// one predicate is set and compiling the regular expression.
func CompileFilter(req domain.QueryRequest) (Filter, error) {
	f := Filter{Kind: req.Kind, Field: req.Field}

	set := 0
	if req.Equals != "" {
		f.Equals = req.Equals
		f.hasEquals = true
		set++
	}
	if req.Contains != "" {
		f.Contains = req.Contains
		f.hasContains = true
		set++
	}
	if req.Match != "" {
		pattern, err := regexp.Compile(req.Match)
		if err != nil {
			return Filter{}, &domain.ConfigError{Reason: fmt.Sprintf("invalid match pattern %q", req.Match), Err: err}
		}
		f.Pattern = pattern
		set++
	}
	if set > 1 {
		return Filter{}, &domain.ConfigError{Reason: "at most one of equals, contains and match may be set"}
	}
	if set > 0 && f.Field == "" {
		return Filter{}, &domain.ConfigError{Reason: "field is required when a value predicate is set"}
	}
	return f, nil
}

func (f Filter) matches(r domain.Record) bool {
	if f.Kind != "" && r.Kind() != f.Kind {
		return false
	}
	if f.Field == "" {
		return true
	}
	value, ok := r.Field(f.Field)
	if !ok {
		return false
	}
	switch {
	case f.hasEquals:
		return value == f.Equals
	case f.hasContains:
		return strings.Contains(value, f.Contains)
	case f.Pattern != nil:
		return f.Pattern.MatchString(value)
	}
	return true
}

// Engine runs queries against one Snapshot.
type Engine struct {
	snap *domain.Snapshot
}

// NewEngine creates an Engine over snap.
func NewEngine(snap *domain.Snapshot) *Engine {
	return &Engine{snap: snap}
}

// Each streams matching records in canonical Snapshot order. The callback
// returns false to stop early.
func (e *Engine) Each(f Filter, visit func(domain.Record) bool) {
	for _, r := range e.snap.Records() {
		if !f.matches(r) {
			continue
		}
		if !visit(r) {
			return
		}
	}
}

// Select returns all matching records in canonical Snapshot order.
func (e *Engine) Select(f Filter) []domain.Record {
	var out []domain.Record
	e.Each(f, func(r domain.Record) bool {
		out = append(out, r)
		return true
	})
	return out
}

// CountBy groups matching records by the value of field and counts each
// group. Records without the field are skipped.
func (e *Engine) CountBy(f Filter, field string) map[string]int {
	counts := make(map[string]int)
	e.Each(f, func(r domain.Record) bool {
		if value, ok := r.Field(field); ok {
			counts[value]++
		}
		return true
	})
	return counts
}

// ImportedSymbols returns the set of symbols consumed by import records,
// keyed by symbol name. Bare module imports contribute nothing.
func (e *Engine) ImportedSymbols() map[string]bool {
	symbols := make(map[string]bool)
	for _, imp := range e.snap.Imports {
		if imp.Symbol != "" {
			symbols[imp.Symbol] = true
		}
	}
	return symbols
}

// ImportersOf returns the paths of files importing the given symbol, in
// Snapshot order.
func (e *Engine) ImportersOf(symbol string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, imp := range e.snap.Imports {
		if imp.Symbol == symbol && !seen[imp.Path] {
			seen[imp.Path] = true
			paths = append(paths, imp.Path)
		}
	}
	return paths
}

// HasNamespaceImports reports whether any file consumes a module through a
// namespace or bare import, which hides which symbols are actually used.
func (e *Engine) HasNamespaceImports() bool {
	for _, imp := range e.snap.Imports {
		if imp.Symbol == "*" || imp.Symbol == "" {
			return true
		}
	}
	return false
}
