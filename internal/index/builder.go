// Package index merges per-file extraction results into one deterministic
// Snapshot. The builder is the single synchronization point of a scan:
// extraction workers feed it concurrently, and the canonical record order
// is imposed after collection, never derived from completion order.
package index

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/extractor"
)

// Builder accumulates extraction results and produces a Snapshot.
type Builder struct {
	mu      sync.Mutex
	results []*extractor.Result
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add collects one per-file result. Safe for concurrent use.
func (b *Builder) Add(r *extractor.Result) {
	if r == nil {
		return
	}
	b.mu.Lock()
	b.results = append(b.results, r)
	b.mu.Unlock()
}

// Len returns the number of collected results.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results)
}

// Build produces the Snapshot: results are ordered lexicographically by
// path, dependent records keep their within-file discovery order, and a
// duplicate file path is rejected with a fatal *domain.IndexError. The
// walker's symlink guard should make duplicates impossible, so hitting one
// means the completeness invariant is already broken.
func (b *Builder) Build(root string, generatedAt time.Time) (*domain.Snapshot, error) {
	b.mu.Lock()
	results := make([]*extractor.Result, len(b.results))
	copy(results, b.results)
	b.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].File.Path < results[j].File.Path
	})

	snapshot := &domain.Snapshot{
		Root:        root,
		GeneratedAt: generatedAt,
	}

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		path := r.File.Path
		if seen[path] {
			return nil, &domain.IndexError{Reason: fmt.Sprintf("duplicate file path %q", path)}
		}
		seen[path] = true

		snapshot.Files = append(snapshot.Files, r.File)
		snapshot.Imports = append(snapshot.Imports, r.Imports...)
		snapshot.Exports = append(snapshot.Exports, r.Exports...)
		snapshot.Types = append(snapshot.Types, r.Types...)
		snapshot.Classes = append(snapshot.Classes, r.Classes...)
		snapshot.Methods = append(snapshot.Methods, r.Methods...)
		snapshot.Functions = append(snapshot.Functions, r.Functions...)
		if r.Error != "" {
			snapshot.Errors = append(snapshot.Errors, domain.ErrorRecord{Path: path, Message: r.Error})
		}
	}

	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
