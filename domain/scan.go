package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// ScanRequest represents a request to index a source tree.
type ScanRequest struct {
	// Root is the directory to scan.
	Root string

	// File selection.
	IncludeExtensions []string
	ExcludeDirs       []string
	MaxFileSize       int64
	UseGitignore      bool

	// TestPatterns are the test-file naming conventions used to compute
	// FileRecord.HasTests. Placeholders: {dir} {base} {ext} {name}.
	TestPatterns []string

	// Workers bounds the extraction pool. 0 means runtime.NumCPU().
	Workers int

	// Output configuration.
	OutputFormat OutputFormat
	OutputPath   string // empty means stdout
}

// ScanSummary provides aggregate statistics for one scan, including the
// per-file failures that were collected instead of aborting the run.
type ScanSummary struct {
	FilesScanned int      `json:"files_scanned"`
	FilesParsed  int      `json:"files_parsed"`
	FilesPartial int      `json:"files_partial"`
	RecordCount  int      `json:"record_count"`
	DurationMs   int64    `json:"duration_ms"`
	FailedPaths  []string `json:"failed_paths,omitempty"`
}

// ScanResponse represents the result of one scan.
type ScanResponse struct {
	Snapshot *Snapshot   `json:"snapshot"`
	Summary  ScanSummary `json:"summary"`

	Warnings []string `json:"warnings,omitempty"`

	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

// ScanService builds a fresh Snapshot from a clean walk of the tree.
// Snapshots are never incrementally patched.
type ScanService interface {
	Scan(ctx context.Context, req ScanRequest) (*ScanResponse, error)
}

// SnapshotWriter persists a Snapshot in the line-oriented index format.
type SnapshotWriter interface {
	Write(w io.Writer, s *Snapshot) error
}

// SnapshotReader parses a persisted index back into a Snapshot.
type SnapshotReader interface {
	Read(r io.Reader) (*Snapshot, error)
}
