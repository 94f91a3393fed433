package domain

import "context"

// Severity grades a convention violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation is one reported convention breach.
type Violation struct {
	Rule     string   `json:"rule"`
	FilePath string   `json:"file_path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`

	// Metadata carries rule-specific context, e.g. the required coverage
	// percentage of a coverage rule. Informational only.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Rule is one convention evaluated against a Snapshot. Rules are pure:
// they read the Snapshot and produce Violations, nothing else. New
// conventions are added by registering a new Rule, never by modifying the
// checker.
type Rule interface {
	// Name tags every Violation the rule produces.
	Name() string

	// Kinds lists the record kinds the rule inspects.
	Kinds() []RecordKind

	// Evaluate returns zero or more Violations for the given Snapshot.
	Evaluate(s *Snapshot) []Violation
}

// CheckRequest represents a request to evaluate convention rules against a
// persisted index.
type CheckRequest struct {
	// IndexPath is the persisted index to load. Ignored when Snapshot is
	// already provided.
	IndexPath string
	Snapshot  *Snapshot

	// RulesPath is a standalone rule-configuration file. Empty means the
	// rules section of the discovered config.
	RulesPath string

	OutputFormat OutputFormat
}

// CheckSummary provides aggregate statistics for one compliance run.
type CheckSummary struct {
	FilesChecked    int            `json:"files_checked"`
	RulesEvaluated  int            `json:"rules_evaluated"`
	TotalViolations int            `json:"total_violations"`
	ByRule          map[string]int `json:"by_rule,omitempty"`
	BySeverity      map[string]int `json:"by_severity,omitempty"`
}

// CheckResponse represents the result of one compliance run. Violations are
// transient: they are recomputed per run and never persisted.
type CheckResponse struct {
	Violations []Violation  `json:"violations"`
	Summary    CheckSummary `json:"summary"`

	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

// CheckService evaluates an ordered list of rules against a Snapshot.
type CheckService interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResponse, error)
}
