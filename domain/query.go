package domain

import "context"

// QueryRequest represents a filter expression over a persisted index.
type QueryRequest struct {
	IndexPath string
	Snapshot  *Snapshot

	// Kind restricts matching to one record kind. Empty matches all kinds.
	Kind RecordKind

	// Field filtering. Field names the record field; exactly one of
	// Equals, Contains and Match applies. Match is a regular expression.
	Field    string
	Equals   string
	Contains string
	Match    string

	// CountBy switches the query to aggregation: matching records are
	// grouped by the named field and counted instead of returned.
	CountBy string

	OutputFormat OutputFormat
}

// QueryResponse represents the result of one query. Queries are read-only;
// the underlying Snapshot is never mutated.
type QueryResponse struct {
	// Records holds the matching records as field maps, in Snapshot order.
	// Empty when CountBy was requested.
	Records []map[string]string `json:"records,omitempty"`

	// Counts holds group-by-field counts when CountBy was requested.
	Counts map[string]int `json:"counts,omitempty"`

	Total int `json:"total"`
}

// QueryService runs filter and aggregation queries over a Snapshot.
type QueryService interface {
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)
}
