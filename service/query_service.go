package service

import (
	"context"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/query"
	"github.com/ludo-technologies/tsindex/internal/serializer"
)

// QueryServiceImpl implements domain.QueryService over a persisted index.
type QueryServiceImpl struct{}

// NewQueryService creates a query service.
func NewQueryService() *QueryServiceImpl {
	return &QueryServiceImpl{}
}

// Query loads the Snapshot when needed and runs the filter or aggregation.
func (s *QueryServiceImpl) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	snap := req.Snapshot
	if snap == nil {
		loaded, err := serializer.New().ReadFile(req.IndexPath)
		if err != nil {
			return nil, err
		}
		snap = loaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter, err := query.CompileFilter(req)
	if err != nil {
		return nil, err
	}
	engine := query.NewEngine(snap)

	if req.CountBy != "" {
		counts := engine.CountBy(filter, req.CountBy)
		total := 0
		for _, n := range counts {
			total += n
		}
		return &domain.QueryResponse{Counts: counts, Total: total}, nil
	}

	var records []map[string]string
	engine.Each(filter, func(r domain.Record) bool {
		// "record_kind" avoids clashing with the "kind" field of export
		// and type records.
		fields := map[string]string{"record_kind": string(r.Kind())}
		for _, name := range r.FieldNames() {
			if value, ok := r.Field(name); ok {
				fields[name] = value
			}
		}
		records = append(records, fields)
		return true
	})
	return &domain.QueryResponse{Records: records, Total: len(records)}, nil
}
