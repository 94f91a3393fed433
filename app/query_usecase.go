package app

import (
	"context"
	"io"
	"os"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/service"
)

// QueryUseCase orchestrates one query against a persisted index.
type QueryUseCase struct {
	queryService domain.QueryService
	formatter    *service.OutputFormatterImpl

	// OutputWriter receives the result. Defaults to stdout.
	OutputWriter io.Writer
}

// NewQueryUseCase creates a new query use case
func NewQueryUseCase(queryService domain.QueryService) *QueryUseCase {
	return &QueryUseCase{
		queryService: queryService,
		formatter:    service.NewOutputFormatter(),
		OutputWriter: os.Stdout,
	}
}

// Execute runs the query and writes the result.
func (uc *QueryUseCase) Execute(ctx context.Context, req domain.QueryRequest) error {
	response, err := uc.queryService.Query(ctx, req)
	if err != nil {
		return err
	}
	return uc.formatter.WriteQuery(response, req.OutputFormat, uc.OutputWriter)
}
