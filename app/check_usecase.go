package app

import (
	"context"
	"io"
	"os"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/service"
)

// CheckUseCase orchestrates one compliance run against a persisted index.
type CheckUseCase struct {
	checkService domain.CheckService
	formatter    *service.OutputFormatterImpl

	// OutputWriter receives the report. Defaults to stdout.
	OutputWriter io.Writer
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(checkService domain.CheckService) *CheckUseCase {
	return &CheckUseCase{
		checkService: checkService,
		formatter:    service.NewOutputFormatter(),
		OutputWriter: os.Stdout,
	}
}

// Execute evaluates the rules and writes the report. Violations are
// advisory: they appear in the report, never in the returned error.
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	response, err := uc.checkService.Check(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := uc.formatter.WriteCheck(response, req.OutputFormat, uc.OutputWriter); err != nil {
		return nil, err
	}
	return response, nil
}
