package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/service"
)

// ScanUseCase orchestrates one indexing run: scan the tree, persist the
// index, report the summary.
type ScanUseCase struct {
	scanService domain.ScanService
	formatter   *service.OutputFormatterImpl

	// SummaryWriter receives the human-readable scan summary. Defaults to
	// stderr so the index on stdout stays clean.
	SummaryWriter io.Writer
}

// NewScanUseCase creates a new scan use case
func NewScanUseCase(scanService domain.ScanService) *ScanUseCase {
	return &ScanUseCase{
		scanService:   scanService,
		formatter:     service.NewOutputFormatter(),
		SummaryWriter: os.Stderr,
	}
}

// Execute runs the scan and writes the index to the configured output. The
// run succeeds even when individual files failed to parse; those failures
// are part of the summary, not the exit status.
func (uc *ScanUseCase) Execute(ctx context.Context, req domain.ScanRequest) error {
	response, err := uc.scanService.Scan(ctx, req)
	if err != nil {
		return err
	}

	out, closeFn, err := openOutput(req.OutputPath)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := uc.formatter.WriteScan(response, req.OutputFormat, out); err != nil {
		return err
	}
	uc.formatter.WriteScanSummary(response, uc.SummaryWriter)
	return nil
}

// openOutput opens the output destination: the named file, or stdout when
// path is empty. An unwritable path is a fatal *domain.SerializationError.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &domain.SerializationError{Path: path, Err: err}
	}
	return f, func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing %s: %v\n", path, cerr)
		}
	}, nil
}
