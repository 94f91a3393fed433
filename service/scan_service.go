package service

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/extractor"
	"github.com/ludo-technologies/tsindex/internal/index"
	"github.com/ludo-technologies/tsindex/internal/version"
	"github.com/ludo-technologies/tsindex/internal/walker"
)

// ScanServiceImpl implements domain.ScanService: a sequential walk feeds a
// bounded pool of extraction workers, and the index builder imposes the
// canonical order after collection. The builder is the only shared mutable
// state of a scan.
type ScanServiceImpl struct {
	progress domain.ProgressManager
}

// NewScanService creates a scan service without progress reporting.
func NewScanService() *ScanServiceImpl {
	return &ScanServiceImpl{}
}

// NewScanServiceWithProgress creates a scan service that reports extraction
// progress through pm.
func NewScanServiceWithProgress(pm domain.ProgressManager) *ScanServiceImpl {
	return &ScanServiceImpl{progress: pm}
}

// Scan builds a fresh Snapshot of req.Root. Per-file read and parse
// failures are collected into the Snapshot; only configuration problems,
// index inconsistencies and cancellation fail the whole run. On
// cancellation the collected results are discarded, never partially merged.
func (s *ScanServiceImpl) Scan(ctx context.Context, req domain.ScanRequest) (*domain.ScanResponse, error) {
	start := time.Now()

	w := walker.New(walker.Options{
		IncludeExtensions: req.IncludeExtensions,
		ExcludeDirs:       req.ExcludeDirs,
		MaxFileSize:       req.MaxFileSize,
		UseGitignore:      req.UseGitignore,
	})
	entries, err := w.Collect(ctx, req.Root)
	if err != nil {
		return nil, err
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil {
		task = s.progress.StartTask("Indexing files", len(entries))
	}
	defer task.Complete()

	ex := extractor.New(req.TestPatterns)
	builder := index.NewBuilder()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount(req.Workers))

	for _, entry := range entries {
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			builder.Add(ex.ExtractFile(gCtx, entry))
			task.Increment(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancelled mid-scan: a partial Snapshot must not be built.
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot, err := builder.Build(req.Root, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	summary := domain.ScanSummary{
		FilesScanned: len(entries),
		FilesParsed:  snapshot.FileCount() - snapshot.IncompleteCount(),
		FilesPartial: snapshot.IncompleteCount(),
		RecordCount:  snapshot.RecordCount(),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	for _, e := range snapshot.Errors {
		summary.FailedPaths = append(summary.FailedPaths, e.Path)
	}

	return &domain.ScanResponse{
		Snapshot:    snapshot,
		Summary:     summary,
		GeneratedAt: snapshot.GeneratedAt.Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

func (s *ScanServiceImpl) workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}
