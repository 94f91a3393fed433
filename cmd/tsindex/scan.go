package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/tsindex/app"
	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/config"
	"github.com/ludo-technologies/tsindex/service"
)

var (
	scanExtensions  []string
	scanExcludeDirs []string
	scanMaxFileSize int64
	scanGitignore   bool
	scanWorkers     int
	scanOutputPath  string
	scanJSON        bool
	scanConfigPath  string
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Index a source tree",
		Long: `Walk a source tree and write its structural index.

The index is one record per line (FILE, IMPORT, EXPORT, TYPE, CLASS,
METHOD, FUNC, ERROR), pipe-delimited, so line-oriented tools can filter it
directly. Files that fail to read or parse are indexed with an ERROR
record; they never abort the scan.

Exit codes:
  0 - Scan completed (even with per-file failures)
  1 - Fatal error (bad root, unwritable output, index inconsistency)

Examples:
  # Index the current tree to stdout
  tsindex scan .

  # Persist the index
  tsindex scan src/ --output .tsindex

  # Restrict languages and honor .gitignore
  tsindex scan . --ext .ts,.tsx --gitignore

  # JSON output with summary included
  tsindex scan . --json`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringSliceVar(&scanExtensions, "ext", nil,
		"File extensions to index (default from config)")
	cmd.Flags().StringSliceVar(&scanExcludeDirs, "exclude", nil,
		"Directory-name globs to prune (default from config)")
	cmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", -1,
		"Skip files larger than this many bytes (0 = no limit)")
	cmd.Flags().BoolVar(&scanGitignore, "gitignore", false,
		"Also exclude paths matched by the root's .gitignore")
	cmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"Extraction worker count (0 = available CPUs)")
	cmd.Flags().StringVarP(&scanOutputPath, "output", "o", "",
		"Index output path (default: stdout)")
	cmd.Flags().BoolVar(&scanJSON, "json", false,
		"Output the full scan response as JSON")
	cmd.Flags().StringVarP(&scanConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := config.LoadConfigWithTarget(scanConfigPath, root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	req := scanRequestFromConfig(cmd, cfg, root)

	// Progress is auto-disabled for JSON output, non-TTY and CI.
	pm := service.NewProgressManager(scanProgressEligible(req))
	defer pm.Close()

	uc := app.NewScanUseCase(service.NewScanServiceWithProgress(pm))
	return uc.Execute(cmd.Context(), req)
}

// scanProgressEligible decides from the resolved request whether a progress
// bar may render: only when the index goes to a file, and never alongside
// JSON output. The request already carries the merged flag and config
// values, so a config-supplied output path counts the same as --output.
func scanProgressEligible(req domain.ScanRequest) bool {
	return req.OutputFormat != domain.OutputFormatJSON && req.OutputPath != ""
}

func scanRequestFromConfig(cmd *cobra.Command, cfg *config.Config, root string) domain.ScanRequest {
	req := domain.ScanRequest{
		Root:              root,
		IncludeExtensions: cfg.Scan.IncludeExtensions,
		ExcludeDirs:       cfg.Scan.ExcludeDirs,
		MaxFileSize:       cfg.Scan.MaxFileSize,
		UseGitignore:      cfg.Scan.UseGitignore,
		TestPatterns:      cfg.Scan.TestPatterns,
		Workers:           cfg.Scan.Workers,
		OutputFormat:      domain.OutputFormatText,
		OutputPath:        cfg.Output.Path,
	}

	// Explicit flags win over config values.
	if cmd.Flags().Changed("ext") {
		req.IncludeExtensions = scanExtensions
	}
	if cmd.Flags().Changed("exclude") {
		req.ExcludeDirs = scanExcludeDirs
	}
	if cmd.Flags().Changed("max-file-size") {
		req.MaxFileSize = scanMaxFileSize
	}
	if cmd.Flags().Changed("gitignore") {
		req.UseGitignore = scanGitignore
	}
	if cmd.Flags().Changed("workers") {
		req.Workers = scanWorkers
	}
	if cmd.Flags().Changed("output") {
		req.OutputPath = scanOutputPath
	}
	if scanJSON || cfg.Output.Format == "json" {
		req.OutputFormat = domain.OutputFormatJSON
	}
	return req
}
