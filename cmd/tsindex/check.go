package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/tsindex/app"
	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/config"
	"github.com/ludo-technologies/tsindex/service"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkRulesPath  string
	checkJSON       bool
	checkConfigPath string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <index>",
		Short: "Evaluate convention rules against a persisted index",
		Long: `Load a persisted index and evaluate the configured compliance rules.

Violations are advisory: they are reported but never change the exit code,
so the command composes into pipelines that treat conventions as warnings.

Exit codes:
  0 - Check completed (violations, if any, are in the report)
  2 - Fatal error (unreadable index, bad rules file)

Examples:
  # Rules from the discovered tsindex.yaml
  tsindex check .tsindex

  # Standalone rules file
  tsindex check .tsindex --rules conventions.yaml

  # JSON report for machine parsing
  tsindex check .tsindex --json`,
		RunE:          runCheckCmd,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVarP(&checkRulesPath, "rules", "r", "",
		"Path to a standalone rules file")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output the report as JSON")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &CheckExitError{Code: 2, Message: "expected exactly one index file argument"}
	}
	indexPath := args[0]

	cfg, err := config.LoadConfigWithTarget(checkConfigPath, indexPath)
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	format := domain.OutputFormatText
	if checkJSON || cfg.Output.Format == "json" {
		format = domain.OutputFormatJSON
	}

	uc := app.NewCheckUseCase(service.NewCheckService(cfg.Rules))
	_, err = uc.Execute(cmd.Context(), domain.CheckRequest{
		IndexPath:    indexPath,
		RulesPath:    checkRulesPath,
		OutputFormat: format,
	})
	if err != nil {
		return &CheckExitError{Code: 2, Message: err.Error()}
	}
	return nil
}
