package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/tsindex/app"
	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/service"
)

var (
	queryKind     string
	queryField    string
	queryEquals   string
	queryContains string
	queryMatch    string
	queryCountBy  string
	queryJSON     bool
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <index>",
		Short: "Filter and aggregate records of a persisted index",
		Long: `Run a filter or aggregation over a persisted index.

At most one of --equals, --contains and --match applies, each against the
field named by --field. --count-by switches to aggregation: matching
records are grouped by the named field and counted.

Examples:
  # All exported symbols
  tsindex query .tsindex --kind EXPORT

  # Async methods of one class
  tsindex query .tsindex --kind METHOD --field class --equals OrderService

  # Files per language
  tsindex query .tsindex --kind FILE --count-by language

  # Imports of anything under src/api
  tsindex query .tsindex --kind IMPORT --field target --match '^\.\./api/'`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVarP(&queryKind, "kind", "k", "",
		"Record kind: FILE, IMPORT, EXPORT, TYPE, CLASS, METHOD, FUNC, ERROR")
	cmd.Flags().StringVarP(&queryField, "field", "f", "",
		"Field the value predicate applies to")
	cmd.Flags().StringVar(&queryEquals, "equals", "",
		"Exact field value")
	cmd.Flags().StringVar(&queryContains, "contains", "",
		"Substring of the field value")
	cmd.Flags().StringVarP(&queryMatch, "match", "m", "",
		"Regular expression over the field value")
	cmd.Flags().StringVar(&queryCountBy, "count-by", "",
		"Group matching records by this field and count")
	cmd.Flags().BoolVar(&queryJSON, "json", false,
		"Output the result as JSON")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	format := domain.OutputFormatText
	if queryJSON {
		format = domain.OutputFormatJSON
	}

	uc := app.NewQueryUseCase(service.NewQueryService())
	err := uc.Execute(cmd.Context(), domain.QueryRequest{
		IndexPath:    args[0],
		Kind:         domain.RecordKind(queryKind),
		Field:        queryField,
		Equals:       queryEquals,
		Contains:     queryContains,
		Match:        queryMatch,
		CountBy:      queryCountBy,
		OutputFormat: format,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}
