package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/serializer"
)

// OutputFormatterImpl renders scan, check and query responses as text or
// JSON.
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteScan writes the scan result: the line-oriented index in text mode,
// the full response in JSON mode.
func (f *OutputFormatterImpl) WriteScan(response *domain.ScanResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatText:
		return serializer.New().Write(writer, response.Snapshot)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteScanSummary writes the human-readable scan summary. Partial success
// is reported explicitly, never hidden inside a seemingly complete index.
func (f *OutputFormatterImpl) WriteScanSummary(response *domain.ScanResponse, writer io.Writer) {
	s := response.Summary
	fmt.Fprintf(writer, "Indexed %s: %d of %d files fully parsed, %d records (%dms)\n",
		response.Snapshot.Root, s.FilesParsed, s.FilesScanned, s.RecordCount, s.DurationMs)
	if s.FilesPartial > 0 {
		fmt.Fprintf(writer, "%d file(s) indexed with errors:\n", s.FilesPartial)
		for _, path := range s.FailedPaths {
			fmt.Fprintf(writer, "  %s\n", path)
		}
	}
}

// WriteCheck writes the compliance report in the specified format.
func (f *OutputFormatterImpl) WriteCheck(response *domain.CheckResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatText:
		return f.writeCheckText(response, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *OutputFormatterImpl) writeCheckText(response *domain.CheckResponse, writer io.Writer) error {
	for _, v := range response.Violations {
		if _, err := fmt.Fprintf(writer, "%-7s %-24s %s: %s\n", v.Severity, v.Rule, v.FilePath, v.Message); err != nil {
			return err
		}
	}

	s := response.Summary
	if s.TotalViolations == 0 {
		_, err := fmt.Fprintf(writer, "No violations (%d files checked, %d rules)\n", s.FilesChecked, s.RulesEvaluated)
		return err
	}

	if _, err := fmt.Fprintf(writer, "\n%d violation(s) across %d files, %d rules evaluated\n",
		s.TotalViolations, s.FilesChecked, s.RulesEvaluated); err != nil {
		return err
	}
	for _, name := range sortedKeys(s.ByRule) {
		if _, err := fmt.Fprintf(writer, "  %s: %d\n", name, s.ByRule[name]); err != nil {
			return err
		}
	}
	return nil
}

// WriteQuery writes the query result in the specified format.
func (f *OutputFormatterImpl) WriteQuery(response *domain.QueryResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatText:
		return f.writeQueryText(response, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (f *OutputFormatterImpl) writeQueryText(response *domain.QueryResponse, writer io.Writer) error {
	if response.Counts != nil {
		for _, key := range sortedKeys(response.Counts) {
			if _, err := fmt.Fprintf(writer, "%6d  %s\n", response.Counts[key], key); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(writer, "total: %d\n", response.Total)
		return err
	}

	for _, record := range response.Records {
		line := record["record_kind"]
		for _, name := range recordFieldOrder {
			if value, ok := record[name]; ok && name != "record_kind" {
				line += "|" + value
			}
		}
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(writer, "total: %d\n", response.Total)
	return err
}

// recordFieldOrder fixes a stable field order for text query output across
// all record kinds.
var recordFieldOrder = []string{
	"path", "target", "symbol", "class", "name", "kind",
	"size", "has_tests", "language", "is_exported", "is_async", "message",
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
