// Package serializer renders Snapshots to the persisted index format and
// parses them back. The format is line-oriented: one record per line,
// pipe-delimited, kind tag first, so external line-oriented tools can
// filter an index without the query engine. Round-trip fidelity is a
// correctness contract: deserializing a serialized Snapshot reconstructs a
// record-set-equal Snapshot.
package serializer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ludo-technologies/tsindex/domain"
)

// Delimiter separates record fields. Field values containing it are
// escaped, never truncated.
const Delimiter = '|'

// Serializer implements domain.SnapshotWriter and domain.SnapshotReader.
type Serializer struct{}

// New creates a Serializer.
func New() *Serializer { return &Serializer{} }

// Write renders the Snapshot: a commented header followed by all records in
// canonical order.
func (s *Serializer) Write(w io.Writer, snap *domain.Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# tsindex index\n")
	fmt.Fprintf(bw, "# Root: %s\n", snap.Root)
	fmt.Fprintf(bw, "# Files: %d | Records: %d\n", snap.FileCount(), snap.RecordCount())
	fmt.Fprintf(bw, "# Generated: %s\n", snap.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "# Format: FILE|path|size|has_tests\n")
	fmt.Fprintf(bw, "#   IMPORT|path|target[|symbol]\n")
	fmt.Fprintf(bw, "#   EXPORT|path|symbol|kind\n")
	fmt.Fprintf(bw, "#   TYPE|path|name|kind|is_exported\n")
	fmt.Fprintf(bw, "#   CLASS|path|name|is_exported\n")
	fmt.Fprintf(bw, "#   METHOD|path|class|name|is_async\n")
	fmt.Fprintf(bw, "#   FUNC|path|name|is_async|is_exported\n")
	fmt.Fprintf(bw, "#   ERROR|path|message\n")
	fmt.Fprintf(bw, "# ---\n")

	for _, record := range snap.Records() {
		if _, err := bw.WriteString(formatRecord(record)); err != nil {
			return &domain.SerializationError{Err: err}
		}
	}

	if err := bw.Flush(); err != nil {
		return &domain.SerializationError{Err: err}
	}
	return nil
}

// WriteFile persists the Snapshot to path. An unwritable path is a fatal
// *domain.SerializationError.
func (s *Serializer) WriteFile(path string, snap *domain.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return &domain.SerializationError{Path: path, Err: err}
	}
	writeErr := s.Write(f, snap)
	if closeErr := f.Close(); writeErr == nil && closeErr != nil {
		writeErr = &domain.SerializationError{Path: path, Err: closeErr}
	}
	return writeErr
}

// Read parses a persisted index. Header lines are skipped by the record
// model; root and generation time are recovered from them when present.
// The parsed Snapshot is validated against the index invariants.
func (s *Serializer) Read(r io.Reader) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			readHeaderLine(line, snap)
			continue
		}
		if err := parseRecord(line, snap); err != nil {
			return nil, &domain.SerializationError{Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.SerializationError{Err: err}
	}

	snap.Normalize()
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// ReadFile parses the index at path.
func (s *Serializer) ReadFile(path string) (*domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.SerializationError{Path: path, Err: err}
	}
	defer f.Close()

	snap, err := s.Read(f)
	if err != nil {
		var serErr *domain.SerializationError
		if ok := asSerialization(err, &serErr); ok && serErr.Path == "" {
			serErr.Path = path
		}
		return nil, err
	}
	return snap, nil
}

func asSerialization(err error, target **domain.SerializationError) bool {
	if e, ok := err.(*domain.SerializationError); ok {
		*target = e
		return true
	}
	return false
}

func formatRecord(record domain.Record) string {
	var fields []string
	switch r := record.(type) {
	case domain.FileRecord:
		fields = []string{r.Path, strconv.FormatInt(r.Size, 10), strconv.FormatBool(r.HasTests)}
	case domain.ImportRecord:
		fields = []string{r.Path, r.Target}
		if r.Symbol != "" {
			fields = append(fields, r.Symbol)
		}
	case domain.ExportRecord:
		fields = []string{r.Path, r.Symbol, string(r.ExportKind)}
	case domain.TypeRecord:
		fields = []string{r.Path, r.Name, string(r.TypeKind), formatFlag(r.IsExported)}
	case domain.ClassRecord:
		fields = []string{r.Path, r.Name, formatFlag(r.IsExported)}
	case domain.MethodRecord:
		fields = []string{r.Path, r.ClassName, r.Name, formatFlag(r.IsAsync)}
	case domain.FunctionRecord:
		fields = []string{r.Path, r.Name, formatFlag(r.IsAsync), formatFlag(r.IsExported)}
	case domain.ErrorRecord:
		fields = []string{r.Path, r.Message}
	}

	var sb strings.Builder
	sb.WriteString(string(record.Kind()))
	for _, field := range fields {
		sb.WriteByte(Delimiter)
		sb.WriteString(escape(field))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func parseRecord(line string, snap *domain.Snapshot) error {
	fields, err := splitFields(line)
	if err != nil {
		return err
	}
	tag := domain.RecordKind(fields[0])
	args := fields[1:]

	switch tag {
	case domain.KindFile:
		if len(args) != 3 {
			return fmt.Errorf("FILE record has %d fields, want 3", len(args))
		}
		size, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("FILE size %q: %w", args[1], err)
		}
		hasTests, err := strconv.ParseBool(args[2])
		if err != nil {
			return fmt.Errorf("FILE has_tests %q: %w", args[2], err)
		}
		snap.Files = append(snap.Files, domain.FileRecord{
			Path:     args[0],
			Size:     size,
			HasTests: hasTests,
			Language: domain.LanguageForPath(args[0]),
		})

	case domain.KindImport:
		if len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("IMPORT record has %d fields, want 2 or 3", len(args))
		}
		record := domain.ImportRecord{Path: args[0], Target: args[1]}
		if len(args) == 3 {
			record.Symbol = args[2]
		}
		snap.Imports = append(snap.Imports, record)

	case domain.KindExport:
		if len(args) != 3 {
			return fmt.Errorf("EXPORT record has %d fields, want 3", len(args))
		}
		snap.Exports = append(snap.Exports, domain.ExportRecord{
			Path: args[0], Symbol: args[1], ExportKind: domain.ExportKind(args[2]),
		})

	case domain.KindType:
		if len(args) != 4 {
			return fmt.Errorf("TYPE record has %d fields, want 4", len(args))
		}
		exported, err := parseFlag(args[3])
		if err != nil {
			return fmt.Errorf("TYPE is_exported: %w", err)
		}
		snap.Types = append(snap.Types, domain.TypeRecord{
			Path: args[0], Name: args[1], TypeKind: domain.TypeKind(args[2]), IsExported: exported,
		})

	case domain.KindClass:
		if len(args) != 3 {
			return fmt.Errorf("CLASS record has %d fields, want 3", len(args))
		}
		exported, err := parseFlag(args[2])
		if err != nil {
			return fmt.Errorf("CLASS is_exported: %w", err)
		}
		snap.Classes = append(snap.Classes, domain.ClassRecord{
			Path: args[0], Name: args[1], IsExported: exported,
		})

	case domain.KindMethod:
		if len(args) != 4 {
			return fmt.Errorf("METHOD record has %d fields, want 4", len(args))
		}
		async, err := parseFlag(args[3])
		if err != nil {
			return fmt.Errorf("METHOD is_async: %w", err)
		}
		snap.Methods = append(snap.Methods, domain.MethodRecord{
			Path: args[0], ClassName: args[1], Name: args[2], IsAsync: async,
		})

	case domain.KindFunction:
		if len(args) != 4 {
			return fmt.Errorf("FUNC record has %d fields, want 4", len(args))
		}
		async, err := parseFlag(args[2])
		if err != nil {
			return fmt.Errorf("FUNC is_async: %w", err)
		}
		exported, err := parseFlag(args[3])
		if err != nil {
			return fmt.Errorf("FUNC is_exported: %w", err)
		}
		snap.Functions = append(snap.Functions, domain.FunctionRecord{
			Path: args[0], Name: args[1], IsAsync: async, IsExported: exported,
		})

	case domain.KindError:
		if len(args) != 2 {
			return fmt.Errorf("ERROR record has %d fields, want 2", len(args))
		}
		snap.Errors = append(snap.Errors, domain.ErrorRecord{Path: args[0], Message: args[1]})

	default:
		return fmt.Errorf("unknown record tag %q", fields[0])
	}
	return nil
}

func readHeaderLine(line string, snap *domain.Snapshot) {
	body := strings.TrimPrefix(line, "#")
	body = strings.TrimSpace(body)
	if root, ok := strings.CutPrefix(body, "Root: "); ok {
		snap.Root = root
		return
	}
	if generated, ok := strings.CutPrefix(body, "Generated: "); ok {
		if ts, err := time.Parse(time.RFC3339, generated); err == nil {
			snap.GeneratedAt = ts
		}
	}
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("flag %q is not 0 or 1", s)
}

// escape makes a field value safe for the line format: backslash, the
// delimiter, and newlines are backslash-escaped so no value can introduce
// field-count drift or break a line.
func escape(s string) string {
	if !strings.ContainsAny(s, "\\|\n\r") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '|':
			sb.WriteString(`\|`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// splitFields splits a record line on unescaped delimiters and unescapes
// each field. The inverse of escape.
func splitFields(line string) ([]string, error) {
	var fields []string
	var sb strings.Builder
	escaped := false
	for _, r := range line {
		if escaped {
			switch r {
			case '\\':
				sb.WriteByte('\\')
			case '|':
				sb.WriteByte('|')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			default:
				return nil, fmt.Errorf("invalid escape sequence \\%c", r)
			}
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case rune(Delimiter):
			fields = append(fields, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("dangling escape at end of line")
	}
	fields = append(fields, sb.String())
	if len(fields) < 2 {
		return nil, fmt.Errorf("record has no fields")
	}
	return fields, nil
}
