package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RecordKind identifies the type of an index record. The values double as
// the leading tag of the serialized line format.
type RecordKind string

const (
	KindFile     RecordKind = "FILE"
	KindImport   RecordKind = "IMPORT"
	KindExport   RecordKind = "EXPORT"
	KindType     RecordKind = "TYPE"
	KindClass    RecordKind = "CLASS"
	KindMethod   RecordKind = "METHOD"
	KindFunction RecordKind = "FUNC"
	KindError    RecordKind = "ERROR"
)

// Language is the language tag attached to a FileRecord. It is a pure
// function of the file extension and is re-derived on deserialization
// rather than persisted.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageUnknown    Language = "unknown"
)

// LanguageForPath derives the language tag from a file path.
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	case ".py":
		return LanguagePython
	default:
		return LanguageUnknown
	}
}

// ExportKind classifies an exported symbol.
type ExportKind string

const (
	ExportKindValue   ExportKind = "value"
	ExportKindType    ExportKind = "type"
	ExportKindDefault ExportKind = "default"
)

// TypeKind classifies a type declaration.
type TypeKind string

const (
	TypeKindInterface TypeKind = "interface"
	TypeKindAlias     TypeKind = "alias"
	TypeKindEnum      TypeKind = "enum"
	TypeKindStruct    TypeKind = "struct"
)

// Record is the common view over all index record types, used by the query
// engine and the serializer. FilePath is the join key across record kinds.
type Record interface {
	Kind() RecordKind
	FilePath() string

	// Field returns the value of a named field as a string, and whether
	// the field exists for this record kind.
	Field(name string) (string, bool)

	// FieldNames lists the queryable fields of this record kind.
	FieldNames() []string
}

// FileRecord describes one scanned file. Path is root-relative and unique
// within a Snapshot.
type FileRecord struct {
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	HasTests bool     `json:"has_tests"`
	Language Language `json:"language"`
}

func (r FileRecord) Kind() RecordKind { return KindFile }
func (r FileRecord) FilePath() string { return r.Path }

func (r FileRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "size":
		return strconv.FormatInt(r.Size, 10), true
	case "has_tests":
		return strconv.FormatBool(r.HasTests), true
	case "language":
		return string(r.Language), true
	}
	return "", false
}

func (r FileRecord) FieldNames() []string {
	return []string{"path", "size", "has_tests", "language"}
}

// ImportRecord describes one imported symbol (or a bare module import when
// Symbol is empty) in the owning file. Order within a file is the order of
// discovery.
type ImportRecord struct {
	Path   string `json:"path"`
	Target string `json:"target"`
	Symbol string `json:"symbol,omitempty"`
}

func (r ImportRecord) Kind() RecordKind { return KindImport }
func (r ImportRecord) FilePath() string { return r.Path }

func (r ImportRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "target":
		return r.Target, true
	case "symbol":
		return r.Symbol, true
	}
	return "", false
}

func (r ImportRecord) FieldNames() []string {
	return []string{"path", "target", "symbol"}
}

// ExportRecord describes one exported symbol of the owning file.
type ExportRecord struct {
	Path       string     `json:"path"`
	Symbol     string     `json:"symbol"`
	ExportKind ExportKind `json:"kind"`
}

func (r ExportRecord) Kind() RecordKind { return KindExport }
func (r ExportRecord) FilePath() string { return r.Path }

func (r ExportRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "symbol":
		return r.Symbol, true
	case "kind":
		return string(r.ExportKind), true
	}
	return "", false
}

func (r ExportRecord) FieldNames() []string {
	return []string{"path", "symbol", "kind"}
}

// TypeRecord describes a named type declaration (interface, alias, enum or
// struct) in the owning file.
type TypeRecord struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	TypeKind   TypeKind `json:"kind"`
	IsExported bool     `json:"is_exported"`
}

func (r TypeRecord) Kind() RecordKind { return KindType }
func (r TypeRecord) FilePath() string { return r.Path }

func (r TypeRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "name":
		return r.Name, true
	case "kind":
		return string(r.TypeKind), true
	case "is_exported":
		return strconv.FormatBool(r.IsExported), true
	}
	return "", false
}

func (r TypeRecord) FieldNames() []string {
	return []string{"path", "name", "kind", "is_exported"}
}

// ClassRecord describes a class declaration in the owning file.
type ClassRecord struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	IsExported bool   `json:"is_exported"`
}

func (r ClassRecord) Kind() RecordKind { return KindClass }
func (r ClassRecord) FilePath() string { return r.Path }

func (r ClassRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "name":
		return r.Name, true
	case "is_exported":
		return strconv.FormatBool(r.IsExported), true
	}
	return "", false
}

func (r ClassRecord) FieldNames() []string {
	return []string{"path", "name", "is_exported"}
}

// MethodRecord describes a method of a class declared in the same file.
type MethodRecord struct {
	Path      string `json:"path"`
	ClassName string `json:"class"`
	Name      string `json:"name"`
	IsAsync   bool   `json:"is_async"`
}

func (r MethodRecord) Kind() RecordKind { return KindMethod }
func (r MethodRecord) FilePath() string { return r.Path }

func (r MethodRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "class":
		return r.ClassName, true
	case "name":
		return r.Name, true
	case "is_async":
		return strconv.FormatBool(r.IsAsync), true
	}
	return "", false
}

func (r MethodRecord) FieldNames() []string {
	return []string{"path", "class", "name", "is_async"}
}

// FunctionRecord describes a standalone function in the owning file.
type FunctionRecord struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	IsAsync    bool   `json:"is_async"`
	IsExported bool   `json:"is_exported"`
}

func (r FunctionRecord) Kind() RecordKind { return KindFunction }
func (r FunctionRecord) FilePath() string { return r.Path }

func (r FunctionRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "name":
		return r.Name, true
	case "is_async":
		return strconv.FormatBool(r.IsAsync), true
	case "is_exported":
		return strconv.FormatBool(r.IsExported), true
	}
	return "", false
}

func (r FunctionRecord) FieldNames() []string {
	return []string{"path", "name", "is_async", "is_exported"}
}

// ErrorRecord marks a file whose extraction was incomplete (read failure or
// parse failure). The file still has a FileRecord; the error record is what
// distinguishes a partial entry from a fully parsed one.
type ErrorRecord struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (r ErrorRecord) Kind() RecordKind { return KindError }
func (r ErrorRecord) FilePath() string { return r.Path }

func (r ErrorRecord) Field(name string) (string, bool) {
	switch name {
	case "path":
		return r.Path, true
	case "message":
		return r.Message, true
	}
	return "", false
}

func (r ErrorRecord) FieldNames() []string {
	return []string{"path", "message"}
}

// Snapshot is one complete structural index of a source tree at a point in
// time. It is immutable once built: components replace Snapshots wholesale,
// never patch them, so a Snapshot is safe for concurrent readers.
type Snapshot struct {
	Root        string    `json:"root"`
	GeneratedAt time.Time `json:"generated_at"`

	Files     []FileRecord     `json:"files"`
	Imports   []ImportRecord   `json:"imports,omitempty"`
	Exports   []ExportRecord   `json:"exports,omitempty"`
	Types     []TypeRecord     `json:"types,omitempty"`
	Classes   []ClassRecord    `json:"classes,omitempty"`
	Methods   []MethodRecord   `json:"methods,omitempty"`
	Functions []FunctionRecord `json:"functions,omitempty"`
	Errors    []ErrorRecord    `json:"errors,omitempty"`
}

// FileCount returns the number of scanned files.
func (s *Snapshot) FileCount() int { return len(s.Files) }

// RecordCount returns the total number of records of all kinds.
func (s *Snapshot) RecordCount() int {
	return len(s.Files) + len(s.Imports) + len(s.Exports) + len(s.Types) +
		len(s.Classes) + len(s.Methods) + len(s.Functions) + len(s.Errors)
}

// HasFile reports whether path has a FileRecord in this Snapshot.
func (s *Snapshot) HasFile(path string) bool {
	for _, f := range s.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// IsIncomplete reports whether path carries an extraction error record.
func (s *Snapshot) IsIncomplete(path string) bool {
	for _, e := range s.Errors {
		if e.Path == path {
			return true
		}
	}
	return false
}

// IncompleteCount returns the number of files with extraction errors.
func (s *Snapshot) IncompleteCount() int {
	seen := make(map[string]bool, len(s.Errors))
	for _, e := range s.Errors {
		seen[e.Path] = true
	}
	return len(seen)
}

// Records returns all records in canonical order: files sorted by path,
// and for each file its dependent records in discovery order, grouped as
// FILE, IMPORT, EXPORT, TYPE, CLASS (each class followed by its methods),
// FUNC, ERROR. Every record appears exactly once: when a class name is
// declared more than once in a file, its methods follow the first
// occurrence, and methods whose class has no record (incomplete files)
// follow the class group. The order is fully determined by the record set,
// so two record-set-equal Snapshots yield identical sequences.
func (s *Snapshot) Records() []Record {
	records := make([]Record, 0, s.RecordCount())
	for _, f := range s.Files {
		records = append(records, f)
		for _, r := range s.Imports {
			if r.Path == f.Path {
				records = append(records, r)
			}
		}
		for _, r := range s.Exports {
			if r.Path == f.Path {
				records = append(records, r)
			}
		}
		for _, r := range s.Types {
			if r.Path == f.Path {
				records = append(records, r)
			}
		}
		classSeen := make(map[string]bool)
		for _, c := range s.Classes {
			if c.Path != f.Path {
				continue
			}
			records = append(records, c)
			if classSeen[c.Name] {
				continue
			}
			classSeen[c.Name] = true
			for _, m := range s.Methods {
				if m.Path == f.Path && m.ClassName == c.Name {
					records = append(records, m)
				}
			}
		}
		for _, m := range s.Methods {
			if m.Path == f.Path && !classSeen[m.ClassName] {
				records = append(records, m)
			}
		}
		for _, r := range s.Functions {
			if r.Path == f.Path {
				records = append(records, r)
			}
		}
		for _, r := range s.Errors {
			if r.Path == f.Path {
				records = append(records, r)
			}
		}
	}
	return records
}

// Validate checks the Snapshot invariants: unique file paths, referential
// integrity of every dependent record's owning path, and method-to-class
// consistency for files that parsed cleanly. A violation means the index
// is unreliable and is returned as an *IndexError.
func (s *Snapshot) Validate() error {
	paths := make(map[string]bool, len(s.Files))
	for _, f := range s.Files {
		if paths[f.Path] {
			return &IndexError{Reason: fmt.Sprintf("duplicate file path %q", f.Path)}
		}
		paths[f.Path] = true
	}

	check := func(kind RecordKind, path string) error {
		if !paths[path] {
			return &IndexError{Reason: fmt.Sprintf("%s record references unknown file %q", kind, path)}
		}
		return nil
	}
	for _, r := range s.Imports {
		if err := check(KindImport, r.Path); err != nil {
			return err
		}
	}
	for _, r := range s.Exports {
		if err := check(KindExport, r.Path); err != nil {
			return err
		}
	}
	for _, r := range s.Types {
		if err := check(KindType, r.Path); err != nil {
			return err
		}
	}
	for _, r := range s.Classes {
		if err := check(KindClass, r.Path); err != nil {
			return err
		}
	}
	for _, r := range s.Functions {
		if err := check(KindFunction, r.Path); err != nil {
			return err
		}
	}
	for _, r := range s.Errors {
		if err := check(KindError, r.Path); err != nil {
			return err
		}
	}

	classes := make(map[string]bool)
	for _, c := range s.Classes {
		classes[c.Path+"\x00"+c.Name] = true
	}
	for _, m := range s.Methods {
		if err := check(KindMethod, m.Path); err != nil {
			return err
		}
		if !classes[m.Path+"\x00"+m.ClassName] && !s.IsIncomplete(m.Path) {
			return &IndexError{Reason: fmt.Sprintf(
				"method %s.%s in %q has no matching class record", m.ClassName, m.Name, m.Path)}
		}
	}
	return nil
}

// Normalize sorts every record slice into canonical order: lexicographic by
// path, stable within a file so that discovery order is preserved. The index
// builder and the deserializer call this before handing a Snapshot out.
func (s *Snapshot) Normalize() {
	sort.SliceStable(s.Files, func(i, j int) bool { return s.Files[i].Path < s.Files[j].Path })
	sort.SliceStable(s.Imports, func(i, j int) bool { return s.Imports[i].Path < s.Imports[j].Path })
	sort.SliceStable(s.Exports, func(i, j int) bool { return s.Exports[i].Path < s.Exports[j].Path })
	sort.SliceStable(s.Types, func(i, j int) bool { return s.Types[i].Path < s.Types[j].Path })
	sort.SliceStable(s.Classes, func(i, j int) bool { return s.Classes[i].Path < s.Classes[j].Path })
	sort.SliceStable(s.Methods, func(i, j int) bool { return s.Methods[i].Path < s.Methods[j].Path })
	sort.SliceStable(s.Functions, func(i, j int) bool { return s.Functions[i].Path < s.Functions[j].Path })
	sort.SliceStable(s.Errors, func(i, j int) bool { return s.Errors[i].Path < s.Errors[j].Path })
}
