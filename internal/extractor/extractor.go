// Package extractor parses a file's surface declarations (imports, exports,
// types, classes, methods, functions) into index records. Extraction is
// polymorphic over source language: each supported language implements the
// same contract on top of its tree-sitter grammar, selected by file
// extension. Extraction is best-effort and non-fatal: a file that cannot be
// parsed still yields a FileRecord marked incomplete, never an omission.
package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/walker"
)

// DefaultTestPatterns are the test-file naming conventions probed for
// FileRecord.HasTests when the configuration does not override them.
// Placeholders: {dir} {base} {ext} {name}.
var DefaultTestPatterns = []string{
	"{dir}/{base}.test{ext}",
	"{dir}/{base}.spec{ext}",
	"{dir}/__tests__/{name}",
	"{dir}/__tests__/{base}.test{ext}",
	"{dir}/__tests__/{base}.spec{ext}",
	"{dir}/test_{name}",
}

// Result is the extraction outcome for a single file. Dependent record
// slices are in discovery order; the index builder imposes the canonical
// cross-file order later.
type Result struct {
	File      domain.FileRecord
	Imports   []domain.ImportRecord
	Exports   []domain.ExportRecord
	Types     []domain.TypeRecord
	Classes   []domain.ClassRecord
	Methods   []domain.MethodRecord
	Functions []domain.FunctionRecord

	// Error is non-empty when extraction was incomplete (read or parse
	// failure). The FileRecord above is still valid.
	Error string
}

// Incomplete reports whether this file's extraction failed partway.
func (r *Result) Incomplete() bool { return r.Error != "" }

// LanguageExtractor extracts dependent records from one file's source.
// Implementations must set the owning path on every record they emit.
type LanguageExtractor interface {
	Language() domain.Language
	Extract(ctx context.Context, path string, source []byte) (*Result, error)
}

// ForLanguage returns the extractor for a language tag, or nil when the
// language degrades to FileRecord-only extraction.
func ForLanguage(lang domain.Language) LanguageExtractor {
	switch lang {
	case domain.LanguageJavaScript:
		return newScriptExtractor(domain.LanguageJavaScript)
	case domain.LanguageTypeScript:
		return newScriptExtractor(domain.LanguageTypeScript)
	case domain.LanguagePython:
		return newPythonExtractor()
	default:
		return nil
	}
}

// Extractor turns walker entries into per-file extraction results.
type Extractor struct {
	testPatterns []string
}

// New creates an Extractor with the given test-file patterns. An empty
// pattern list falls back to DefaultTestPatterns.
func New(testPatterns []string) *Extractor {
	if len(testPatterns) == 0 {
		testPatterns = DefaultTestPatterns
	}
	return &Extractor{testPatterns: testPatterns}
}

// ExtractFile reads and extracts one file. Read and parse failures are
// recorded in the Result rather than returned: omitting the file would
// corrupt the completeness guarantee of the Snapshot.
func (e *Extractor) ExtractFile(ctx context.Context, entry walker.FileEntry) *Result {
	lang := domain.LanguageForPath(entry.Path)
	file := domain.FileRecord{
		Path:     entry.Path,
		Size:     entry.Size,
		HasTests: HasTests(entry.AbsPath, e.testPatterns),
		Language: lang,
	}

	source, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		readErr := &domain.FileReadError{Path: entry.Path, Err: err}
		return &Result{File: file, Error: readErr.Error()}
	}
	file.Size = int64(len(source))

	lx := ForLanguage(lang)
	if lx == nil {
		return &Result{File: file}
	}

	result, err := lx.Extract(ctx, entry.Path, source)
	if err != nil {
		parseErr := &domain.ParseError{Path: entry.Path, Cause: err.Error()}
		return &Result{File: file, Error: parseErr.Error()}
	}
	result.File = file
	return result
}

// HasTests reports whether a test file exists for absPath according to the
// given naming patterns.
func HasTests(absPath string, patterns []string) bool {
	dir := filepath.Dir(absPath)
	name := filepath.Base(absPath)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	replacer := strings.NewReplacer(
		"{dir}", dir,
		"{base}", base,
		"{ext}", ext,
		"{name}", name,
	)
	for _, pattern := range patterns {
		candidate := filepath.FromSlash(replacer.Replace(pattern))
		if candidate == absPath {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
