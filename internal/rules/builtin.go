package rules

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/ludo-technologies/tsindex/domain"
	"github.com/ludo-technologies/tsindex/internal/query"
)

func init() {
	Register("coverage", newCoverageRule)
	Register("orphan-export", newOrphanExportRule)
	Register("naming", newNamingRule)
	Register("type-location", newTypeLocationRule)
	Register("import-boundary", newImportBoundaryRule)
}

// matchPath matches a root-relative slash path against a rules-file pattern.
// A plain pattern (no glob metacharacters) or a "dir/**" pattern matches the
// directory and everything under it; anything else is a path.Match glob.
func matchPath(pattern, p string) bool {
	if pattern == "" {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return p == pattern || strings.HasPrefix(p, pattern+"/")
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

// underRole reports whether p lies inside the role directory.
func underRole(roleDir, p string) bool {
	roleDir = strings.TrimSuffix(roleDir, "/")
	return roleDir != "" && strings.HasPrefix(p, roleDir+"/")
}

// coverageRule flags files matching a path pattern that have no test file.
// Required coverage percentage is carried as metadata only; measuring actual
// coverage belongs to the test runner.
type coverageRule struct {
	name     string
	severity domain.Severity
	pattern  string
	required int
}

func newCoverageRule(spec Spec) (domain.Rule, error) {
	if spec.Pattern == "" {
		return nil, fmt.Errorf("coverage rule needs pattern")
	}
	return &coverageRule{
		name:     spec.Name,
		severity: spec.severity(),
		pattern:  spec.Pattern,
		required: spec.RequiredCoverage,
	}, nil
}

func (r *coverageRule) Name() string { return r.name }
func (r *coverageRule) Kinds() []domain.RecordKind {
	return []domain.RecordKind{domain.KindFile}
}

func (r *coverageRule) Evaluate(s *domain.Snapshot) []domain.Violation {
	var out []domain.Violation
	for _, f := range s.Files {
		if !matchPath(r.pattern, f.Path) || f.HasTests {
			continue
		}
		if isTestFile(f.Path) {
			continue
		}
		meta := map[string]string{"pattern": r.pattern}
		if r.required > 0 {
			meta["required_coverage"] = strconv.Itoa(r.required)
		}
		out = append(out, domain.Violation{
			Rule:     r.name,
			FilePath: f.Path,
			Message:  fmt.Sprintf("file matches %q but has no test file", r.pattern),
			Severity: r.severity,
			Metadata: meta,
		})
	}
	return out
}

// isTestFile reports whether the path follows a test-file naming
// convention. Test files are not themselves subject to coverage.
func isTestFile(p string) bool {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if strings.HasSuffix(name, ".test") || strings.HasSuffix(name, ".spec") {
		return true
	}
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(name, "_test") {
		return true
	}
	for _, dir := range strings.Split(path.Dir(p), "/") {
		if dir == "__tests__" || dir == "tests" {
			return true
		}
	}
	return false
}

// orphanExportRule flags exported symbols that no import record references.
// The check is purely static: symbols consumed through dynamic access,
// namespace imports, or external packages show up as false positives.
type orphanExportRule struct {
	name     string
	severity domain.Severity
}

func newOrphanExportRule(spec Spec) (domain.Rule, error) {
	return &orphanExportRule{name: spec.Name, severity: spec.severity()}, nil
}

func (r *orphanExportRule) Name() string { return r.name }
func (r *orphanExportRule) Kinds() []domain.RecordKind {
	return []domain.RecordKind{domain.KindExport, domain.KindImport}
}

func (r *orphanExportRule) Evaluate(s *domain.Snapshot) []domain.Violation {
	imported := query.NewEngine(s).ImportedSymbols()

	var out []domain.Violation
	for _, e := range s.Exports {
		consumed := imported[e.Symbol]
		if e.ExportKind == domain.ExportKindDefault {
			consumed = consumed || imported["default"]
		}
		if consumed {
			continue
		}
		out = append(out, domain.Violation{
			Rule:     r.name,
			FilePath: e.Path,
			Message:  fmt.Sprintf("exported symbol %q has no importer in the index", e.Symbol),
			Severity: r.severity,
			Metadata: map[string]string{"symbol": e.Symbol, "kind": string(e.ExportKind)},
		})
	}
	return out
}

// namingRule flags files under a role directory whose base name misses the
// configured prefix or suffix.
type namingRule struct {
	name     string
	severity domain.Severity
	roleDir  string
	prefix   string
	suffix   string
}

func newNamingRule(spec Spec) (domain.Rule, error) {
	if spec.RoleDir == "" {
		return nil, fmt.Errorf("naming rule needs role_dir")
	}
	if spec.Prefix == "" && spec.Suffix == "" {
		return nil, fmt.Errorf("naming rule needs prefix or suffix")
	}
	return &namingRule{
		name:     spec.Name,
		severity: spec.severity(),
		roleDir:  spec.RoleDir,
		prefix:   spec.Prefix,
		suffix:   spec.Suffix,
	}, nil
}

func (r *namingRule) Name() string { return r.name }
func (r *namingRule) Kinds() []domain.RecordKind {
	return []domain.RecordKind{domain.KindFile}
}

func (r *namingRule) Evaluate(s *domain.Snapshot) []domain.Violation {
	var out []domain.Violation
	for _, f := range s.Files {
		if !underRole(r.roleDir, f.Path) {
			continue
		}
		base := path.Base(f.Path)
		base = strings.TrimSuffix(base, path.Ext(base))

		if r.prefix != "" && !strings.HasPrefix(base, r.prefix) {
			out = append(out, domain.Violation{
				Rule:     r.name,
				FilePath: f.Path,
				Message:  fmt.Sprintf("file name %q under %s must start with %q", base, r.roleDir, r.prefix),
				Severity: r.severity,
			})
			continue
		}
		if r.suffix != "" && !strings.HasSuffix(base, r.suffix) {
			out = append(out, domain.Violation{
				Rule:     r.name,
				FilePath: f.Path,
				Message:  fmt.Sprintf("file name %q under %s must end with %q", base, r.roleDir, r.suffix),
				Severity: r.severity,
			})
		}
	}
	return out
}

// typeLocationRule flags type declarations outside the configured types
// directory.
type typeLocationRule struct {
	name     string
	severity domain.Severity
	typesDir string
}

func newTypeLocationRule(spec Spec) (domain.Rule, error) {
	if spec.TypesDir == "" {
		return nil, fmt.Errorf("type-location rule needs types_dir")
	}
	return &typeLocationRule{name: spec.Name, severity: spec.severity(), typesDir: spec.TypesDir}, nil
}

func (r *typeLocationRule) Name() string { return r.name }
func (r *typeLocationRule) Kinds() []domain.RecordKind {
	return []domain.RecordKind{domain.KindType}
}

func (r *typeLocationRule) Evaluate(s *domain.Snapshot) []domain.Violation {
	var out []domain.Violation
	for _, t := range s.Types {
		if underRole(r.typesDir, t.Path) {
			continue
		}
		out = append(out, domain.Violation{
			Rule:     r.name,
			FilePath: t.Path,
			Message:  fmt.Sprintf("type %q declared outside %s", t.Name, r.typesDir),
			Severity: r.severity,
			Metadata: map[string]string{"name": t.Name, "kind": string(t.TypeKind)},
		})
	}
	return out
}

// importBoundaryRule flags imports inside a role directory whose target is
// an external network address. Internal API prefixes are whitelisted; the
// rule encodes an architecture boundary, not a style preference.
type importBoundaryRule struct {
	name     string
	severity domain.Severity
	roleDir  string
	allowed  []string
}

func newImportBoundaryRule(spec Spec) (domain.Rule, error) {
	if spec.RoleDir == "" {
		return nil, fmt.Errorf("import-boundary rule needs role_dir")
	}
	return &importBoundaryRule{
		name:     spec.Name,
		severity: spec.severity(),
		roleDir:  spec.RoleDir,
		allowed:  spec.AllowedPrefixes,
	}, nil
}

func (r *importBoundaryRule) Name() string { return r.name }
func (r *importBoundaryRule) Kinds() []domain.RecordKind {
	return []domain.RecordKind{domain.KindImport}
}

func (r *importBoundaryRule) Evaluate(s *domain.Snapshot) []domain.Violation {
	seen := make(map[string]bool)
	var out []domain.Violation
	for _, imp := range s.Imports {
		if !underRole(r.roleDir, imp.Path) || !looksExternal(imp.Target) {
			continue
		}
		if r.isAllowed(imp.Target) {
			continue
		}
		key := imp.Path + "\x00" + imp.Target
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.Violation{
			Rule:     r.name,
			FilePath: imp.Path,
			Message:  fmt.Sprintf("import of external address %q from %s", imp.Target, r.roleDir),
			Severity: r.severity,
			Metadata: map[string]string{"target": imp.Target},
		})
	}
	return out
}

func (r *importBoundaryRule) isAllowed(target string) bool {
	for _, prefix := range r.allowed {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

func looksExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "//")
}
