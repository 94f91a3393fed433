package rules

import (
	"testing"

	"github.com/ludo-technologies/tsindex/domain"
)

func mustRule(t *testing.T, spec Spec) domain.Rule {
	t.Helper()
	ctor, ok := constructors[spec.Type]
	if !ok {
		t.Fatalf("rule type %q not registered", spec.Type)
	}
	rule, err := ctor(spec)
	if err != nil {
		t.Fatalf("constructor(%+v) = %v", spec, err)
	}
	return rule
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"src/**", "src/a.ts", true},
		{"src/**", "src/deep/b.ts", true},
		{"src/**", "srcx/a.ts", false},
		{"src", "src/a.ts", true},
		{"src", "src", true},
		{"src/*.ts", "src/a.ts", true},
		{"src/*.ts", "src/deep/b.ts", false},
		{"*.py", "run.py", true},
		{"", "src/a.ts", false},
	}
	for _, tt := range tests {
		if got := matchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/a.test.ts", true},
		{"src/a.spec.js", true},
		{"src/__tests__/a.ts", true},
		{"tests/helper.py", true},
		{"tools/test_gen.py", true},
		{"pkg/store_test.py", true},
		{"src/a.ts", false},
		{"src/testing.ts", false},
	}
	for _, tt := range tests {
		if got := isTestFile(tt.path); got != tt.want {
			t.Errorf("isTestFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCoverageRule(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "src/covered.ts", HasTests: true},
			{Path: "src/bare.ts"},
			{Path: "src/bare.test.ts"},
			{Path: "docs/readme.md"},
		},
	}

	rule := mustRule(t, Spec{
		Name: "cov", Type: "coverage", Severity: "error",
		Pattern: "src/**", RequiredCoverage: 80,
	})
	violations := rule.Evaluate(snap)

	if len(violations) != 1 {
		t.Fatalf("Evaluate() = %+v, want exactly the untested file", violations)
	}
	v := violations[0]
	if v.FilePath != "src/bare.ts" || v.Severity != domain.SeverityError {
		t.Errorf("violation = %+v", v)
	}
	if v.Metadata["required_coverage"] != "80" {
		t.Errorf("Metadata = %v, want required_coverage=80", v.Metadata)
	}
}

func TestOrphanExportRule(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "api/a.ts"},
			{Path: "ui/b.ts"},
		},
		Imports: []domain.ImportRecord{
			{Path: "ui/b.ts", Target: "../api/a", Symbol: "used"},
		},
		Exports: []domain.ExportRecord{
			{Path: "api/a.ts", Symbol: "used", ExportKind: domain.ExportKindValue},
			{Path: "api/a.ts", Symbol: "orphan", ExportKind: domain.ExportKindValue},
		},
	}

	violations := mustRule(t, Spec{Name: "orphans", Type: "orphan-export"}).Evaluate(snap)
	if len(violations) != 1 {
		t.Fatalf("Evaluate() = %+v, want exactly one orphan", violations)
	}
	if violations[0].Metadata["symbol"] != "orphan" {
		t.Errorf("violation = %+v, want the orphan symbol", violations[0])
	}
}

func TestOrphanExportRuleDefaultConsumption(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "api/main.ts"},
			{Path: "ui/app.ts"},
		},
		Imports: []domain.ImportRecord{
			{Path: "ui/app.ts", Target: "../api/main", Symbol: "default"},
		},
		Exports: []domain.ExportRecord{
			// A named default export is consumed through "default".
			{Path: "api/main.ts", Symbol: "main", ExportKind: domain.ExportKindDefault},
		},
	}

	violations := mustRule(t, Spec{Name: "orphans", Type: "orphan-export"}).Evaluate(snap)
	if len(violations) != 0 {
		t.Errorf("Evaluate() = %+v, default import should consume the default export", violations)
	}
}

func TestNamingRule(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "hooks/useCart.ts"},
			{Path: "hooks/cart.ts"},
			{Path: "lib/helpers.ts"},
		},
	}

	rule := mustRule(t, Spec{Name: "hook-names", Type: "naming", RoleDir: "hooks", Prefix: "use"})
	violations := rule.Evaluate(snap)
	if len(violations) != 1 || violations[0].FilePath != "hooks/cart.ts" {
		t.Errorf("Evaluate() = %+v, want only hooks/cart.ts", violations)
	}

	// Suffix variant checks the base name without extension.
	rule = mustRule(t, Spec{Name: "svc-names", Type: "naming", RoleDir: "lib", Suffix: "Service"})
	violations = rule.Evaluate(snap)
	if len(violations) != 1 || violations[0].FilePath != "lib/helpers.ts" {
		t.Errorf("Evaluate() = %+v, want only lib/helpers.ts", violations)
	}
}

func TestTypeLocationRule(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "src/types/api.ts"},
			{Path: "src/views/page.ts"},
		},
		Types: []domain.TypeRecord{
			{Path: "src/types/api.ts", Name: "Response", TypeKind: domain.TypeKindInterface},
			{Path: "src/views/page.ts", Name: "Props", TypeKind: domain.TypeKindInterface},
		},
	}

	rule := mustRule(t, Spec{Name: "types-home", Type: "type-location", TypesDir: "src/types"})
	violations := rule.Evaluate(snap)
	if len(violations) != 1 || violations[0].Metadata["name"] != "Props" {
		t.Errorf("Evaluate() = %+v, want only the misplaced Props", violations)
	}
}

func TestImportBoundaryRule(t *testing.T) {
	snap := &domain.Snapshot{
		Files: []domain.FileRecord{
			{Path: "components/widget.ts"},
			{Path: "lib/api.ts"},
		},
		Imports: []domain.ImportRecord{
			{Path: "components/widget.ts", Target: "https://cdn.example.com/lib.js"},
			{Path: "components/widget.ts", Target: "https://cdn.example.com/lib.js"},
			{Path: "components/widget.ts", Target: "//unpkg.com/pkg"},
			{Path: "components/widget.ts", Target: "https://api.internal.example.com/v1"},
			{Path: "components/widget.ts", Target: "./local"},
			{Path: "lib/api.ts", Target: "https://cdn.example.com/lib.js"},
		},
	}

	rule := mustRule(t, Spec{
		Name: "no-cdn", Type: "import-boundary", RoleDir: "components",
		AllowedPrefixes: []string{"https://api.internal.example.com"},
	})
	violations := rule.Evaluate(snap)

	// Duplicate targets collapse to one violation; the allowed prefix, the
	// relative import, and imports outside the role dir are ignored.
	if len(violations) != 2 {
		t.Fatalf("Evaluate() = %+v, want 2 violations", violations)
	}
	targets := map[string]bool{}
	for _, v := range violations {
		targets[v.Metadata["target"]] = true
	}
	if !targets["https://cdn.example.com/lib.js"] || !targets["//unpkg.com/pkg"] {
		t.Errorf("violation targets = %v", targets)
	}
}
