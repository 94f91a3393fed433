package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/tsindex/internal/rules"
)

// ProjectType represents the kind of source tree being indexed.
type ProjectType string

const (
	ProjectTypeGeneric ProjectType = "generic"
	ProjectTypeReact   ProjectType = "react"
	ProjectTypeNode    ProjectType = "node"
	ProjectTypePython  ProjectType = "python"
)

// Strictness represents how aggressive the generated rule set is.
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds scan settings for a project type.
type ProjectPreset struct {
	IncludeExtensions []string
	ExtraExcludeDirs  []string
}

// GetProjectPresets returns presets for the supported project types.
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludeExtensions: []string{
				".js", ".jsx", ".mjs", ".cjs",
				".ts", ".tsx", ".mts", ".cts",
				".py",
			},
		},
		ProjectTypeReact: {
			IncludeExtensions: []string{".js", ".jsx", ".ts", ".tsx"},
			ExtraExcludeDirs:  []string{"storybook-static", "public"},
		},
		ProjectTypeNode: {
			IncludeExtensions: []string{".js", ".mjs", ".cjs", ".ts"},
			ExtraExcludeDirs:  []string{"logs"},
		},
		ProjectTypePython: {
			IncludeExtensions: []string{".py"},
			ExtraExcludeDirs:  []string{".eggs", "site-packages"},
		},
	}
}

// GetRulePresets returns the generated rule list per strictness level. The
// specs are starting points; projects edit the written file afterwards.
func GetRulePresets() map[Strictness][]rules.Spec {
	relaxed := []rules.Spec{
		{
			Name:     "untested-sources",
			Type:     "coverage",
			Severity: "info",
			Pattern:  "src/**",
		},
	}
	standard := []rules.Spec{
		{
			Name:             "untested-sources",
			Type:             "coverage",
			Severity:         "warning",
			Pattern:          "src/**",
			RequiredCoverage: 60,
		},
		{
			Name:     "orphan-exports",
			Type:     "orphan-export",
			Severity: "info",
		},
	}
	strict := []rules.Spec{
		{
			Name:             "untested-sources",
			Type:             "coverage",
			Severity:         "error",
			Pattern:          "src/**",
			RequiredCoverage: 80,
		},
		{
			Name:     "orphan-exports",
			Type:     "orphan-export",
			Severity: "warning",
		},
		{
			Name:     "types-location",
			Type:     "type-location",
			Severity: "warning",
			TypesDir: "src/types",
		},
	}
	return map[Strictness][]rules.Spec{
		StrictnessRelaxed:  relaxed,
		StrictnessStandard: standard,
		StrictnessStrict:   strict,
	}
}

// FullTemplate is the documented configuration written by `tsindex init`.
const FullTemplate = `# tsindex configuration
# Discovered upward from the scan target; also honored from
# $XDG_CONFIG_HOME/tsindex/ and ~/.config/tsindex/.

scan:
  # File extensions to index (dot included).
  include_extensions:
    - .js
    - .jsx
    - .mjs
    - .cjs
    - .ts
    - .tsx
    - .mts
    - .cts
    - .py

  # Directory-name globs pruned entirely during the walk.
  exclude_dirs:
    - node_modules
    - vendor
    - dist
    - build
    - coverage
    - __pycache__
    - .venv
    - .git

  # Skip files larger than this many bytes. 0 disables the cutoff.
  max_file_size: 1048576

  # Also exclude paths matched by the root's .gitignore.
  use_gitignore: false

  # Test-file conventions probed for has_tests.
  # Placeholders: {dir} {base} {ext} {name}.
  test_patterns:
    - "{dir}/{base}.test{ext}"
    - "{dir}/{base}.spec{ext}"
    - "{dir}/__tests__/{name}"
    - "{dir}/test_{name}"

  # Extraction worker count. 0 means available CPUs.
  workers: 0

# Compliance rules evaluated by tsindex check, in order.
# Types: coverage, orphan-export, naming, type-location, import-boundary.
rules:
  - name: untested-sources
    type: coverage
    severity: warning
    pattern: "src/**"
    required_coverage: 60

  - name: orphan-exports
    type: orphan-export
    severity: info

  # - name: hook-naming
  #   type: naming
  #   severity: error
  #   role_dir: src/hooks
  #   prefix: use

  # - name: types-location
  #   type: type-location
  #   severity: warning
  #   types_dir: src/types

  # - name: ui-boundary
  #   type: import-boundary
  #   severity: error
  #   role_dir: src/ui
  #   allowed_prefixes: ["https://internal.", "@app/"]

output:
  # text or json
  format: text
  # Index output path for scan; empty writes to stdout.
  path: ""
`

// GetFullConfigTemplate returns the documented config for a project type
// and strictness combination. The generic/standard pair uses the curated
// template; other combinations are generated from the presets.
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	if projectType == ProjectTypeGeneric && strictness == StrictnessStandard {
		return FullTemplate
	}

	cfg := DefaultConfig()
	if preset, ok := GetProjectPresets()[projectType]; ok {
		cfg.Scan.IncludeExtensions = preset.IncludeExtensions
		cfg.Scan.ExcludeDirs = append(cfg.Scan.ExcludeDirs, preset.ExtraExcludeDirs...)
	}
	if ruleSet, ok := GetRulePresets()[strictness]; ok {
		cfg.Rules = ruleSet
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		// Marshalling a plain struct cannot realistically fail; fall back
		// to the curated template.
		return FullTemplate
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# tsindex configuration (%s project, %s rules)\n", projectType, strictness)
	sb.WriteString("# Edit the rules list to match your project's conventions.\n\n")
	sb.Write(body)
	return sb.String()
}

// GetMinimalConfigTemplate returns the minimal configuration.
func GetMinimalConfigTemplate() string {
	return MinimalTemplate
}

// MinimalTemplate is the bare configuration for projects that only want the
// defaults pinned down.
const MinimalTemplate = `# tsindex configuration
scan:
  include_extensions: [.ts, .tsx, .js, .jsx, .py]
  exclude_dirs: [node_modules, dist, build, .git, __pycache__]
output:
  format: text
`
