package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/tsindex/internal/rules"
	"github.com/ludo-technologies/tsindex/internal/testutil"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Scan.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", cfg.Scan.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}

	hasPy := false
	for _, ext := range cfg.Scan.IncludeExtensions {
		if ext == ".py" {
			hasPy = true
		}
	}
	if !hasPy {
		t.Error("default extensions must include .py")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"custom.yaml": `scan:
  include_extensions: [".ts"]
  max_file_size: 2048
  use_gitignore: true
  workers: 4
rules:
  - name: cov
    type: coverage
    pattern: "src/**"
output:
  format: json
`,
	})

	cfg, err := LoadConfig(filepath.Join(dir, "custom.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if len(cfg.Scan.IncludeExtensions) != 1 || cfg.Scan.IncludeExtensions[0] != ".ts" {
		t.Errorf("IncludeExtensions = %v", cfg.Scan.IncludeExtensions)
	}
	if cfg.Scan.MaxFileSize != 2048 || !cfg.Scan.UseGitignore || cfg.Scan.Workers != 4 {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Name != "cov" {
		t.Errorf("Rules = %+v", cfg.Rules)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %q", cfg.Output.Format)
	}

	// Unset sections keep their defaults.
	if len(cfg.Scan.ExcludeDirs) == 0 {
		t.Error("ExcludeDirs should fall back to the defaults")
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("an explicit but missing config path must fail")
	}
}

func TestLoadConfigWithoutAnyFile(t *testing.T) {
	cfg, err := LoadConfigWithTarget("", t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigWithTarget() = %v", err)
	}
	if len(cfg.Scan.IncludeExtensions) == 0 {
		t.Error("discovery miss must return the default config")
	}
}

func TestLoadConfigDiscoversUpward(t *testing.T) {
	dir := testutil.WriteTree(t, map[string]string{
		"tsindex.yaml": `scan:
  include_extensions: [".py"]
output:
  format: text
`,
		"sub/deep/mod.py": "x = 1\n",
	})

	cfg, err := LoadConfigWithTarget("", filepath.Join(dir, "sub", "deep"))
	if err != nil {
		t.Fatalf("LoadConfigWithTarget() = %v", err)
	}
	if len(cfg.Scan.IncludeExtensions) != 1 || cfg.Scan.IncludeExtensions[0] != ".py" {
		t.Errorf("upward discovery did not pick up the root config: %+v", cfg.Scan.IncludeExtensions)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no extensions", func(c *Config) { c.Scan.IncludeExtensions = nil }},
		{"extension without dot", func(c *Config) { c.Scan.IncludeExtensions = []string{"ts"} }},
		{"negative size", func(c *Config) { c.Scan.MaxFileSize = -1 }},
		{"negative workers", func(c *Config) { c.Scan.Workers = -2 }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad rule", func(c *Config) { c.Rules = append(c.Rules, rules.Spec{Type: "coverage"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsindex.yaml")

	cfg := DefaultConfig()
	cfg.Scan.Workers = 8
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if loaded.Scan.Workers != 8 {
		t.Errorf("Workers = %d, want 8", loaded.Scan.Workers)
	}
	if len(loaded.Scan.IncludeExtensions) != len(cfg.Scan.IncludeExtensions) {
		t.Errorf("IncludeExtensions = %v", loaded.Scan.IncludeExtensions)
	}
}

func TestTemplatesAreLoadableConfigs(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"minimal.yaml": GetMinimalConfigTemplate(),
		"full.yaml":    GetFullConfigTemplate(ProjectTypeGeneric, StrictnessStandard),
		"react.yaml":   GetFullConfigTemplate(ProjectTypeReact, StrictnessStrict),
		"python.yaml":  GetFullConfigTemplate(ProjectTypePython, StrictnessRelaxed),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("template %s does not load: %v", name, err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("template %s is invalid: %v", name, err)
			}
		})
	}

	if !strings.Contains(GetFullConfigTemplate(ProjectTypeReact, StrictnessStrict), "react") {
		t.Error("react template should mention the project type in its header")
	}
}
