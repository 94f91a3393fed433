// Package config holds the tsindex configuration model: scan settings, the
// rule list for compliance checks, and output preferences. Configuration is
// discovered upward from the scan target, then in XDG locations, and every
// load goes through a fresh viper instance to avoid shared state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/tsindex/internal/rules"
)

// Default scan limits.
const (
	// DefaultMaxFileSize is the byte-size cutoff above which files are
	// skipped. Large files are almost always generated bundles.
	DefaultMaxFileSize = 1 << 20

	// DefaultWorkers of 0 sizes the extraction pool to available CPUs.
	DefaultWorkers = 0
)

// Config represents the main configuration structure.
type Config struct {
	// Scan holds walker and extractor configuration.
	Scan ScanConfig `json:"scan" mapstructure:"scan" yaml:"scan"`

	// Rules is the ordered compliance rule list for `check`.
	Rules []rules.Spec `json:"rules,omitempty" mapstructure:"rules" yaml:"rules,omitempty"`

	// Output holds output formatting configuration.
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// ScanConfig holds configuration for the scan pipeline.
type ScanConfig struct {
	// IncludeExtensions lists the file extensions to index, dot included.
	IncludeExtensions []string `json:"include_extensions" mapstructure:"include_extensions" yaml:"include_extensions"`

	// ExcludeDirs lists directory-name globs pruned during the walk.
	ExcludeDirs []string `json:"exclude_dirs" mapstructure:"exclude_dirs" yaml:"exclude_dirs"`

	// MaxFileSize is the byte-size cutoff; 0 means no limit.
	MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size" yaml:"max_file_size"`

	// UseGitignore additionally excludes paths matched by the root's
	// .gitignore file.
	UseGitignore bool `json:"use_gitignore" mapstructure:"use_gitignore" yaml:"use_gitignore"`

	// TestPatterns are the test-file naming conventions probed for
	// has_tests. Placeholders: {dir} {base} {ext} {name}.
	TestPatterns []string `json:"test_patterns" mapstructure:"test_patterns" yaml:"test_patterns"`

	// Workers bounds the extraction pool; 0 means available CPUs.
	Workers int `json:"workers" mapstructure:"workers" yaml:"workers"`
}

// OutputConfig holds configuration for output formatting.
type OutputConfig struct {
	// Format specifies the output format: text, json.
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// Path is the index output path for scan; empty writes to stdout.
	Path string `json:"path" mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IncludeExtensions: []string{
				".js", ".jsx", ".mjs", ".cjs",
				".ts", ".tsx", ".mts", ".cts",
				".py",
			},
			ExcludeDirs: []string{
				// Package managers and dependencies
				"node_modules",
				"vendor",
				// Build outputs
				"dist",
				"build",
				"out",
				".output",
				// Framework-specific
				".next",
				".nuxt",
				".vercel",
				// Cache directories
				".cache",
				".turbo",
				"coverage",
				"__pycache__",
				".mypy_cache",
				".pytest_cache",
				// Virtual environments
				".venv",
				"venv",
				".tox",
				// Version control
				".git",
			},
			MaxFileSize:  DefaultMaxFileSize,
			UseGitignore: false,
			TestPatterns: nil, // extractor defaults apply
			Workers:      DefaultWorkers,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file or returns the default config.
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context: when no
// explicit path is given, discovery starts at the scan target.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A new viper instance per load avoids race conditions.
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return config, nil
}

// searchConfigInDirectory searches for configuration files in one directory.
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common
// locations, searching upward from targetPath first.
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"tsindex.yaml",
		"tsindex.yml",
		".tsindex.yaml",
		".tsindex.yml",
		"tsindex.json",
		".tsindex.json",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			// Search from target directory up to the filesystem root.
			// Volume handling covers Windows roots (C:\, UNC shares).
			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}
				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "tsindex"), candidates); config != "" {
			return config
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "tsindex")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv("TSINDEX_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}
	return ""
}

// Validate validates the configuration values. Rule specs validate
// themselves when constructed; only the shared shape is checked here.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Scan,
		validation.Field(&c.Scan.IncludeExtensions, validation.Required),
		validation.Field(&c.Scan.MaxFileSize, validation.Min(0)),
		validation.Field(&c.Scan.Workers, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	for _, ext := range c.Scan.IncludeExtensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("scan.include_extensions entry %q must start with a dot", ext)
		}
	}

	if err := validation.ValidateStruct(&c.Output,
		validation.Field(&c.Output.Format, validation.Required, validation.In("text", "json")),
	); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	for i, spec := range c.Rules {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("rules[%d] (%s): %w", i, spec.Name, err)
		}
	}
	return nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("scan", config.Scan)
	v.Set("rules", config.Rules)
	v.Set("output", config.Output)

	return v.WriteConfig()
}
