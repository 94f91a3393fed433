package main

import (
	"testing"

	"github.com/ludo-technologies/tsindex/internal/config"
	"github.com/spf13/cobra"
)

func findSubcommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestRootCommandWiring(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"scan", "check", "query", "init", "version"} {
		findSubcommand(t, root, name)
	}
}

func TestScanCommandFlags(t *testing.T) {
	cmd := scanCmd()
	for _, flag := range []string{"ext", "exclude", "max-file-size", "gitignore", "workers", "output", "json", "config"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("scan is missing the --%s flag", flag)
		}
	}
	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("scan must require a root argument")
	}
	if err := cmd.Args(cmd, []string{"."}); err != nil {
		t.Errorf("scan with one argument rejected: %v", err)
	}
}

func TestScanRequestFlagOverrides(t *testing.T) {
	cmd := scanCmd()
	if err := cmd.Flags().Parse([]string{"--ext", ".ts", "--workers", "2", "--gitignore"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	req := scanRequestFromConfig(cmd, cfg, ".")

	if len(req.IncludeExtensions) != 1 || req.IncludeExtensions[0] != ".ts" {
		t.Errorf("IncludeExtensions = %v, want flag override", req.IncludeExtensions)
	}
	if req.Workers != 2 || !req.UseGitignore {
		t.Errorf("req = %+v, want workers=2 gitignore=true", req)
	}
	// Untouched settings come from the config.
	if req.MaxFileSize != cfg.Scan.MaxFileSize {
		t.Errorf("MaxFileSize = %d, want config default %d", req.MaxFileSize, cfg.Scan.MaxFileSize)
	}
}

func TestScanProgressFromResolvedRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		tune func(*config.Config)
		want bool
	}{
		{"stdout output", nil, nil, false},
		{"output flag", []string{"--output", ".tsindex"}, nil, true},
		{"output path from config", nil, func(c *config.Config) { c.Output.Path = ".tsindex" }, true},
		{"json flag wins", []string{"--output", ".tsindex", "--json"}, nil, false},
		{"json format from config", nil, func(c *config.Config) {
			c.Output.Path = ".tsindex"
			c.Output.Format = "json"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanOutputPath, scanJSON = "", false
			cmd := scanCmd()
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg := config.DefaultConfig()
			if tt.tune != nil {
				tt.tune(cfg)
			}
			req := scanRequestFromConfig(cmd, cfg, ".")
			if got := scanProgressEligible(req); got != tt.want {
				t.Errorf("scanProgressEligible(%+v) = %v, want %v", req, got, tt.want)
			}
		})
	}
}

func TestCheckExitError(t *testing.T) {
	err := &CheckExitError{Code: 2, Message: "bad index"}
	if err.Error() != "bad index" {
		t.Errorf("Error() = %q", err.Error())
	}

	// Wrong arity surfaces as an exit-2 error, not a cobra usage error.
	cmd := checkCmd()
	runErr := runCheckCmd(cmd, nil)
	exitErr, ok := runErr.(*CheckExitError)
	if !ok || exitErr.Code != 2 {
		t.Errorf("runCheckCmd(no args) = %v, want CheckExitError with code 2", runErr)
	}
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := queryCmd()
	for _, flag := range []string{"kind", "field", "equals", "contains", "match", "count-by", "json"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("query is missing the --%s flag", flag)
		}
	}
}
