package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/tsindex/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tsindex",
		Short: "tsindex - structural source tree indexer",
		Long: `tsindex builds a compact, machine-queryable structural index of a
JavaScript/TypeScript/Python source tree (files, imports, exports, types,
classes, methods, functions) and evaluates convention rules against it.`,
		Version: Version,
	}

	// Add subcommands
	cmd.AddCommand(scanCmd())
	cmd.AddCommand(checkCmd())
	cmd.AddCommand(queryCmd())
	cmd.AddCommand(initCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		// Handle custom exit codes from check command
		if exitErr, ok := err.(*CheckExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("tsindex version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
