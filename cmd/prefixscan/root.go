package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for prefixscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefixscan",
		Short: "Enumerate an autocomplete service by exploring query prefixes",
		Long: `prefixscan discovers every name an autocomplete API returns by querying
the 26 single-letter prefixes and recursively extending every prefix that
returned suggestions.

All progress is written to a checkpoint after each query. Running the same
command again resumes from the checkpoint without repeating any request.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .prefixscan in current directory, XDG config dir or home)")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
