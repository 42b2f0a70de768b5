package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/prefixscan/internal/checkpoint"
	"github.com/nao1215/prefixscan/internal/config"
)

// inspectSampleSize is the number of visited prefixes shown by inspect.
const inspectSampleSize = 10

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [checkpoint]",
		Short: "Show the progress recorded in a checkpoint",
		Long: `Inspect reads a checkpoint without modifying it and prints how many
prefixes have been queried, how many names were collected, and a sample of
the visited prefixes.

Every visited prefix was queried exactly once, so the visited count is also
the total number of API requests made across all runs.

If no path is given, the checkpoint configured for crawl is inspected.

Examples:
  # Inspect the default checkpoint
  prefixscan inspect

  # Inspect a SQLite checkpoint as JSON
  prefixscan inspect state.db --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().String("backend", config.BackendAuto,
		"Checkpoint backend: auto, json or sqlite")
	cmd.Flags().BoolP("json", "j", false,
		"Print the inspection as JSON")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("backend") {
		if cfg.CheckpointBackend, err = cmd.Flags().GetString("backend"); err != nil {
			return err
		}
	}
	if len(args) == 1 {
		cfg.CheckpointPath = args[0]
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	inspection, err := checkpoint.Inspect(cmd.Context(), cfg.ResolveCheckpointPath(), cfg.CheckpointBackend, inspectSampleSize)
	if err != nil {
		return fmt.Errorf("failed to inspect checkpoint: %w", err)
	}

	if asJSON {
		return writeInspectionJSON(cmd.OutOrStdout(), inspection)
	}
	writeInspectionText(cmd.OutOrStdout(), inspection)
	return nil
}

// writeInspectionJSON prints the inspection as indented JSON.
func writeInspectionJSON(w io.Writer, inspection *checkpoint.Inspection) error {
	data, err := json.MarshalIndent(inspection, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeInspectionText prints the inspection for humans.
func writeInspectionText(w io.Writer, inspection *checkpoint.Inspection) {
	if !inspection.Exists {
		fmt.Fprintf(w, "No checkpoint found at %s\n", inspection.Path)
		return
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Checkpoint:               %s (%s)\n", inspection.Path, inspection.Backend)
	p.Fprintf(w, "Total API requests made:  %d\n", inspection.VisitedCount)
	p.Fprintf(w, "Names collected:          %d\n", inspection.ResultCount)

	if len(inspection.Sample) == 0 {
		return
	}
	fmt.Fprintf(w, "\nFirst %d visited prefixes:\n", len(inspection.Sample))
	for _, prefix := range inspection.Sample {
		fmt.Fprintf(w, "  %s\n", prefix)
	}
}
