package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/prefixscan/internal/checkpoint"
	"github.com/nao1215/prefixscan/internal/config"
	"github.com/nao1215/prefixscan/internal/model"
)

// saveCheckpoint writes a JSON checkpoint with the given visited prefixes.
func saveCheckpoint(t *testing.T, path string, visited []string, results []string) {
	t.Helper()

	snap := &model.Snapshot{Visited: visited, Results: results}
	if err := checkpoint.NewFileStore(path).Save(context.Background(), snap); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	t.Parallel()

	t.Run("missing checkpoint is not an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "checkpoint.json")
		output, err := executeCmd(t, "inspect", path, "--config", writeConfigFile(t, dir, "{}\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "No checkpoint found") {
			t.Errorf("expected not found message, got %q", output)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("inspect must not create the checkpoint")
		}
	})

	t.Run("prints counts and a sample", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "checkpoint.json")
		saveCheckpoint(t, path, model.Seeds(), []string{"amy", "ann"})

		output, err := executeCmd(t, "inspect", path, "--config", writeConfigFile(t, dir, "{}\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "Total API requests made:  26") {
			t.Errorf("expected request count, got %q", output)
		}
		if !strings.Contains(output, "Names collected:          2") {
			t.Errorf("expected name count, got %q", output)
		}
		if !strings.Contains(output, "First 10 visited prefixes:") || !strings.Contains(output, "  j\n") {
			t.Errorf("expected ten sampled prefixes, got %q", output)
		}
		if strings.Contains(output, "  k\n") {
			t.Errorf("sample must stop at ten prefixes, got %q", output)
		}
	})

	t.Run("JSON output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "checkpoint.json")
		saveCheckpoint(t, path, []string{"a", "b"}, []string{"amy"})

		output, err := executeCmd(t, "inspect", path, "--json", "--config", writeConfigFile(t, dir, "{}\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got checkpoint.Inspection
		if err := json.Unmarshal([]byte(output), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", output, err)
		}
		if !got.Exists || got.VisitedCount != 2 || got.ResultCount != 1 || got.Backend != config.BackendJSON {
			t.Errorf("unexpected inspection %+v", got)
		}
	})

	t.Run("uses the configured checkpoint when no path is given", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "progress.json")
		saveCheckpoint(t, path, []string{"a"}, nil)
		cfgPath := writeConfigFile(t, dir, "checkpoint:\n  path: "+path+"\n")

		output, err := executeCmd(t, "inspect", "--config", cfgPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, path) || !strings.Contains(output, "Total API requests made:  1") {
			t.Errorf("expected configured checkpoint to be inspected, got %q", output)
		}
	})

	t.Run("corrupt checkpoint fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "checkpoint.json")
		if err := os.WriteFile(path, []byte("nope"), 0600); err != nil {
			t.Fatalf("failed to write checkpoint: %v", err)
		}

		if _, err := executeCmd(t, "inspect", path, "--config", writeConfigFile(t, dir, "{}\n")); err == nil {
			t.Fatal("expected error for corrupt checkpoint")
		}
	})
}
