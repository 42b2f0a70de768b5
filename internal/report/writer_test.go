package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/nao1215/prefixscan/internal/config"
	"github.com/nao1215/prefixscan/internal/model"
)

// createTestResult creates a result with sample data for testing.
func createTestResult() *Result {
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Result{
		Names: []string{"amy", "ann", "bob"},
		Summary: &model.Summary{
			RunID:            "0f8fad5b-d9cb-469f-a165-70867728950e",
			Endpoint:         "http://localhost:8000/v1/autocomplete",
			StartedAt:        started,
			FinishedAt:       started.Add(90 * time.Second),
			Requests:         12345,
			UniqueNames:      3,
			PrefixesVisited:  12400,
			RestoredPrefixes: 55,
			RestoredNames:    1,
		},
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one name per line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "amy\nann\nbob\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("empty result writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(&Result{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 || buf.Len() != 0 {
			t.Errorf("expected empty output, got %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a JSON array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != `["amy","ann","bob"]`+"\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(&Result{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %q", buf.String())
		}
	})

	t.Run("pretty print is valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"amy\"") {
			t.Errorf("expected indented output, got %q", buf.String())
		}

		var names []string
		if err := json.Unmarshal(buf.Bytes(), &names); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(names) != 3 {
			t.Errorf("expected 3 names, got %v", names)
		}
	})
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and rows", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "name\namy\nann\nbob\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("quotes names that need it", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := &Result{Names: []string{`o"brien`, "smith, jr"}}
		if _, err := NewCSVWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 3 || records[1][0] != `o"brien` || records[2][0] != "smith, jr" {
			t.Errorf("unexpected records %v", records)
		}
	})
}

func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes grouped counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"PREFIXSCAN SUMMARY",
			"Total API requests:  12,345",
			"Unique names:        3",
			"Prefixes visited:    12,400",
			"Elapsed:             1m30s",
			"Restored prefixes:   55",
			"New names:           2",
			"Status:              Complete",
			"0f8fad5b-d9cb-469f-a165-70867728950e",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("omits restore section for a fresh crawl", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.Summary.RestoredPrefixes = 0
		result.Summary.RestoredNames = 0

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Restored") {
			t.Error("expected no restore section")
		}
	})

	t.Run("reports interruption", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.Summary.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Interrupted") {
			t.Error("expected interrupted status")
		}
	})

	t.Run("respects language", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSummaryWriter(&buf, WithLanguage(language.German))
		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "12.345") {
			t.Errorf("expected German digit grouping\n%s", buf.String())
		}
	})

	t.Run("nil summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSummaryWriter(&buf).Write(&Result{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Total API requests:  0") {
			t.Errorf("unexpected output\n%s", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes title and tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# prefixscan Summary",
			"## Counts",
			"12,345",
			"Names by Origin",
			"```mermaid",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("warns when interrupted", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.Summary.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Errorf("expected warning alert\n%s", buf.String())
		}
	})

	t.Run("no chart without names", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(&Result{Summary: &model.Summary{}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no pie chart")
		}
	})
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	t.Run("writes every requested artifact", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		formats := []string{config.FormatText, config.FormatJSON, config.FormatCSV, config.FormatSummary, config.FormatMarkdown, config.FormatText}

		written, err := WriteAll(dir, formats, createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(written) != 5 {
			t.Errorf("expected 5 files, got %v", written)
		}

		for _, name := range []string{"all_names.txt", "all_names.json", "all_names.csv", "summary.txt", "summary.md"} {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				t.Errorf("missing %s: %v", name, err)
				continue
			}
			if len(data) == 0 {
				t.Errorf("%s is empty", name)
			}
		}
	})

	t.Run("only requested artifacts are written", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if _, err := WriteAll(dir, []string{config.FormatJSON}, createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "all_names.json" {
			t.Errorf("unexpected files %v", entries)
		}
	})

	t.Run("unknown format writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := WriteAll(dir, []string{config.FormatText, "xml"}, createTestResult())
		if !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("expected ErrUnknownFormat, got %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no files, got %v", entries)
		}
	})

	t.Run("every configurable format has an artifact", func(t *testing.T) {
		t.Parallel()

		for _, f := range config.KnownFormats {
			if FileName(f) == "" {
				t.Errorf("format %q has no artifact", f)
			}
		}
	})
}
