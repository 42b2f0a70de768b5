package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/prefixscan/internal/config"
)

// ErrUnknownFormat is returned by WriteAll for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// artifact describes one output file.
type artifact struct {
	fileName  string
	newWriter func(io.Writer) Writer
}

var artifacts = map[string]artifact{
	config.FormatText: {
		fileName:  "all_names.txt",
		newWriter: func(w io.Writer) Writer { return NewTextWriter(w) },
	},
	config.FormatJSON: {
		fileName:  "all_names.json",
		newWriter: func(w io.Writer) Writer { return NewJSONWriter(w, WithPrettyPrint()) },
	},
	config.FormatCSV: {
		fileName:  "all_names.csv",
		newWriter: func(w io.Writer) Writer { return NewCSVWriter(w) },
	},
	config.FormatSummary: {
		fileName:  "summary.txt",
		newWriter: func(w io.Writer) Writer { return NewSummaryWriter(w) },
	},
	config.FormatMarkdown: {
		fileName:  "summary.md",
		newWriter: func(w io.Writer) Writer { return NewMarkdownWriter(w) },
	},
}

// FileName returns the artifact file name for format, or "" if unknown.
func FileName(format string) string {
	return artifacts[format].fileName
}

// WriteAll writes one artifact per format into dir, creating dir if needed.
// Duplicate formats are written once. It returns the paths written, in order.
func WriteAll(dir string, formats []string, result *Result) ([]string, error) {
	for _, f := range formats {
		if _, ok := artifacts[f]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(formats))
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true

		a := artifacts[f]
		path := filepath.Join(dir, a.fileName)
		if err := writeFile(path, a.newWriter, result); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// writeFile renders result into path through the writer built by newWriter.
func writeFile(path string, newWriter func(io.Writer) Writer, result *Result) error {
	f, err := os.Create(path) //nolint:gosec // output path is built from the configured directory
	if err != nil {
		return err
	}

	if _, err := newWriter(f).Write(result); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return err
	}
	return f.Close()
}
