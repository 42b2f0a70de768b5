package report

import (
	"io"

	"github.com/nao1215/prefixscan/internal/model"
)

// Result is everything a writer may render.
type Result struct {
	// Names is the sorted result set.
	Names []string

	// Summary describes the run that produced Names.
	Summary *model.Summary
}

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *Result) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
