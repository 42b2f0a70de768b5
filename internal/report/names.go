package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
)

// TextWriter outputs one name per line.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the names, each terminated by a newline.
func (w *TextWriter) Write(result *Result) (int, error) {
	var sb strings.Builder
	for _, name := range result.Names {
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	return io.WriteString(w.output, sb.String())
}

// JSONWriter outputs the names as a JSON array.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the names as a JSON array. An empty result is written as [].
func (w *JSONWriter) Write(result *Result) (int, error) {
	names := result.Names
	if names == nil {
		names = []string{}
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(names, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(names)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// CSVWriter outputs the names as a single-column CSV document.
type CSVWriter struct {
	baseWriter
}

// CSVHeader is the header of the only column.
const CSVHeader = "name"

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header row followed by one row per name.
func (w *CSVWriter) Write(result *Result) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{CSVHeader}); err != nil {
		return 0, err
	}
	for _, name := range result.Names {
		if err := cw.Write([]string{name}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
