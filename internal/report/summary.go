package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/prefixscan/internal/model"
)

// timeLayout is used for every timestamp in summaries.
const timeLayout = "2006-01-02 15:04:05 MST"

// SummaryWriter outputs human-readable run statistics.
// Counts are printed with digit grouping, e.g. 12,345.
type SummaryWriter struct {
	baseWriter

	// printer formats numbers for the configured language.
	printer *message.Printer
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary of result.
func (w *SummaryWriter) Write(result *Result) (int, error) {
	s := result.Summary
	if s == nil {
		s = &model.Summary{}
	}
	p := w.printer

	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")
	sb.WriteString("PREFIXSCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")

	if s.RunID != "" {
		sb.WriteString(p.Sprintf("Run ID:              %s\n", s.RunID))
	}
	if s.Endpoint != "" {
		sb.WriteString(p.Sprintf("Endpoint:            %s\n", s.Endpoint))
	}
	if !s.StartedAt.IsZero() {
		sb.WriteString(p.Sprintf("Started:             %s\n", s.StartedAt.Format(timeLayout)))
	}
	if !s.FinishedAt.IsZero() {
		sb.WriteString(p.Sprintf("Finished:            %s\n", s.FinishedAt.Format(timeLayout)))
	}
	sb.WriteString(p.Sprintf("Elapsed:             %s\n", s.Elapsed().Round(time.Millisecond)))
	sb.WriteString(p.Sprintf("Status:              %s\n", statusText(s)))
	sb.WriteString("\n")

	sb.WriteString(p.Sprintf("Total API requests:  %d\n", s.Requests))
	sb.WriteString(p.Sprintf("Unique names:        %d\n", s.UniqueNames))
	sb.WriteString(p.Sprintf("Prefixes visited:    %d\n", s.PrefixesVisited))
	if s.RestoredPrefixes > 0 || s.RestoredNames > 0 {
		sb.WriteString(p.Sprintf("Restored prefixes:   %d\n", s.RestoredPrefixes))
		sb.WriteString(p.Sprintf("Restored names:      %d\n", s.RestoredNames))
		sb.WriteString(p.Sprintf("New names:           %d\n", s.NewNames()))
	}

	return io.WriteString(w.output, sb.String())
}

// statusText describes how the run ended.
func statusText(s *model.Summary) string {
	if s.Interrupted {
		return "Interrupted (resume from checkpoint)"
	}
	return "Complete"
}
