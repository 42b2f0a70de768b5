package report

import (
	"io"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/prefixscan/internal/model"
)

// MarkdownWriter outputs run statistics as a Markdown document.
type MarkdownWriter struct {
	baseWriter

	// printer formats numbers with digit grouping.
	printer *message.Printer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// Write outputs the summary of result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	s := result.Summary
	if s == nil {
		s = &model.Summary{}
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeCounts(md, s)
	w.writeStatus(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("prefixscan Summary")
	md.PlainText("")

	rows := [][]string{}
	if s.RunID != "" {
		rows = append(rows, []string{"Run ID", "`" + s.RunID + "`"})
	}
	if s.Endpoint != "" {
		rows = append(rows, []string{"Endpoint", "`" + s.Endpoint + "`"})
	}
	if !s.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", s.StartedAt.Format(timeLayout)})
	}
	if !s.FinishedAt.IsZero() {
		rows = append(rows, []string{"Finished", s.FinishedAt.Format(timeLayout)})
	}
	rows = append(rows, []string{"Elapsed", s.Elapsed().Round(time.Millisecond).String()})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCounts writes the request and result counters.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *model.Summary) {
	md.H2("Counts")
	md.PlainText("")

	p := w.printer
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total API requests", p.Sprintf("%d", s.Requests)},
			{"Unique names", p.Sprintf("%d", s.UniqueNames)},
			{"Prefixes visited", p.Sprintf("%d", s.PrefixesVisited)},
			{"Restored prefixes", p.Sprintf("%d", s.RestoredPrefixes)},
			{"Restored names", p.Sprintf("%d", s.RestoredNames)},
			{"New names", p.Sprintf("%d", s.NewNames())},
		},
	})
	md.PlainText("")

	if s.UniqueNames > 0 {
		w.writePieChart(md, s)
	}
}

// writePieChart writes a mermaid pie chart of restored versus new names.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Names by Origin"),
		piechart.WithShowData(true),
	)

	if s.RestoredNames > 0 {
		chart.LabelAndIntValue("Restored", uint64(s.RestoredNames)) //nolint:gosec // counts are non-negative
	}
	if n := s.NewNames(); n > 0 {
		chart.LabelAndIntValue("New", uint64(n)) //nolint:gosec // counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeStatus writes an alert describing how the run ended.
func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.Interrupted:
		md.Warningf(
			"The crawl was interrupted after %s requests. Run it again to resume from the checkpoint.",
			w.printer.Sprintf("%d", s.Requests),
		)
	case s.Requests == 0 && s.PrefixesVisited > 0:
		md.Note("The checkpoint already covered every reachable prefix; no requests were made.")
	default:
		md.Tip("The crawl completed.")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [prefixscan](https://github.com/nao1215/prefixscan)*")
}
