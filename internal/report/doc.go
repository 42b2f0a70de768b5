// Package report writes the output artifacts of a crawl.
//
// This package contains writers for each output format:
//   - TextWriter: newline-delimited names
//   - JSONWriter: a sorted JSON array of names
//   - CSVWriter: a single-column CSV file with a "name" header
//   - SummaryWriter: human-readable run statistics
//   - MarkdownWriter: run statistics as a Markdown document
//
// Writers implement the Writer interface. WriteAll writes every enabled
// format into an output directory under its conventional file name.
package report
