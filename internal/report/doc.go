// Package report renders airscrape runs.
//
// Writers implement the Writer interface and can be combined with
// MultiWriter:
//   - SimpleWriter: go-pretty tables for the terminal
//   - MarkdownWriter: Markdown with mermaid pie and quadrant charts
//   - JSONWriter: the full run as JSON
//
// Compare and the WriteComparison functions render the difference
// between two runs stored in the history database.
package report
