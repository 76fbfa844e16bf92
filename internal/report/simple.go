package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"github.com/nao1215/airscrape/internal/model"
)

// titleWidth is the display width review titles are cut to in verbose output.
const titleWidth = 40

// TableStyle returns the go-pretty style of the text reports: rounded
// borders, footers printed as written.
func TableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	return style
}

// SimpleWriter outputs a human-readable text report for the terminal.
// Sections are rendered as go-pretty tables.
type SimpleWriter struct {
	baseWriter

	// verbose adds the scored review rows.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with one line per review.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeFetches(&sb, run)
	w.writeCounts(&sb, run)
	w.writeSentiment(&sb, run)
	w.writeVerification(&sb, run)
	w.writeDelaySignals(&sb, run)
	w.writeSummaries(&sb, run)
	w.writeTopTerms(&sb, run)
	if w.verbose {
		w.writeReviews(&sb, run)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(TableStyle())
	t.SetTitle(title)
	return t
}

func (w *SimpleWriter) render(sb *strings.Builder, t table.Writer) {
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     AIRLINE REVIEW REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Started:       %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Airlines:      %s\n", strings.Join(run.Airlines, ", "))
	if run.RobotsStatus != "" {
		fmt.Fprintf(sb, "robots.txt:    %s\n", run.RobotsStatus)
	}
	if run.ReviewsPath != "" {
		fmt.Fprintf(sb, "Reviews file:  %s (%d rows)\n", run.ReviewsPath, run.Table.Len())
	}
	if run.SkippedRecords > 0 {
		fmt.Fprintf(sb, "Skipped:       %d malformed record(s)\n", run.SkippedRecords)
	}
	fmt.Fprintf(sb, "Status:        %s\n\n", statusText(run))
}

func (w *SimpleWriter) writeFetches(sb *strings.Builder, run *model.Run) {
	if len(run.Fetches) == 0 {
		return
	}
	t := w.newTable("Downloads")
	t.AppendHeader(table.Row{"Airline", "Status", "Bytes", "Result"})
	for _, f := range run.Fetches {
		result := "saved"
		if !f.Success() {
			result = f.Error
		}
		t.AppendRow(table.Row{f.Airline, f.StatusCode, f.Bytes, result})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d ok", run.SuccessfulFetches(), len(run.Fetches))})
	w.render(sb, t)
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, run *model.Run) {
	if len(run.Counts) == 0 {
		return
	}
	t := w.newTable("Extracted Reviews")
	t.AppendHeader(table.Row{"Airline", "Records"})
	for _, c := range run.Counts {
		records := strconv.Itoa(c.Records)
		if c.Missing {
			records = "missing page"
		}
		t.AppendRow(table.Row{c.Airline, records})
	}
	t.AppendFooter(table.Row{"Total", run.TotalRecords()})
	w.render(sb, t)
}

func (w *SimpleWriter) writeSentiment(sb *strings.Builder, run *model.Run) {
	s := run.Sentiment
	t := w.newTable("Sentiment")
	t.AppendHeader(table.Row{"Sentiment", "Reviews", "Share"})
	t.AppendRow(table.Row{model.SentimentPositive.String(), s.Counts.Positive, s.Positive.String()})
	t.AppendRow(table.Row{model.SentimentNegative.String(), s.Counts.Negative, s.Negative.String()})
	t.AppendRow(table.Row{model.SentimentNeutral.String(), s.Counts.Neutral, s.Neutral.String()})
	t.AppendFooter(table.Row{"Total", s.Total, ""})
	w.render(sb, t)
}

func (w *SimpleWriter) writeVerification(sb *strings.Builder, run *model.Run) {
	v := run.Verification
	t := w.newTable("Verification")
	t.AppendHeader(table.Row{"", "Reviews", "Share"})
	t.AppendRow(table.Row{"Verified", v.Verified, v.VerifiedPct.String()})
	t.AppendRow(table.Row{"Not verified", v.NotVerified, v.NotVerifiedPct.String()})
	t.AppendRow(table.Row{"Negative, not verified", fmt.Sprintf("%d of %d", v.NegativeNotVerified, v.NegativeTotal), v.NegativeNotVerifiedPct.String()})
	w.render(sb, t)
}

func (w *SimpleWriter) writeDelaySignals(sb *strings.Builder, run *model.Run) {
	t := w.newTable("Delay Complaints (negative reviews)")
	t.AppendHeader(table.Row{"Airline", "Keyword hits"})
	if len(run.DelaySignals) == 0 {
		t.AppendRow(table.Row{"-", 0})
	}
	for _, s := range run.DelaySignals {
		t.AppendRow(table.Row{s.Airline, s.DelayKeywordCount})
	}
	w.render(sb, t)
}

func (w *SimpleWriter) writeSummaries(sb *strings.Builder, run *model.Run) {
	if len(run.Summaries) == 0 {
		return
	}
	t := w.newTable("By Airline")
	t.AppendHeader(table.Row{"Airline", "Reviews", "Positive", "Negative", "Neutral", "Avg rating", "Avg polarity"})
	for _, s := range run.Summaries {
		t.AppendRow(table.Row{
			s.Airline,
			s.Reviews,
			s.Counts.Positive,
			s.Counts.Negative,
			s.Counts.Neutral,
			ratingText(s),
			formatFloat(s.AveragePolarity, 3),
		})
	}
	w.render(sb, t)
}

func (w *SimpleWriter) writeTopTerms(sb *strings.Builder, run *model.Run) {
	if len(run.TopTerms) == 0 {
		return
	}
	t := w.newTable("Top Terms")
	t.AppendHeader(table.Row{"Sentiment", "Terms"})
	for _, s := range model.Sentiments() {
		terms, ok := run.TopTerms[s.String()]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{s.String(), termList(terms)})
	}
	w.render(sb, t)
}

func (w *SimpleWriter) writeReviews(sb *strings.Builder, run *model.Run) {
	if run.Table.Len() == 0 {
		return
	}
	t := w.newTable("Reviews")
	t.AppendHeader(table.Row{"#", "Airline", "Title", "Rating", "Polarity", "Sentiment"})
	for i, r := range run.Table.Rows {
		t.AppendRow(table.Row{
			i + 1,
			r.Airline,
			runewidth.Truncate(r.Title, titleWidth, "..."),
			r.Rating,
			formatFloat(r.Polarity, 3),
			r.Sentiment.String(),
		})
	}
	w.render(sb, t)
}

// termList renders terms as "word (n), word (n)".
func termList(terms []model.TermCount) string {
	parts := make([]string, len(terms))
	for i, tc := range terms {
		parts[i] = fmt.Sprintf("%s (%d)", tc.Term, tc.Count)
	}
	return strings.Join(parts, ", ")
}
