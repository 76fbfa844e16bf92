package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/markdown/mermaid/quadrant"

	"github.com/nao1215/airscrape/internal/model"
)

// unverifiedAlertThreshold is the share of unverified negative reviews
// above which the report raises a warning.
const unverifiedAlertThreshold = 50.0

// MarkdownWriter outputs reports in Markdown format, with mermaid charts
// for the sentiment split and the per-airline polarity/subjectivity map.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeExtraction(md, run)
	w.writeSentiment(md, run)
	w.writeVerification(md, run)
	w.writeDelaySignals(md, run)
	w.writeAirlines(md, run)
	w.writeTopTerms(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Airline Review Report")
	md.PlainText("")

	rows := [][]string{
		{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Airlines", strings.Join(run.Airlines, ", ")},
		{"Reviews", strconv.Itoa(run.Table.Len())},
		{"Status", w.statusBadge(run)},
	}
	if run.RobotsStatus != "" {
		rows = append(rows, []string{"robots.txt", run.RobotsStatus})
	}
	if run.ReviewsPath != "" {
		rows = append(rows, []string{"Reviews file", "`" + run.ReviewsPath + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusBadge(run *model.Run) string {
	if run.ErrorMessage != "" {
		return "❌ " + statusText(run)
	}
	return "✅ " + statusText(run)
}

func (w *MarkdownWriter) writeExtraction(md *markdown.Markdown, run *model.Run) {
	if len(run.Counts) == 0 {
		return
	}
	md.H2("Extraction")
	md.PlainText("")

	rows := make([][]string, 0, len(run.Counts))
	for _, c := range run.Counts {
		records := strconv.Itoa(c.Records)
		if c.Missing {
			records = "missing page"
		}
		rows = append(rows, []string{c.Airline, records})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(run.TotalRecords()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Airline", "Records"},
		Rows:   rows,
	})
	md.PlainText("")

	if run.SkippedRecords > 0 {
		md.Warningf("%d malformed record(s) were skipped while saving.", run.SkippedRecords)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSentiment(md *markdown.Markdown, run *model.Run) {
	s := run.Sentiment
	md.H2("Sentiment")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Sentiment", "Reviews", "Share"},
		Rows: [][]string{
			{"🟢 Positive", strconv.Itoa(s.Counts.Positive), s.Positive.String()},
			{"🔴 Negative", strconv.Itoa(s.Counts.Negative), s.Negative.String()},
			{"⚪ Neutral", strconv.Itoa(s.Counts.Neutral), s.Neutral.String()},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**", ""},
		},
	})
	md.PlainText("")

	if s.Total == 0 {
		md.Note("No reviews were loaded; percentages are undefined.")
		md.PlainText("")
		return
	}
	w.writePieChart(md, s.Counts)
}

// writePieChart writes a mermaid pie chart of the sentiment counts.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, c model.SentimentCounts) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sentiment Distribution"),
		piechart.WithShowData(true),
	)

	if c.Positive > 0 {
		chart.LabelAndIntValue("Positive", uint64(c.Positive))
	}
	if c.Negative > 0 {
		chart.LabelAndIntValue("Negative", uint64(c.Negative))
	}
	if c.Neutral > 0 {
		chart.LabelAndIntValue("Neutral", uint64(c.Neutral))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeVerification(md *markdown.Markdown, run *model.Run) {
	v := run.Verification
	md.H2("Verification")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"", "Reviews", "Share"},
		Rows: [][]string{
			{"Verified", strconv.Itoa(v.Verified), v.VerifiedPct.String()},
			{"Not verified", strconv.Itoa(v.NotVerified), v.NotVerifiedPct.String()},
			{"Negative, not verified", strconv.Itoa(v.NegativeNotVerified) + " of " + strconv.Itoa(v.NegativeTotal), v.NegativeNotVerifiedPct.String()},
		},
	})
	md.PlainText("")

	p := v.NegativeNotVerifiedPct
	switch {
	case !p.Valid:
		md.Note("There are no negative reviews to check.")
	case p.Value > unverifiedAlertThreshold:
		md.Warningf("%s of negative reviews are not verified trips.", p)
	default:
		md.Tip("Most negative reviews come from verified trips.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDelaySignals(md *markdown.Markdown, run *model.Run) {
	md.H2("Delay Complaints")
	md.PlainText("")

	if len(run.DelaySignals) == 0 {
		md.PlainText("No delay keywords found in negative reviews.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.DelaySignals))
	for i, s := range run.DelaySignals {
		rows[i] = []string{s.Airline, strconv.Itoa(s.DelayKeywordCount)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Airline", "Keyword hits"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAirlines(md *markdown.Markdown, run *model.Run) {
	if len(run.Summaries) == 0 {
		return
	}
	md.H2("Airlines")
	md.PlainText("")

	rows := make([][]string, len(run.Summaries))
	for i, s := range run.Summaries {
		rows[i] = []string{
			s.Airline,
			strconv.Itoa(s.Reviews),
			strconv.Itoa(s.Counts.Positive),
			strconv.Itoa(s.Counts.Negative),
			strconv.Itoa(s.Counts.Neutral),
			ratingText(s),
			formatFloat(s.AveragePolarity, 3),
			formatFloat(s.AverageSubjectivity, 3),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Airline", "Reviews", "Positive", "Negative", "Neutral", "Avg rating", "Avg polarity", "Avg subjectivity"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeQuadrantChart(md, run.Summaries)
}

// writeQuadrantChart plots each airline's average polarity (x, rescaled
// from [-1, 1] to [0, 1]) against its average subjectivity (y).
func (w *MarkdownWriter) writeQuadrantChart(md *markdown.Markdown, summaries []model.AirlineSummary) {
	chart := quadrant.NewChart(io.Discard, quadrant.WithTitle("Polarity vs Subjectivity"))
	chart.XAxis("Negative", "Positive")
	chart.YAxis("Objective", "Subjective")
	chart.Quadrant1("Opinionated praise")
	chart.Quadrant2("Opinionated criticism")
	chart.Quadrant3("Factual criticism")
	chart.Quadrant4("Factual praise")

	for _, s := range summaries {
		chart.Point(s.Airline, (s.AveragePolarity+1)/2, s.AverageSubjectivity)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTopTerms(md *markdown.Markdown, run *model.Run) {
	if len(run.TopTerms) == 0 {
		return
	}
	md.H2("Top Terms")
	md.PlainText("")

	for _, s := range model.Sentiments() {
		terms, ok := run.TopTerms[s.String()]
		if !ok {
			continue
		}
		items := make([]string, len(terms))
		for i, tc := range terms {
			items[i] = "`" + tc.Term + "` (" + strconv.Itoa(tc.Count) + ")"
		}
		md.H3(s.String())
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [airscrape](https://github.com/nao1215/airscrape)*")
}
