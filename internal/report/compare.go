package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/markdown"

	"github.com/nao1215/airscrape/internal/model"
)

// Trend directions of a run comparison, judged by the negative share.
const (
	TrendImproved  = "improved"
	TrendWorsened  = "worsened"
	TrendUnchanged = "unchanged"
)

// RunInfo is the part of a run shown in a comparison.
type RunInfo struct {
	ID          int64                 `json:"id"`
	StartedAt   string                `json:"started_at"`
	Total       int                   `json:"total"`
	Counts      model.SentimentCounts `json:"counts"`
	NegativePct model.Percent         `json:"negative_pct"`
}

// AirlineDelta compares one airline across two runs.
// A rating is nil when the run had no numeric rating for the airline.
type AirlineDelta struct {
	Airline         string   `json:"airline"`
	PreviousReviews int      `json:"previous_reviews"`
	CurrentReviews  int      `json:"current_reviews"`
	PreviousDelay   int      `json:"previous_delay"`
	CurrentDelay    int      `json:"current_delay"`
	PreviousRating  *float64 `json:"previous_rating"`
	CurrentRating   *float64 `json:"current_rating"`
}

// RunComparison is the difference between two runs.
type RunComparison struct {
	Previous RunInfo `json:"previous"`
	Current  RunInfo `json:"current"`

	// Delta is current minus previous for each sentiment.
	Delta model.SentimentCounts `json:"delta"`

	Trend    string         `json:"trend"`
	Airlines []AirlineDelta `json:"airlines"`
}

// Compare builds the comparison of previous and current.
func Compare(previous, current *model.Run) *RunComparison {
	c := &RunComparison{
		Previous: runInfo(previous),
		Current:  runInfo(current),
	}
	c.Delta = model.SentimentCounts{
		Positive: c.Current.Counts.Positive - c.Previous.Counts.Positive,
		Negative: c.Current.Counts.Negative - c.Previous.Counts.Negative,
		Neutral:  c.Current.Counts.Neutral - c.Previous.Counts.Neutral,
	}
	c.Trend = trend(c.Previous.NegativePct, c.Current.NegativePct)

	byAirline := make(map[string]*AirlineDelta)
	get := func(name string) *AirlineDelta {
		d, ok := byAirline[name]
		if !ok {
			d = &AirlineDelta{Airline: name}
			byAirline[name] = d
		}
		return d
	}
	for _, s := range previous.Summaries {
		d := get(s.Airline)
		d.PreviousReviews = s.Reviews
		d.PreviousRating = rating(s)
	}
	for _, s := range previous.DelaySignals {
		get(s.Airline).PreviousDelay = s.DelayKeywordCount
	}
	for _, s := range current.Summaries {
		d := get(s.Airline)
		d.CurrentReviews = s.Reviews
		d.CurrentRating = rating(s)
	}
	for _, s := range current.DelaySignals {
		get(s.Airline).CurrentDelay = s.DelayKeywordCount
	}

	c.Airlines = make([]AirlineDelta, 0, len(byAirline))
	for _, d := range byAirline {
		c.Airlines = append(c.Airlines, *d)
	}
	sort.Slice(c.Airlines, func(i, j int) bool {
		return c.Airlines[i].Airline < c.Airlines[j].Airline
	})
	return c
}

func runInfo(run *model.Run) RunInfo {
	return RunInfo{
		ID:          run.ID,
		StartedAt:   run.StartedAt.Format("2006-01-02 15:04:05"),
		Total:       run.Sentiment.Total,
		Counts:      run.Sentiment.Counts,
		NegativePct: run.Sentiment.Negative,
	}
}

func rating(s model.AirlineSummary) *float64 {
	if s.RatedReviews == 0 {
		return nil
	}
	v := s.AverageRating
	return &v
}

// trend compares negative shares; an undefined share gives TrendUnchanged.
func trend(previous, current model.Percent) string {
	if !previous.Valid || !current.Valid {
		return TrendUnchanged
	}
	switch {
	case current.Value < previous.Value:
		return TrendImproved
	case current.Value > previous.Value:
		return TrendWorsened
	default:
		return TrendUnchanged
	}
}

// WriteComparisonJSON writes c as indented JSON.
func WriteComparisonJSON(w io.Writer, c *RunComparison) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

// WriteComparisonText writes c as go-pretty tables.
func WriteComparisonText(w io.Writer, c *RunComparison) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run Comparison: #%d (%s) -> #%d (%s)\n",
		c.Previous.ID, c.Previous.StartedAt, c.Current.ID, c.Current.StartedAt)
	fmt.Fprintf(&sb, "Trend: %s\n\n", trendText(c.Trend))

	t := table.NewWriter()
	t.SetStyle(TableStyle())
	t.SetTitle("Sentiment")
	t.AppendHeader(table.Row{"Sentiment", "Previous", "Current", "Change"})
	for _, row := range sentimentRows(c) {
		t.AppendRow(table.Row{row[0], row[1], row[2], row[3]})
	}
	t.AppendFooter(table.Row{"Total", c.Previous.Total, c.Current.Total, formatDelta(c.Current.Total - c.Previous.Total)})
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")

	if len(c.Airlines) > 0 {
		t = table.NewWriter()
		t.SetStyle(TableStyle())
		t.SetTitle("By Airline")
		t.AppendHeader(table.Row{"Airline", "Reviews", "Delay hits", "Avg rating"})
		for _, row := range airlineRows(c) {
			t.AppendRow(table.Row{row[0], row[1], row[2], row[3]})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteComparisonMarkdown writes c as a Markdown document.
func WriteComparisonMarkdown(w io.Writer, c *RunComparison) error {
	md := markdown.NewMarkdown(w)

	md.H1f("Run Comparison: #%d vs #%d", c.Previous.ID, c.Current.ID)
	md.PlainText("")
	md.PlainTextf("**Trend:** %s", trendText(c.Trend))
	md.PlainText("")

	rows := [][]string{{"Started", c.Previous.StartedAt, c.Current.StartedAt, "-"}}
	rows = append(rows, sentimentRows(c)...)
	rows = append(rows, []string{
		"**Total**",
		strconv.Itoa(c.Previous.Total),
		strconv.Itoa(c.Current.Total),
		formatDelta(c.Current.Total - c.Previous.Total),
	})
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(c.Airlines) > 0 {
		md.H2("Airlines")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Airline", "Reviews", "Delay hits", "Avg rating"},
			Rows:   airlineRows(c),
		})
	}
	return md.Build()
}

func sentimentRows(c *RunComparison) [][]string {
	return [][]string{
		{model.SentimentPositive.String(), strconv.Itoa(c.Previous.Counts.Positive), strconv.Itoa(c.Current.Counts.Positive), formatDelta(c.Delta.Positive)},
		{model.SentimentNegative.String(), strconv.Itoa(c.Previous.Counts.Negative), strconv.Itoa(c.Current.Counts.Negative), formatDelta(c.Delta.Negative)},
		{model.SentimentNeutral.String(), strconv.Itoa(c.Previous.Counts.Neutral), strconv.Itoa(c.Current.Counts.Neutral), formatDelta(c.Delta.Neutral)},
		{"Negative share", c.Previous.NegativePct.String(), c.Current.NegativePct.String(), "-"},
	}
}

func airlineRows(c *RunComparison) [][]string {
	rows := make([][]string, len(c.Airlines))
	for i, a := range c.Airlines {
		rows[i] = []string{
			a.Airline,
			changeText(strconv.Itoa(a.PreviousReviews), strconv.Itoa(a.CurrentReviews), a.CurrentReviews-a.PreviousReviews),
			changeText(strconv.Itoa(a.PreviousDelay), strconv.Itoa(a.CurrentDelay), a.CurrentDelay-a.PreviousDelay),
			optionalRating(a.PreviousRating) + " -> " + optionalRating(a.CurrentRating),
		}
	}
	return rows
}

func changeText(previous, current string, delta int) string {
	return previous + " -> " + current + " (" + formatDelta(delta) + ")"
}

func optionalRating(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatFloat(*v, 1)
}

func trendText(trend string) string {
	switch trend {
	case TrendImproved:
		return "IMPROVED (fewer negative reviews)"
	case TrendWorsened:
		return "WORSENED (more negative reviews)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
