package report

import (
	"io"
	"strconv"

	"github.com/nao1215/airscrape/internal/model"
)

// Writer writes a run report to its configured destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(run *model.Run) (int, error)
}

// MultiWriter writes the same run to several Writers, for example the
// terminal and a report file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to every Writer, stopping at the first error.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how the run ended.
func statusText(run *model.Run) string {
	if run.ErrorMessage != "" {
		return "Error - " + run.ErrorMessage
	}
	return "Complete"
}

// ratingText renders an airline's average rating.
func ratingText(s model.AirlineSummary) string {
	if s.RatedReviews == 0 {
		return "n/a"
	}
	return formatFloat(s.AverageRating, 1)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
