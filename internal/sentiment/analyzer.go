package sentiment

import (
	"context"
	"log/slog"

	"github.com/nao1215/airscrape/internal/model"
)

// TextNormalizer produces the cleaned text that is scored.
type TextNormalizer interface {
	Normalize(text string) string
}

// Analyzer fills the derived columns of a review table.
type Analyzer struct {
	normalizer TextNormalizer
	scorer     *Scorer
	logger     *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets a custom logger for the analyzer.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an Analyzer that cleans text with normalizer and
// scores it with scorer.
func NewAnalyzer(normalizer TextNormalizer, scorer *Scorer, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		normalizer: normalizer,
		scorer:     scorer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns a copy of table with CleanReview, Polarity, Subjectivity
// and Sentiment set on every row. The input table is not modified.
func (a *Analyzer) Analyze(ctx context.Context, table model.ReviewTable) (model.ReviewTable, error) {
	out := table.Clone()
	for i := range out.Rows {
		if err := ctx.Err(); err != nil {
			return model.ReviewTable{}, err
		}

		row := &out.Rows[i]
		row.CleanReview = a.normalizer.Normalize(row.ReviewText)
		row.Polarity, row.Subjectivity = a.scorer.Score(row.CleanReview)
		row.Sentiment = Label(row.Polarity)

		a.logger.Debug("scored review",
			"airline", row.Airline,
			"title", row.Title,
			"polarity", row.Polarity,
			"sentiment", row.Sentiment.String(),
		)
	}
	return out, nil
}
