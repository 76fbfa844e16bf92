package extractor

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/nao1215/airscrape/internal/fetcher"
	"github.com/nao1215/airscrape/internal/model"
)

// DocumentSource opens the locally saved page of an airline.
// *fetcher.Cache implements it.
type DocumentSource interface {
	Open(airline string) (io.ReadCloser, error)
}

// Consolidator extracts and labels the reviews of several airlines.
type Consolidator struct {
	source    DocumentSource
	extractor *Extractor
	logger    *slog.Logger
}

// ConsolidatorOption configures a Consolidator.
type ConsolidatorOption func(*Consolidator)

// WithConsolidatorLogger sets a custom logger for the consolidator.
func WithConsolidatorLogger(logger *slog.Logger) ConsolidatorOption {
	return func(c *Consolidator) {
		c.logger = logger
	}
}

// NewConsolidator creates a Consolidator reading pages from source.
func NewConsolidator(source DocumentSource, extractor *Extractor, opts ...ConsolidatorOption) *Consolidator {
	c := &Consolidator{
		source:    source,
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consolidate returns the labelled reviews of airlines, in airline order and
// then document order, together with the per-airline record counts.
// An airline without a saved page, or whose page cannot be read, contributes
// zero records and a diagnostic; it never fails the call. Only cancellation
// of ctx is returned as an error.
func (c *Consolidator) Consolidate(ctx context.Context, airlines []string) ([]model.LabeledReview, []model.AirlineCount, error) {
	var (
		reviews []model.LabeledReview
		counts  = make([]model.AirlineCount, 0, len(airlines))
	)

	for _, airline := range airlines {
		if err := ctx.Err(); err != nil {
			return reviews, counts, err
		}

		got, err := c.consolidateOne(ctx, airline)
		if err != nil {
			if errors.Is(err, fetcher.ErrDocumentNotFound) {
				c.logger.Warn("review page not found, skipping airline", "airline", airline, "error", err)
			} else {
				c.logger.Warn("failed to read review page, skipping airline", "airline", airline, "error", err)
			}
			counts = append(counts, model.AirlineCount{Airline: airline, Missing: true})
			continue
		}
		if err := ctx.Err(); err != nil {
			return reviews, counts, err
		}

		c.logger.Info("extracted reviews", "airline", airline, "records", len(got))
		reviews = append(reviews, got...)
		counts = append(counts, model.AirlineCount{Airline: airline, Records: len(got)})
	}
	return reviews, counts, nil
}

func (c *Consolidator) consolidateOne(ctx context.Context, airline string) ([]model.LabeledReview, error) {
	rc, err := c.source.Open(airline)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := ParseDocument(rc)
	if err != nil {
		return nil, err
	}

	var out []model.LabeledReview
	for r := range c.extractor.Extract(ctx, doc) {
		out = append(out, model.LabeledReview{Airline: airline, RawReview: r})
	}
	return out, nil
}
