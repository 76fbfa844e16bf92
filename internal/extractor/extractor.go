package extractor

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/model"
)

// Selectors of the review page layout.
const (
	ReviewSelector = "article.comp_media-review-rated"
	TitleSelector  = "h2"
	RatingSelector = "div.rating-10"
	BodySelector   = "div.text_content"
)

// Extractor reads review records from parsed pages.
// The minimum interval between two records applies across all pages read by
// the same Extractor; the very first record is not delayed.
type Extractor struct {
	maxReviews int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxReviews caps the number of records taken from one page.
// Non-positive values are ignored.
func WithMaxReviews(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxReviews = n
		}
	}
}

// WithDelay sets the minimum interval between two extracted records.
// Zero disables throttling.
func WithDelay(d time.Duration) Option {
	return func(e *Extractor) {
		e.limiter = newLimiter(d)
	}
}

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor with the default record cap and delay.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxReviews: config.DefaultMaxReviews,
		limiter:    newLimiter(config.DefaultExtractDelay),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Extract returns the review records of doc in document order, at most the
// configured cap. The sequence can be consumed once; ranging over it again
// yields nothing. It ends early when ctx is cancelled while waiting for the
// throttle, so callers should check ctx.Err() afterwards.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document) iter.Seq[model.RawReview] {
	containers := doc.Find(ReviewSelector)
	if containers.Length() > e.maxReviews {
		containers = containers.Slice(0, e.maxReviews)
	}

	consumed := false
	return func(yield func(model.RawReview) bool) {
		if consumed {
			return
		}
		consumed = true

		for i := range containers.Length() {
			if err := e.limiter.Wait(ctx); err != nil {
				e.logger.Debug("extraction interrupted", "error", err)
				return
			}
			if !yield(extractReview(containers.Eq(i))) {
				return
			}
		}
	}
}

// extractReview reads the title, rating and body of one review container,
// substituting the sentinel for each missing element.
func extractReview(sel *goquery.Selection) model.RawReview {
	r := model.RawReview{
		Title:  model.NoTitle,
		Rating: model.NoRating,
		Body:   model.NoReview,
	}

	if h := sel.Find(TitleSelector).First(); h.Length() > 0 {
		r.Title = h.Text()
	}

	if rating := sel.Find(RatingSelector).First(); rating.Length() > 0 {
		if text := strings.TrimSpace(rating.Text()); text != "" {
			_, size := utf8.DecodeRuneInString(text)
			r.Rating = text[:size]
		}
	}

	if body := sel.Find(BodySelector).First(); body.Length() > 0 {
		r.Body = body.Text()
	}
	return r
}
