package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/database"
	"github.com/nao1215/airscrape/internal/extractor"
	"github.com/nao1215/airscrape/internal/fetcher"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/sentiment"
	"github.com/nao1215/airscrape/internal/storage"
)

type fakeRobots struct {
	res fetcher.RobotsResult
	err error
}

func (f fakeRobots) CheckRobots(context.Context, string) (fetcher.RobotsResult, error) {
	return f.res, f.err
}

func TestRobotsStep(t *testing.T) {
	t.Parallel()

	t.Run("records status", func(t *testing.T) {
		t.Parallel()

		step := NewRobotsStep(fakeRobots{res: fetcher.RobotsResult{Status: "200 OK", StatusCode: 200}}, "https://example.com/robots.txt",
			WithRobotsLogger(quietLogger()))
		run := model.NewRun(nil)
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.RobotsStatus != "200 OK" {
			t.Errorf("expected status 200 OK, got %q", run.RobotsStatus)
		}
		if step.Name() != StepRobots {
			t.Errorf("unexpected name %q", step.Name())
		}
	})

	t.Run("unreachable is not fatal", func(t *testing.T) {
		t.Parallel()

		step := NewRobotsStep(fakeRobots{err: errors.New("dial failed")}, "https://example.com/robots.txt",
			WithRobotsLogger(quietLogger()))
		run := model.NewRun(nil)
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if run.RobotsStatus != "unreachable" {
			t.Errorf("expected unreachable, got %q", run.RobotsStatus)
		}
	})
}

type fakeConsolidator struct {
	reviews []model.LabeledReview
	counts  []model.AirlineCount
	err     error
}

func (f fakeConsolidator) Consolidate(context.Context, []string) ([]model.LabeledReview, []model.AirlineCount, error) {
	return f.reviews, f.counts, f.err
}

func TestSaveAndLoadSteps(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", config.DefaultReviewsFile)
	reviews := []model.LabeledReview{
		{Airline: "Emirates", RawReview: model.RawReview{Title: "A", Rating: "9", Body: "✅ Trip Verified | great"}},
		{Airline: "Emirates", RawReview: model.RawReview{Title: "B", Rating: "1", Body: "Not Verified | terrible"}},
	}

	run := model.NewRun([]string{"Emirates"})
	steps := []Step{
		NewConsolidateStep(fakeConsolidator{reviews: reviews, counts: []model.AirlineCount{{Airline: "Emirates", Records: 2}}}),
		NewSaveStep(storage.NewSerializer(storage.WithLogger(quietLogger())), path),
		NewLoadStep(path, WithLoadLogger(quietLogger())),
	}
	for _, s := range steps {
		if err := s.Do(context.Background(), run); err != nil {
			t.Fatalf("%s: unexpected error: %v", s.Name(), err)
		}
	}

	if run.SavedRecords != 2 || run.SkippedRecords != 0 {
		t.Errorf("unexpected save counts %d/%d", run.SavedRecords, run.SkippedRecords)
	}
	if run.ReviewsPath != path {
		t.Errorf("expected reviews path %s, got %s", path, run.ReviewsPath)
	}
	if run.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", run.Table.Len())
	}
	if run.Table.Rows[1].Verified != "Not Verified" || run.Table.Rows[1].ReviewText != "terrible" {
		t.Errorf("unexpected row %+v", run.Table.Rows[1])
	}
}

func TestLoadStepParseErrorIsFatal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.txt")
	content := storage.Header() + "\n\nA | b | 1 | Not Verified\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	after := &mockStep{name: "after"}
	p := New(WithLogger(quietLogger()))
	p.AddSteps(NewLoadStep(path, WithLoadLogger(quietLogger())), after)

	run := model.NewRun(nil)
	err := p.Execute(context.Background(), run)
	var pe *storage.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *storage.ParseError, got %v", err)
	}
	if after.callCount != 0 {
		t.Error("expected run to stop at the load step")
	}
}

// wordNormalizer lower-cases text and keeps it otherwise unchanged.
type wordNormalizer struct{}

func (wordNormalizer) Normalize(text string) string { return strings.ToLower(text) }

func TestAnalyzeAndSignalsSteps(t *testing.T) {
	t.Parallel()

	run := model.NewRun([]string{"Emirates", "Qatar"})
	run.Table = model.ReviewTable{
		Columns: model.Columns(),
		Rows: []model.ReviewRow{
			{Airline: "Emirates", Rating: "9", Verified: "✅ Trip Verified", ReviewText: "great crew"},
			{Airline: "Qatar", Rating: "2", Verified: "Not Verified", ReviewText: "terrible delay late late"},
			{Airline: "Qatar", Rating: model.NoRating, Verified: "Not Verified", ReviewText: "seat"},
		},
	}

	analyzer := sentiment.NewAnalyzer(wordNormalizer{}, sentiment.NewScorer(),
		sentiment.WithLogger(quietLogger()))
	steps := []Step{
		NewAnalyzeStep(analyzer),
		NewSignalsStep(config.DefaultVerifiedTag, config.DefaultNotVerifiedTag, config.DefaultDelayKeywords(), 3),
	}
	for _, s := range steps {
		if err := s.Do(context.Background(), run); err != nil {
			t.Fatalf("%s: unexpected error: %v", s.Name(), err)
		}
	}

	wantCounts := model.SentimentCounts{Positive: 1, Negative: 1, Neutral: 1}
	if diff := cmp.Diff(wantCounts, run.Sentiment.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if run.Sentiment.Positive != model.NewPercent(33.3) {
		t.Errorf("expected 33.3%% positive, got %v", run.Sentiment.Positive)
	}
	if diff := cmp.Diff([]model.AirlineSignal{{Airline: "Qatar", DelayKeywordCount: 2}}, run.DelaySignals); diff != "" {
		t.Errorf("delay signals mismatch (-want +got):\n%s", diff)
	}
	if run.Verification.Verified != 1 || run.Verification.NotVerified != 2 {
		t.Errorf("unexpected verification %+v", run.Verification)
	}
	if run.Verification.NegativeNotVerifiedPct != model.NewPercent(100) {
		t.Errorf("expected 100%% of negatives unverified, got %v", run.Verification.NegativeNotVerifiedPct)
	}
	if len(run.Summaries) != 2 {
		t.Errorf("expected 2 airline summaries, got %d", len(run.Summaries))
	}
	if terms := run.TopTerms["Negative"]; len(terms) == 0 || terms[0] != (model.TermCount{Term: "late", Count: 2}) {
		t.Errorf("unexpected negative top terms %v", terms)
	}
}

type fakeStore struct {
	saved *model.Run
	err   error
}

func (f *fakeStore) SaveRun(_ context.Context, run *model.Run) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = run
	run.ID = 7
	return 7, nil
}

func TestRecordStep(t *testing.T) {
	t.Parallel()

	t.Run("saves and stamps finish time", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		run := model.NewRun(nil)
		if err := NewRecordStep(store).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.saved != run || run.ID != 7 {
			t.Error("expected run to be saved")
		}
		if run.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
	})

	t.Run("wraps store errors", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("disk full")
		err := NewRecordStep(&fakeStore{err: wantErr}).Do(context.Background(), model.NewRun(nil))
		if !errors.Is(err, wantErr) {
			t.Errorf("expected wrapped %v, got %v", wantErr, err)
		}
	})
}

const reviewPage = `<html><body>
<article class="comp_media-review-rated">
  <h2>"Superb"</h2>
  <div class="rating-10">9/10</div>
  <div class="text_content">✅ Trip Verified | great and friendly crew</div>
</article>
<article class="comp_media-review-rated">
  <h2>"Never again"</h2>
  <div class="rating-10">1/10</div>
  <div class="text_content">Not Verified | terrible delay and late bags</div>
</article>
</body></html>`

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/emirates/" {
			_, _ = w.Write([]byte(reviewPage))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "db"), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := quietLogger()
	cache := fetcher.NewCache(filepath.Join(dir, "data"))
	client := fetcher.New(fetcher.WithURLTemplate(srv.URL+"/"+config.AirlinePlaceholder+"/"), fetcher.WithLogger(logger))
	reviewsPath := filepath.Join(cache.Dir(), config.DefaultReviewsFile)

	analyzer := sentiment.NewAnalyzer(wordNormalizer{}, sentiment.NewScorer(),
		sentiment.WithLogger(logger))

	p := New(WithLogger(logger))
	p.AddSteps(
		NewFetchStep(fetcher.NewDownloader(client, cache, fetcher.WithRecorder(db), fetcher.WithDownloaderLogger(logger))),
		NewConsolidateStep(extractor.NewConsolidator(cache, extractor.New(extractor.WithDelay(0), extractor.WithLogger(logger)),
			extractor.WithConsolidatorLogger(logger))),
		NewSaveStep(storage.NewSerializer(storage.WithLogger(logger)), reviewsPath),
		NewLoadStep(reviewsPath, WithLoadLogger(logger)),
		NewAnalyzeStep(analyzer),
		NewSignalsStep(config.DefaultVerifiedTag, config.DefaultNotVerifiedTag, config.DefaultDelayKeywords(), 5),
		NewRecordStep(db),
	)

	run := model.NewRun([]string{"Emirates", "Air Nowhere"})
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.SuccessfulFetches() != 1 || len(run.Fetches) != 2 {
		t.Errorf("expected 1 of 2 fetches to succeed, got %+v", run.Fetches)
	}
	wantCounts := []model.AirlineCount{{Airline: "Emirates", Records: 2}, {Airline: "Air Nowhere", Missing: true}}
	if diff := cmp.Diff(wantCounts, run.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if run.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", run.Table.Len())
	}
	if run.Table.Rows[0].Sentiment != model.SentimentPositive || run.Table.Rows[1].Sentiment != model.SentimentNegative {
		t.Errorf("unexpected sentiments %v / %v", run.Table.Rows[0].Sentiment, run.Table.Rows[1].Sentiment)
	}
	if diff := cmp.Diff([]model.AirlineSignal{{Airline: "Emirates", DelayKeywordCount: 2}}, run.DelaySignals); diff != "" {
		t.Errorf("delay signals mismatch (-want +got):\n%s", diff)
	}
	if run.ID == 0 {
		t.Error("expected run to be recorded")
	}

	wantSteps := []string{StepFetch, StepConsolidate, StepSave, StepLoad, StepAnalyze, StepSignals, StepRecord}
	if diff := cmp.Diff(wantSteps, run.PerformedSteps); diff != "" {
		t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
	}

	stored, err := db.GetRun(context.Background(), run.ID)
	if err != nil || stored == nil {
		t.Fatalf("failed to load stored run: %v", err)
	}
	if stored.Table.Len() != 2 {
		t.Errorf("expected stored table of 2 rows, got %d", stored.Table.Len())
	}

	fetched, err := db.GetFetchResult(context.Background(), "Emirates")
	if err != nil || fetched == nil || fetched.Hash == "" {
		t.Errorf("expected recorded fetch with hash, got %+v (%v)", fetched, err)
	}
}
