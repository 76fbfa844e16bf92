package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/airscrape/internal/fetcher"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/sentiment"
	"github.com/nao1215/airscrape/internal/storage"
)

// Step names, as recorded in model.Run.PerformedSteps.
const (
	StepRobots      = "robots"
	StepFetch       = "fetch"
	StepConsolidate = "consolidate"
	StepSave        = "save"
	StepLoad        = "load"
	StepAnalyze     = "analyze"
	StepSignals     = "signals"
	StepRecord      = "record"
)

// RobotsChecker fetches a crawler policy document.
type RobotsChecker interface {
	CheckRobots(ctx context.Context, robotsURL string) (fetcher.RobotsResult, error)
}

// RobotsStep records the status of the review site's robots.txt.
// The check is informational: an unreachable document does not fail the run.
type RobotsStep struct {
	checker RobotsChecker
	url     string
	logger  *slog.Logger
}

// RobotsStepOption configures a RobotsStep.
type RobotsStepOption func(*RobotsStep)

// WithRobotsLogger sets a custom logger for the robots step.
func WithRobotsLogger(logger *slog.Logger) RobotsStepOption {
	return func(s *RobotsStep) {
		s.logger = logger
	}
}

// NewRobotsStep creates a robots check for robotsURL.
func NewRobotsStep(checker RobotsChecker, robotsURL string, opts ...RobotsStepOption) *RobotsStep {
	s := &RobotsStep{
		checker: checker,
		url:     robotsURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RobotsStep) Name() string {
	return StepRobots
}

// Do executes the robots check.
func (s *RobotsStep) Do(ctx context.Context, run *model.Run) error {
	res, err := s.checker.CheckRobots(ctx, s.url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("robots check failed", "url", s.url, "error", err)
		run.RobotsStatus = "unreachable"
		return nil
	}
	run.RobotsStatus = res.Status
	s.logger.Info("robots check", "url", s.url, "status", res.Status)
	return nil
}

// PageDownloader downloads the review page of each airline.
type PageDownloader interface {
	Download(ctx context.Context, airlines []string) ([]model.FetchResult, error)
}

// FetchStep downloads the configured airlines' pages into the local cache.
type FetchStep struct {
	downloader PageDownloader
}

// NewFetchStep creates a download step.
func NewFetchStep(downloader PageDownloader) *FetchStep {
	return &FetchStep{downloader: downloader}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do executes the download. Failed airlines are recorded, not fatal.
func (s *FetchStep) Do(ctx context.Context, run *model.Run) error {
	results, err := s.downloader.Download(ctx, run.Airlines)
	run.Fetches = append(run.Fetches, results...)
	return err
}

// ReviewConsolidator extracts and merges the reviews of all airlines.
type ReviewConsolidator interface {
	Consolidate(ctx context.Context, airlines []string) ([]model.LabeledReview, []model.AirlineCount, error)
}

// ConsolidateStep extracts reviews from the cached pages.
type ConsolidateStep struct {
	consolidator ReviewConsolidator
}

// NewConsolidateStep creates a consolidation step.
func NewConsolidateStep(c ReviewConsolidator) *ConsolidateStep {
	return &ConsolidateStep{consolidator: c}
}

// Name returns the step name.
func (s *ConsolidateStep) Name() string {
	return StepConsolidate
}

// Do executes the consolidation.
func (s *ConsolidateStep) Do(ctx context.Context, run *model.Run) error {
	reviews, counts, err := s.consolidator.Consolidate(ctx, run.Airlines)
	if err != nil {
		return err
	}
	run.Reviews = reviews
	run.Counts = counts
	return nil
}

// SaveStep writes the consolidated reviews to the review file.
type SaveStep struct {
	serializer *storage.Serializer
	path       string
}

// NewSaveStep creates a step that writes to path.
func NewSaveStep(serializer *storage.Serializer, path string) *SaveStep {
	return &SaveStep{serializer: serializer, path: path}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return StepSave
}

// Do executes the save.
func (s *SaveStep) Do(_ context.Context, run *model.Run) error {
	res, err := s.serializer.Serialize(s.path, run.Reviews)
	if err != nil {
		return err
	}
	run.ReviewsPath = s.path
	run.SavedRecords = res.Written
	run.SkippedRecords = res.Skipped
	return nil
}

// LoadStep reads the review file back into the run's table.
// Any parse error stops the run.
type LoadStep struct {
	path   string
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a step that reads path.
func NewLoadStep(path string, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load.
func (s *LoadStep) Do(_ context.Context, run *model.Run) error {
	table, err := storage.Deserialize(s.path)
	if err != nil {
		var pe *storage.ParseError
		if errors.As(err, &pe) && pe.Line > 0 {
			s.logger.Error("review file is malformed", "path", pe.Path, "line", pe.Line)
		}
		return err
	}

	run.ReviewsPath = s.path
	run.Table = table
	s.logger.Info("loaded review file", "path", s.path, "rows", table.Len())
	for i, row := range table.Rows {
		s.logger.Debug("review",
			"index", i,
			"airline", row.Airline,
			"title", row.Title,
			"rating", row.Rating,
			"verified", row.Verified,
		)
	}
	return nil
}

// TableAnalyzer fills the derived sentiment columns of a table.
type TableAnalyzer interface {
	Analyze(ctx context.Context, table model.ReviewTable) (model.ReviewTable, error)
}

// AnalyzeStep cleans and scores every review.
type AnalyzeStep struct {
	analyzer TableAnalyzer
}

// NewAnalyzeStep creates an analysis step.
func NewAnalyzeStep(analyzer TableAnalyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: analyzer}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return StepAnalyze
}

// Do executes the analysis.
func (s *AnalyzeStep) Do(ctx context.Context, run *model.Run) error {
	table, err := s.analyzer.Analyze(ctx, run.Table)
	if err != nil {
		return fmt.Errorf("failed to analyze reviews: %w", err)
	}
	run.Table = table
	return nil
}

// SignalsStep derives the aggregate signals from the analysed table.
type SignalsStep struct {
	verifiedTag    string
	notVerifiedTag string
	delayKeywords  []string
	topTerms       int
}

// NewSignalsStep creates a signals step. topTerms is the number of terms
// kept per sentiment; zero disables term counting.
func NewSignalsStep(verifiedTag, notVerifiedTag string, delayKeywords []string, topTerms int) *SignalsStep {
	return &SignalsStep{
		verifiedTag:    verifiedTag,
		notVerifiedTag: notVerifiedTag,
		delayKeywords:  delayKeywords,
		topTerms:       topTerms,
	}
}

// Name returns the step name.
func (s *SignalsStep) Name() string {
	return StepSignals
}

// Do computes the signals.
func (s *SignalsStep) Do(_ context.Context, run *model.Run) error {
	pos, neg, neu := sentiment.Partition(run.Table)
	run.Sentiment = sentiment.Percentages(len(pos), len(neg), len(neu), run.Table.Len())
	run.Verification = sentiment.Verification(run.Table, s.verifiedTag, s.notVerifiedTag)
	run.DelaySignals = sentiment.DelaySignals(run.Table, s.delayKeywords)
	run.Summaries = sentiment.Summaries(run.Table)
	run.TopTerms = sentiment.TopTerms(run.Table, s.topTerms)
	return nil
}

// RunStore persists completed runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.Run) (int64, error)
}

// RecordStep saves the run to the history database.
type RecordStep struct {
	store RunStore
}

// NewRecordStep creates a record step.
func NewRecordStep(store RunStore) *RecordStep {
	return &RecordStep{store: store}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return StepRecord
}

// Do saves the run. FinishedAt is set if the caller has not set it.
func (s *RecordStep) Do(ctx context.Context, run *model.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if _, err := s.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
