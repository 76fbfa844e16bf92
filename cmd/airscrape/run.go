package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/database"
	"github.com/nao1215/airscrape/internal/extractor"
	"github.com/nao1215/airscrape/internal/fetcher"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/pipeline"
	"github.com/nao1215/airscrape/internal/report"
	"github.com/nao1215/airscrape/internal/sentiment"
	"github.com/nao1215/airscrape/internal/storage"
	"github.com/nao1215/airscrape/internal/textnorm"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [airline...]",
		Short: "Scrape, consolidate and analyze airline reviews",
		Long: `Run executes the whole review flow:

  1. optionally check the review site's robots.txt (--check-robots)
  2. download each airline's review page into the data directory
     (skipped with --offline)
  3. extract up to --max-reviews reviews per page and write them to
     all_reviews.txt
  4. load the file back, clean the review text and score its sentiment
  5. compute verification, delay complaint and per-airline statistics
  6. print the report and record the run in the history database

Airlines given as arguments replace the configured list.

Examples:
  # Analyze the default airlines
  airscrape run

  # Re-analyze pages downloaded earlier, without network access
  airscrape run --offline

  # Two airlines, no throttling, Markdown report to a file
  airscrape run --delay 0 -m -o report.md "British Airways" Emirates`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addConfigFlags(cmd)

	cmd.Flags().IntP("max-reviews", "n", config.DefaultMaxReviews,
		"Maximum number of reviews extracted per airline page")
	cmd.Flags().Duration("delay", config.DefaultExtractDelay,
		"Minimum interval between two extracted reviews (0 disables throttling)")
	cmd.Flags().Bool("offline", false,
		"Skip downloading and use the pages already in the data directory")
	cmd.Flags().Bool("check-robots", false,
		"Check the review site's robots.txt before downloading")
	cmd.Flags().Int("top-terms", config.DefaultTopTerms,
		"Number of frequent terms reported per sentiment")
	cmd.Flags().Bool("no-db", false,
		"Do not record fetches and the run in the history database")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	warnUnknownAirlines(logger, cfg.Airlines)

	ctx, cancel := signalContext(logger)
	defer cancel()

	run, err := executeRun(ctx, cfg, logger)
	if run != nil {
		if reportErr := outputReport(cmd.OutOrStdout(), cfg, run); reportErr != nil {
			logger.Error("report failed", "error", reportErr)
		}
	}
	return err
}

// executeRun builds the pipeline for cfg and runs it.
// The returned run is non-nil whenever the pipeline was started, even if a
// step failed, so that a partial report can still be written.
func executeRun(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.Run, error) {
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	p, err := buildPipeline(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("starting run",
		"airlines", cfg.Airlines,
		"offline", cfg.Offline,
		"dataDir", cfg.DataDir,
		"steps", p.StepNames(),
	)

	run := model.NewRun(cfg.Airlines)
	startTime := time.Now()
	execErr := p.Execute(ctx, run)
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	// A failed run never reaches the record step; store it anyway so the
	// history shows the attempt.
	if execErr != nil && db != nil && !slices.Contains(run.PerformedSteps, pipeline.StepRecord) && !isCancelled(execErr) {
		if _, err := db.SaveRun(context.WithoutCancel(ctx), run); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}
	if execErr != nil {
		return run, fmt.Errorf("run failed: %w", execErr)
	}

	logger.Info("run completed",
		"reviews", run.Table.Len(),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
		"runID", run.ID,
	)
	return run, nil
}

// buildPipeline assembles the steps selected by cfg. db may be nil.
func buildPipeline(cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) (*pipeline.Pipeline, error) {
	client := fetcher.New(
		fetcher.WithURLTemplate(cfg.URLTemplate),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(logger),
	)
	cache := fetcher.NewCache(cfg.DataDir)

	var normOpts []textnorm.Option
	if len(cfg.Stopwords) > 0 {
		normOpts = append(normOpts, textnorm.WithStopwords(cfg.Stopwords))
	}
	normalizer, err := textnorm.New(normOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text normalizer: %w", err)
	}
	scorer := sentiment.NewScorer(sentiment.WithKeyFunc(normalizer.Normalize))

	p := pipeline.New(pipeline.WithLogger(logger))

	if cfg.CheckRobots {
		p.AddStep(pipeline.NewRobotsStep(client, cfg.RobotsURL, pipeline.WithRobotsLogger(logger)))
	}
	if !cfg.Offline {
		p.AddStep(pipeline.NewFetchStep(newDownloader(client, cache, db, logger)))
	}

	p.AddSteps(
		pipeline.NewConsolidateStep(extractor.NewConsolidator(
			cache,
			extractor.New(
				extractor.WithMaxReviews(cfg.MaxReviews),
				extractor.WithDelay(cfg.ExtractDelay),
				extractor.WithLogger(logger),
			),
			extractor.WithConsolidatorLogger(logger),
		)),
		pipeline.NewSaveStep(storage.NewSerializer(storage.WithLogger(logger)), cfg.ReviewsPath()),
		pipeline.NewLoadStep(cfg.ReviewsPath(), pipeline.WithLoadLogger(logger)),
		pipeline.NewAnalyzeStep(sentiment.NewAnalyzer(normalizer, scorer, sentiment.WithLogger(logger))),
		pipeline.NewSignalsStep(cfg.VerifiedTag, cfg.NotVerifiedTag, cfg.DelayKeywords, cfg.TopTerms),
	)

	if db != nil {
		p.AddStep(pipeline.NewRecordStep(db))
	}
	return p, nil
}

// newDownloader creates a Downloader that records fetches in db when set.
func newDownloader(client *fetcher.Client, cache *fetcher.Cache, db *database.HistoryDB, logger *slog.Logger) *fetcher.Downloader {
	opts := []fetcher.DownloaderOption{fetcher.WithDownloaderLogger(logger)}
	if db != nil {
		opts = append(opts, fetcher.WithRecorder(db))
	}
	return fetcher.NewDownloader(client, cache, opts...)
}

// outputReport writes the run in the format selected by cfg, to
// cfg.ReportFile or to stdout.
func outputReport(stdout io.Writer, cfg *config.Config, run *model.Run) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	_, err := w.Write(run)
	return err
}
