package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/database"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/pipeline"
	"github.com/nao1215/airscrape/internal/report"
)

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

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReviewServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/emirates/" {
			_, _ = w.Write([]byte(reviewPage))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Airlines = []string{"Emirates", "Air Nowhere"}
	cfg.URLTemplate = serverURL + "/" + config.AirlinePlaceholder + "/"
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.DBDir = filepath.Join(dir, "db")
	cfg.ExtractDelay = 0
	return cfg
}

func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "config", shorthand: "c", defValue: ""},
		{name: "data-dir", shorthand: "d", defValue: config.DefaultDataDir},
		{name: "max-reviews", shorthand: "n", defValue: "20"},
		{name: "delay", defValue: "5s"},
		{name: "offline", defValue: "false"},
		{name: "check-robots", defValue: "false"},
		{name: "top-terms", defValue: "10"},
		{name: "no-db", defValue: "false"},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "output", shorthand: "o", defValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		if getVerboseFlag(NewRunCmd()) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		runCmd, _, err := root.Find([]string{"run"})
		if err != nil {
			t.Fatalf("failed to find run command: %v", err)
		}
		if !getVerboseFlag(runCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cfg, err := buildConfig(NewRunCmd(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(config.DefaultAirlines(), cfg.Airlines); diff != "" {
			t.Errorf("airlines mismatch (-want +got):\n%s", diff)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB by default")
		}
		if cfg.MaxReviews != config.DefaultMaxReviews || cfg.ExtractDelay != config.DefaultExtractDelay {
			t.Errorf("unexpected defaults: %d, %s", cfg.MaxReviews, cfg.ExtractDelay)
		}
	})

	t.Run("arguments replace airlines", func(t *testing.T) {
		cfg, err := buildConfig(NewRunCmd(), []string{"Lufthansa", "Qatar"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"Lufthansa", "Qatar"}, cfg.Airlines); diff != "" {
			t.Errorf("airlines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("flags are applied", func(t *testing.T) {
		cmd := NewRunCmd()
		_ = cmd.Flags().Set("max-reviews", "5")
		_ = cmd.Flags().Set("delay", "0")
		_ = cmd.Flags().Set("offline", "true")
		_ = cmd.Flags().Set("markdown", "true")
		_ = cmd.Flags().Set("no-db", "true")
		_ = cmd.Flags().Set("output", "/tmp/report.md")
		_ = cmd.Flags().Set("data-dir", "pages")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxReviews != 5 || cfg.ExtractDelay != 0 {
			t.Errorf("expected max 5 and no delay, got %d, %s", cfg.MaxReviews, cfg.ExtractDelay)
		}
		if !cfg.Offline || !cfg.MarkdownReport || cfg.SaveToDB {
			t.Errorf("unexpected switches: offline=%v markdown=%v db=%v", cfg.Offline, cfg.MarkdownReport, cfg.SaveToDB)
		}
		if cfg.ReportFile != "/tmp/report.md" || cfg.DataDir != "pages" {
			t.Errorf("unexpected paths: %q, %q", cfg.ReportFile, cfg.DataDir)
		}
	})

	t.Run("config file is applied and flags override it", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "airscrape.yaml")
		content := []byte(`
airlines:
  - Lufthansa
maxReviews: 3
delay: 250ms
delayKeywords:
  - stuck
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", configPath)
		_ = cmd.Flags().Set("max-reviews", "7")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"Lufthansa"}, cfg.Airlines); diff != "" {
			t.Errorf("airlines mismatch (-want +got):\n%s", diff)
		}
		if cfg.MaxReviews != 7 {
			t.Errorf("expected flag to override file, got %d", cfg.MaxReviews)
		}
		if cfg.ExtractDelay != 250*time.Millisecond {
			t.Errorf("expected delay from file, got %s", cfg.ExtractDelay)
		}
		if diff := cmp.Diff([]string{"stuck"}, cfg.DelayKeywords); diff != "" {
			t.Errorf("keywords mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := buildConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte(`{invalid yaml`), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", configPath)
		if _, err := buildConfig(cmd, nil); err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("fetch command ignores run-only flags", func(t *testing.T) {
		cfg, err := buildConfig(NewFetchCmd(), []string{"Emirates"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JSONReport || cfg.Offline {
			t.Error("expected run-only switches to stay off")
		}
	})
}

func TestRunCmdRejectsConflictingFormats(t *testing.T) {
	cmd := NewRunCmd()
	cmd.SetArgs([]string{"--json", "--markdown", "--no-db"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrConflictingReportFormats) {
		t.Errorf("expected ErrConflictingReportFormats, got %v", err)
	}
}

func TestExecuteRun(t *testing.T) {
	t.Parallel()

	srv := newReviewServer(t)
	cfg := testConfig(t, srv.URL)
	ctx := context.Background()

	run, err := executeRun(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCounts := []model.AirlineCount{{Airline: "Emirates", Records: 2}, {Airline: "Air Nowhere", Missing: true}}
	if diff := cmp.Diff(wantCounts, run.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if run.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", run.Table.Len())
	}
	if run.Sentiment.Counts.Positive != 1 || run.Sentiment.Counts.Negative != 1 {
		t.Errorf("unexpected sentiment counts %+v", run.Sentiment.Counts)
	}
	if run.ID == 0 {
		t.Error("expected run to be recorded")
	}
	if _, err := os.Stat(cfg.ReviewsPath()); err != nil {
		t.Errorf("expected review file: %v", err)
	}

	// A second, offline run works from the cached pages.
	srv.Close()
	cfg.Offline = true
	second, err := executeRun(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error in offline run: %v", err)
	}
	if second.Table.Len() != 2 {
		t.Errorf("expected 2 rows offline, got %d", second.Table.Len())
	}
	if len(second.Fetches) != 0 {
		t.Errorf("expected no downloads offline, got %d", len(second.Fetches))
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var buf bytes.Buffer
	if err := runComparison(ctx, &buf, db, 0, formatJSON); err != nil {
		t.Fatalf("unexpected comparison error: %v", err)
	}
	var c report.RunComparison
	if err := json.Unmarshal(buf.Bytes(), &c); err != nil {
		t.Fatalf("invalid comparison JSON: %v", err)
	}
	if c.Previous.ID != run.ID || c.Current.ID != second.ID {
		t.Errorf("expected #%d vs #%d, got #%d vs #%d", run.ID, second.ID, c.Previous.ID, c.Current.ID)
	}
	if c.Trend != report.TrendUnchanged {
		t.Errorf("expected unchanged trend, got %s", c.Trend)
	}
}

func TestExecuteRunRecordsFailedRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Offline = true

	// A regular file where the data directory should be makes the save step fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	cfg.DataDir = blocker

	run, err := executeRun(context.Background(), cfg, quietLogger())
	if err == nil {
		t.Fatal("expected run to fail")
	}
	if run == nil || run.ErrorMessage == "" {
		t.Fatalf("expected failed run with error message, got %+v", run)
	}
	if diff := cmp.Diff([]string{pipeline.StepConsolidate}, run.PerformedSteps); diff != "" {
		t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Error == "" {
		t.Errorf("expected one failed run in history, got %+v", runs)
	}
}

func TestBuildPipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		offline     bool
		checkRobots bool
		withDB      bool
		want        []string
	}{
		{
			name:    "offline without database",
			offline: true,
			want:    []string{pipeline.StepConsolidate, pipeline.StepSave, pipeline.StepLoad, pipeline.StepAnalyze, pipeline.StepSignals},
		},
		{
			name:        "full run",
			checkRobots: true,
			withDB:      true,
			want: []string{
				pipeline.StepRobots, pipeline.StepFetch, pipeline.StepConsolidate, pipeline.StepSave,
				pipeline.StepLoad, pipeline.StepAnalyze, pipeline.StepSignals, pipeline.StepRecord,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t, "http://127.0.0.1:0")
			cfg.Offline = tt.offline
			cfg.CheckRobots = tt.checkRobots

			var db *database.HistoryDB
			if tt.withDB {
				var err error
				db, err = database.Open(cfg.DBDir, database.DefaultOptions())
				if err != nil {
					t.Fatalf("failed to open database: %v", err)
				}
				t.Cleanup(func() { _ = db.Close() })
			}

			p, err := buildPipeline(cfg, db, quietLogger())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, p.StepNames()); diff != "" {
				t.Errorf("steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOutputReport(t *testing.T) {
	t.Parallel()

	run := model.NewRun([]string{"Emirates"})

	t.Run("json to nested file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.json")

		if err := outputReport(io.Discard, cfg, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var got report.JSONReport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version == "" || got.Run == nil {
			t.Errorf("expected versioned report, got %+v", got)
		}
	})

	t.Run("markdown to stdout", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.MarkdownReport = true

		var buf bytes.Buffer
		if err := outputReport(&buf, cfg, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "# Airline Review Report") {
			t.Error("expected Markdown report")
		}
	})

	t.Run("text by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputReport(&buf, config.NewConfig(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "AIRLINE REVIEW REPORT") {
			t.Error("expected text report")
		}
	})
}
