package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/database"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/report"
)

// Output formats of the history comparison.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// errNotEnoughRuns is returned when fewer than two runs are stored.
var errNotEnoughRuns = errors.New("at least two runs are required for a comparison (use 'airscrape run' to record one)")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs or compare the latest two",
		Long: `History reads the run history database and shows how the review picture
changed between runs:
- sentiment counts and the negative share
- reviews, delay keyword hits and average rating per airline

Without flags the latest run is compared with the one before it.

Examples:
  # List recorded runs
  airscrape history --list

  # Show the last download of every airline page
  airscrape history --fetches

  # Compare the latest run with run 3
  airscrape history --with-run-id 3

  # Comparison as JSON
  airscrape history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recorded runs")
	cmd.Flags().BoolP("fetches", "f", false,
		"Show the last download of every airline page")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs listed (0 lists all)")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	listFetches, err := cmd.Flags().GetBool("fetches")
	if err != nil {
		return err
	}
	if listFetches {
		return listFetchHistory(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return listRunHistory(ctx, out, db, limit)
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}

	format := formatText
	switch {
	case jsonOutput:
		format = formatJSON
	case markdownOutput:
		format = formatMarkdown
	}
	return runComparison(ctx, out, db, withRunID, format)
}

// listRunHistory prints the most recent runs, newest first.
func listRunHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in the database.")
		fmt.Fprintln(w, "\nUse 'airscrape run' to record one.")
		return nil
	}

	fmt.Fprintf(w, "Run history (%d runs):\n\n", len(runs))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(report.TableStyle())
	t.AppendHeader(table.Row{"ID", "Started", "Airlines", "Reviews", "Pos/Neg/Neu", "Status"})
	for _, meta := range runs {
		t.AppendRow(table.Row{
			meta.ID,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			strings.Join(meta.Airlines, ", "),
			meta.TotalRecords,
			formatCounts(meta.Counts),
			runStatus(meta.Error),
		})
	}
	t.Render()

	fmt.Fprintln(w, "\nUse 'airscrape history' to compare the latest two runs.")
	fmt.Fprintln(w, "Use 'airscrape history --with-run-id <id>' to compare with a specific run.")
	return nil
}

// listFetchHistory prints the last recorded download of every airline.
func listFetchHistory(ctx context.Context, w io.Writer, db *database.HistoryDB) error {
	fetches, err := db.ListFetchResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to list downloads: %w", err)
	}

	if len(fetches) == 0 {
		fmt.Fprintln(w, "No downloads found in the database.")
		fmt.Fprintln(w, "\nUse 'airscrape fetch' to download review pages.")
		return nil
	}

	fmt.Fprintf(w, "Downloads (%d pages):\n\n", len(fetches))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(report.TableStyle())
	t.AppendHeader(table.Row{"Airline", "Fetched", "Status", "Bytes", "Result"})
	for _, f := range fetches {
		result := "ok"
		if !f.Success() {
			result = f.Error
		}
		t.AppendRow(table.Row{
			f.Airline,
			f.FetchedAt.Format("2006-01-02 15:04:05"),
			f.StatusCode,
			f.Bytes,
			result,
		})
	}
	t.Render()
	return nil
}

// runComparison compares the latest run with withRunID, or with the run
// before it when withRunID is zero.
func runComparison(ctx context.Context, w io.Writer, db *database.HistoryDB, withRunID int64, format string) error {
	current, err := db.GetLatestRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest run: %w", err)
	}
	if current == nil {
		return errNotEnoughRuns
	}

	previousID := withRunID
	if previousID == 0 {
		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) < 2 {
			return errNotEnoughRuns
		}
		previousID = runs[1].ID
	}
	if previousID == current.ID {
		return fmt.Errorf("run %d is the latest run; choose an older run to compare with", previousID)
	}

	previous, err := db.GetRun(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", previousID, err)
	}
	if previous == nil {
		return fmt.Errorf("run %d not found (use --list to see available IDs)", previousID)
	}

	comparison := report.Compare(previous, current)
	switch format {
	case formatJSON:
		return report.WriteComparisonJSON(w, comparison)
	case formatMarkdown:
		return report.WriteComparisonMarkdown(w, comparison)
	default:
		return report.WriteComparisonText(w, comparison)
	}
}

// formatCounts renders sentiment counts as "pos/neg/neu".
func formatCounts(c model.SentimentCounts) string {
	return fmt.Sprintf("%d/%d/%d", c.Positive, c.Negative, c.Neutral)
}

func runStatus(errMsg string) string {
	if errMsg == "" {
		return "ok"
	}
	return "error"
}
