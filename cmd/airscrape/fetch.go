package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/database"
	"github.com/nao1215/airscrape/internal/fetcher"
	"github.com/nao1215/airscrape/internal/model"
	"github.com/nao1215/airscrape/internal/report"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [airline...]",
		Short: "Download airline review pages without analyzing them",
		Long: `Fetch downloads the review page of each airline into the data directory as
<slug>.html, where the slug is the lower-cased name with spaces replaced by
hyphens. A later "airscrape run --offline" works from these files.

A failed download is reported and the remaining airlines are still fetched.

Examples:
  airscrape fetch
  airscrape fetch -d pages Lufthansa "Singapore Airlines"`,
		Args: cobra.ArbitraryArgs,
		RunE: runFetchCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().Bool("no-db", false,
		"Do not record fetches in the history database")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
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

	results, err := fetchPages(ctx, cfg, logger)
	printFetchResults(cmd.OutOrStdout(), results)
	return err
}

// fetchPages downloads the pages of cfg.Airlines into cfg.DataDir.
func fetchPages(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]model.FetchResult, error) {
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	client := fetcher.New(
		fetcher.WithURLTemplate(cfg.URLTemplate),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(logger),
	)
	return newDownloader(client, fetcher.NewCache(cfg.DataDir), db, logger).Download(ctx, cfg.Airlines)
}

func printFetchResults(w io.Writer, results []model.FetchResult) {
	if len(results) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(report.TableStyle())
	t.AppendHeader(table.Row{"Airline", "Status", "Bytes", "Saved to"})

	ok := 0
	for _, r := range results {
		saved := r.Path
		switch {
		case !r.Success():
			saved = r.Error
		case r.Unchanged:
			saved += " (unchanged)"
			ok++
		default:
			ok++
		}
		t.AppendRow(table.Row{r.Airline, r.StatusCode, r.Bytes, saved})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d downloaded", ok, len(results))})
	t.Render()
}
