package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/airscrape/internal/config"
	"github.com/nao1215/airscrape/internal/fetcher"
)

// NewRobotsCmd creates the robots command.
func NewRobotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "robots",
		Short: "Print the review site's robots.txt",
		Long: `Robots fetches the crawler policy of the review site and prints its HTTP
status and body. The result is informational; airscrape does not interpret
the rules.`,
		Args: cobra.NoArgs,
		RunE: runRobotsCmd,
	}

	cmd.Flags().StringP("url", "u", config.DefaultRobotsURL, "robots.txt URL to check")

	return cmd
}

// runRobotsCmd executes the robots command.
func runRobotsCmd(cmd *cobra.Command, _ []string) error {
	robotsURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	ctx, cancel := signalContext(logger)
	defer cancel()

	client := fetcher.New(fetcher.WithUserAgent(config.DefaultUserAgent), fetcher.WithLogger(logger))
	res, err := client.CheckRobots(ctx, robotsURL)
	if err != nil {
		return fmt.Errorf("robots check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "URL:    %s\n", res.URL)
	fmt.Fprintf(out, "Status: %s\n\n", res.Status)
	fmt.Fprintln(out, res.Body)
	return nil
}
