package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for airscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airscrape",
		Short: "Scrape airline reviews and analyze their sentiment",
		Long: `airscrape downloads the review pages of a list of airlines, extracts the
reviews into a pipe-delimited file, and reports sentiment, verification and
delay complaint statistics per airline.

Runs are recorded in a local history database so that results can be
compared over time with "airscrape history".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewRobotsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
