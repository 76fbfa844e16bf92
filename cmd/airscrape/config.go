package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/airscrape/internal/config"
	applog "github.com/nao1215/airscrape/internal/log"
)

// addConfigFlags registers the flags shared by the commands that work on the
// airline list: run and fetch.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .airscrape in current or home directory)")
	cmd.Flags().StringP("data-dir", "d", config.DefaultDataDir,
		"Directory for downloaded pages and the review file")
}

// buildConfig creates a Config from defaults, the configuration file and the
// command flags, in that order. Positional arguments replace the airline list.
// Only flags set on the command line override values from the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = stringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	// An explicitly named file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if len(args) > 0 {
		cfg.Airlines = append([]string(nil), args...)
	}

	if changed(cmd, "data-dir") {
		if cfg.DataDir, err = cmd.Flags().GetString("data-dir"); err != nil {
			return nil, err
		}
	}
	if changed(cmd, "max-reviews") {
		if cfg.MaxReviews, err = cmd.Flags().GetInt("max-reviews"); err != nil {
			return nil, err
		}
	}
	if changed(cmd, "delay") {
		if cfg.ExtractDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if changed(cmd, "top-terms") {
		if cfg.TopTerms, err = cmd.Flags().GetInt("top-terms"); err != nil {
			return nil, err
		}
	}

	if cfg.Offline, err = boolFlag(cmd, "offline"); err != nil {
		return nil, err
	}
	if cfg.CheckRobots, err = boolFlag(cmd, "check-robots"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = boolFlag(cmd, "json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = boolFlag(cmd, "markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = stringFlag(cmd, "output"); err != nil {
		return nil, err
	}

	noDB, err := boolFlag(cmd, "no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// changed reports whether the named flag exists on cmd and was set.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// stringFlag returns the named flag, or "" when cmd does not define it.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}

// boolFlag returns the named flag, or false when cmd does not define it.
func boolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	return cmd.Flags().GetBool(name)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the stderr logger and installs it as the default.
func setupLogger(verbose bool) *slog.Logger {
	logger := applog.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// warnUnknownAirlines logs a suggestion for every configured airline that
// looks like a misspelling of a default one.
func warnUnknownAirlines(logger *slog.Logger, airlines []string) {
	known := config.DefaultAirlines()
	for _, a := range airlines {
		if s, ok := config.SuggestAirline(a, known); ok {
			logger.Warn("unknown airline, did you mean another one?", "airline", a, "suggestion", s)
		}
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// isCancelled reports whether err comes from an interrupted run.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
