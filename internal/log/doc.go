// Package log provides the slog setup shared by all airscrape commands.
//
// ReviewHandler wraps any slog.Handler and keeps every record on one line:
// string attributes have line breaks flattened and are truncated to a
// maximum display width. Review bodies end up in diagnostics (malformed
// records, debug dumps of loaded rows), and they are often long and
// multi-line.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Warn("skipping record", "record", body) // body is shortened
package log
