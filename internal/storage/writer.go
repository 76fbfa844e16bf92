package storage

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/airscrape/internal/model"
)

// recordFields is the positional shape of a consolidated record.
const recordFields = 4

// WriteResult reports how many records were written and skipped.
type WriteResult struct {
	Written int
	Skipped int
}

// Serializer writes review files.
type Serializer struct {
	logger *slog.Logger
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets a custom logger for malformed record diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Serializer) {
		s.logger = logger
	}
}

// NewSerializer creates a Serializer.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteRecords writes the header, a blank line and one line per record.
// Each record must hold exactly (airline, title, rating, body); any other
// shape is skipped with a diagnostic and never partially written.
func (s *Serializer) WriteRecords(w io.Writer, records [][]string) (WriteResult, error) {
	var res WriteResult
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "%s\n\n", Header()); err != nil {
		return res, err
	}

	for i, rec := range records {
		if len(rec) != recordFields {
			s.logger.Warn("skipping record",
				"index", i,
				"fields", len(rec),
				"record", strings.Join(rec, Separator),
				"error", ErrMalformedRecord,
			)
			res.Skipped++
			continue
		}

		verified, text := SplitVerified(rec[3])
		fields := []string{rec[0], rec[1], rec[2], verified, text}
		for j, f := range fields {
			fields[j] = escapeField(f)
		}
		if _, err := bw.WriteString(strings.Join(fields, Separator) + "\n"); err != nil {
			return res, err
		}
		res.Written++
	}

	return res, bw.Flush()
}

// Write writes labelled reviews; see WriteRecords.
func (s *Serializer) Write(w io.Writer, reviews []model.LabeledReview) (WriteResult, error) {
	records := make([][]string, len(reviews))
	for i, r := range reviews {
		records[i] = r.Fields()
	}
	return s.WriteRecords(w, records)
}

// Serialize writes reviews to path, replacing any existing file. The parent
// directory is created if needed.
func (s *Serializer) Serialize(path string, reviews []model.LabeledReview) (WriteResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return WriteResult{}, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is derived from the configured data dir
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to create review file: %w", err)
	}

	res, err := s.Write(f, reviews)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("failed to write review file: %w", err)
	}
	return res, nil
}
