package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoAirlines is returned when the airline list is empty.
	ErrNoAirlines = errors.New("no airlines configured")

	// ErrEmptyAirline is returned when an airline name is blank.
	ErrEmptyAirline = errors.New("invalid airline: name must not be blank")

	// ErrInvalidURLTemplate is returned when the URL template lacks the
	// {airline} placeholder.
	ErrInvalidURLTemplate = errors.New("invalid url template: must contain {airline}")

	// ErrInvalidMaxReviews is returned when the per-page record cap is not positive.
	ErrInvalidMaxReviews = errors.New("invalid max reviews: must be positive")

	// ErrInvalidDelay is returned when the extraction delay is negative.
	// Use 0 to disable throttling.
	ErrInvalidDelay = errors.New("invalid extract delay: must be non-negative")

	// ErrInvalidTopTerms is returned when the top term count is negative.
	ErrInvalidTopTerms = errors.New("invalid top terms: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoDataDir is returned when the data directory or review file name is empty.
	ErrNoDataDir = errors.New("invalid data location: data dir and reviews file must be set")
)
