package storage

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is reported for a record that does not have exactly
// the four positional fields (airline, title, rating, body).
var ErrMalformedRecord = errors.New("malformed record")

// ParseError is returned when a review file cannot be loaded: the file is
// missing or unreadable, the header is unusable, or a row has the wrong
// number of fields. Line is 0 when the error is not tied to a line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
