package fetcher

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by Cache.Open when no page has been saved
// for an airline.
var ErrDocumentNotFound = errors.New("document not found")

// FetchError describes a failed page download: either a transport failure
// (Err is set) or a response whose status is not 200.
type FetchError struct {
	Airline    string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s (%s): %v", e.Airline, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s (%s): unexpected status %d", e.Airline, e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}
