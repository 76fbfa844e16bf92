package model

import "time"

// FetchResult records the download of one airline page.
type FetchResult struct {
	Airline    string `json:"airline"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`

	// Path is the local file the page was written to; empty when not saved.
	Path string `json:"path,omitempty"`

	// Bytes and Hash (hex BLAKE2b-256) describe the saved body.
	Bytes int    `json:"bytes,omitempty"`
	Hash  string `json:"hash,omitempty"`

	// Error is the failure message of an unsuccessful fetch.
	Error string `json:"error,omitempty"`

	// Unchanged is set when the body hashes the same as the airline's
	// previous download. It is not stored.
	Unchanged bool `json:"unchanged,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Success reports whether the page was fetched with status 200.
func (f FetchResult) Success() bool {
	return f.Error == "" && f.StatusCode == 200
}

// AirlineCount is the number of records extracted for one airline.
// Missing is true when no cached page existed for the airline.
type AirlineCount struct {
	Airline string `json:"airline"`
	Records int    `json:"records"`
	Missing bool   `json:"missing,omitempty"`
}

// Run is the result of one airscrape run.
// Pipeline steps fill it in progressively; report writers and the run
// history database consume it.
type Run struct {
	// ID is the database identifier, zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Airlines is the configured airline list, in processing order.
	Airlines []string `json:"airlines"`

	// RobotsStatus is the status line of the compliance check, if run.
	RobotsStatus string `json:"robots_status,omitempty"`

	Fetches []FetchResult  `json:"fetches,omitempty"`
	Counts  []AirlineCount `json:"counts,omitempty"`

	// Reviews holds the consolidated records until they are written.
	Reviews []LabeledReview `json:"-"`

	// ReviewsPath is the consolidated file the run wrote and read back.
	ReviewsPath string `json:"reviews_path"`

	// SavedRecords and SkippedRecords are the serializer's row counts.
	SavedRecords   int `json:"saved_records"`
	SkippedRecords int `json:"skipped_records"`

	Table ReviewTable `json:"table"`

	Sentiment    SentimentPercentages `json:"sentiment"`
	Verification VerificationStats    `json:"verification"`
	DelaySignals []AirlineSignal      `json:"delay_signals"`
	Summaries    []AirlineSummary     `json:"airline_summaries"`

	// TopTerms maps a sentiment label to its most frequent cleaned terms.
	TopTerms map[string][]TermCount `json:"top_terms,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates an empty run for the given airlines.
func NewRun(airlines []string) *Run {
	return &Run{
		StartedAt: time.Now(),
		Airlines:  append([]string(nil), airlines...),
		TopTerms:  make(map[string][]TermCount),
	}
}

// TotalRecords returns the number of consolidated records across all airlines.
func (r *Run) TotalRecords() int {
	total := 0
	for _, c := range r.Counts {
		total += c.Records
	}
	return total
}

// SuccessfulFetches returns the number of pages downloaded with status 200.
func (r *Run) SuccessfulFetches() int {
	n := 0
	for _, f := range r.Fetches {
		if f.Success() {
			n++
		}
	}
	return n
}
