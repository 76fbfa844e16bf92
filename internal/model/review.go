package model

import (
	"strconv"
	"strings"
)

// Sentinel values stored when a review container lacks the expected element.
const (
	NoTitle  = "No Title"
	NoRating = "No Rating"
	NoReview = "No Review"
)

// Column names of the consolidated review file, in file order.
const (
	ColumnAirline    = "Airline Name"
	ColumnTitle      = "Title"
	ColumnRating     = "Rating"
	ColumnVerified   = "Verified"
	ColumnReviewText = "Review_Text"
)

// Columns returns the column names of the consolidated review file.
func Columns() []string {
	return []string{ColumnAirline, ColumnTitle, ColumnRating, ColumnVerified, ColumnReviewText}
}

// RawReview is one review record as extracted from a page.
// Every field is always set, either to the element text or to its sentinel.
type RawReview struct {
	Title  string `json:"title"`
	Rating string `json:"rating"`
	Body   string `json:"body"`
}

// LabeledReview is a RawReview tagged with the airline it was scraped for.
type LabeledReview struct {
	Airline string `json:"airline"`
	RawReview
}

// Fields returns the positional form (airline, title, rating, body) used when
// the review is written to the consolidated file.
func (r LabeledReview) Fields() []string {
	return []string{r.Airline, r.Title, r.Rating, r.Body}
}

// ReviewRow is one row of the review table.
// The first five fields are loaded from the consolidated file; the rest are
// filled in by the analysis stages.
type ReviewRow struct {
	Airline    string `json:"airline"`
	Title      string `json:"title"`
	Rating     string `json:"rating"`
	Verified   string `json:"verified"`
	ReviewText string `json:"review_text"`

	// CleanReview is the normalized form of ReviewText.
	CleanReview string `json:"clean_review,omitempty"`

	// Polarity is in [-1, 1]; Subjectivity is in [0, 1].
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`

	Sentiment Sentiment `json:"sentiment"`
}

// NumericRating returns the rating as an integer.
// The second return value is false for the NoRating sentinel or any
// non-numeric value.
func (r ReviewRow) NumericRating() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Rating))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ReviewTable is the in-memory form of the consolidated review file.
type ReviewTable struct {
	Columns []string    `json:"columns"`
	Rows    []ReviewRow `json:"rows"`
}

// Len returns the number of rows.
func (t ReviewTable) Len() int {
	return len(t.Rows)
}

// Clone returns a copy whose slices do not share memory with t.
// Analysis stages work on clones so the loaded table is never modified.
func (t ReviewTable) Clone() ReviewTable {
	out := ReviewTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]ReviewRow, len(t.Rows)),
	}
	copy(out.Rows, t.Rows)
	return out
}
