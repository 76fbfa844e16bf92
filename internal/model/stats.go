package model

// SentimentCounts holds the size of each sentiment partition.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total returns the number of labelled rows.
func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// SentimentPercentages is the share of each sentiment among all rows.
// Each value is rounded on its own, so the three need not sum to exactly 100.
type SentimentPercentages struct {
	Counts   SentimentCounts `json:"counts"`
	Total    int             `json:"total"`
	Positive Percent         `json:"positive_pct"`
	Negative Percent         `json:"negative_pct"`
	Neutral  Percent         `json:"neutral_pct"`
}

// VerificationStats describes how many reviews carry a verification tag.
type VerificationStats struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	NotVerified int `json:"not_verified"`

	VerifiedPct    Percent `json:"verified_pct"`
	NotVerifiedPct Percent `json:"not_verified_pct"`

	// NegativeTotal is the size of the Negative partition and
	// NegativeNotVerified the number of its rows without verification.
	NegativeTotal       int `json:"negative_total"`
	NegativeNotVerified int `json:"negative_not_verified"`

	// NegativeNotVerifiedPct is undefined when there are no negative rows.
	NegativeNotVerifiedPct Percent `json:"negative_not_verified_pct"`
}

// AirlineSignal is the delay complaint count of one airline.
type AirlineSignal struct {
	Airline           string `json:"airline"`
	DelayKeywordCount int    `json:"delay_keyword_count"`
}

// AirlineSummary aggregates the rows of one airline.
type AirlineSummary struct {
	Airline string          `json:"airline"`
	Reviews int             `json:"reviews"`
	Counts  SentimentCounts `json:"sentiment"`

	// RatedReviews is the number of rows with a numeric rating and
	// AverageRating their mean, rounded to one decimal place.
	// AverageRating is meaningless when RatedReviews is zero.
	RatedReviews  int     `json:"rated_reviews"`
	AverageRating float64 `json:"average_rating"`

	AveragePolarity     float64 `json:"average_polarity"`
	AverageSubjectivity float64 `json:"average_subjectivity"`
}

// TermCount is a cleaned term and the number of times it occurs.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
