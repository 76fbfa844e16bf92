// Package sentiment scores cleaned review text and derives the run's
// statistics from the scored table.
//
// Scoring uses the VADER lexicon through github.com/jonreiter/govader.
// Polarity is the compound score; subjectivity is the share of valence
// carried by opinion words. The analyzer scores the cleaned text, so
// negations and boosters that are stop words or two letters long ("not",
// "no", "very", "so") never reach the scorer. The remaining functions are
// pure folds over a model.ReviewTable: labels, partitions, percentages,
// verification counts, delay complaint signals, per-airline summaries and
// frequent terms.
//
// Percentages over an empty population are reported as undefined
// (model.Percent with Valid false) instead of failing.
package sentiment
