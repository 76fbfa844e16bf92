// Package model defines the data structures shared by the airscrape stages.
//
// This package contains the following main types:
//   - RawReview, LabeledReview: records produced by extraction and consolidation
//   - ReviewTable, ReviewRow: the loaded review file and its derived columns
//   - Sentiment, Percent: the polarity label and a possibly undefined percentage
//   - Run: the result of one run, consumed by reports and the run history
package model
