package sentiment

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/airscrape/internal/model"
)

// Label maps a polarity score to its sentiment.
// Exactly zero is Neutral; it is not folded into either side.
func Label(polarity float64) model.Sentiment {
	switch {
	case polarity > 0:
		return model.SentimentPositive
	case polarity < 0:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Partition splits rows by sentiment, preserving row order within each part.
// Rows that have not been labelled yet are placed by their polarity.
func Partition(table model.ReviewTable) (positive, negative, neutral []model.ReviewRow) {
	for _, row := range table.Rows {
		s := row.Sentiment
		if s == model.SentimentUnknown {
			s = Label(row.Polarity)
		}
		switch s {
		case model.SentimentPositive:
			positive = append(positive, row)
		case model.SentimentNegative:
			negative = append(negative, row)
		default:
			neutral = append(neutral, row)
		}
	}
	return positive, negative, neutral
}

// Percentages returns the share of each partition size against total,
// rounded independently to one decimal place. All three are undefined when
// total is zero.
func Percentages(positive, negative, neutral, total int) model.SentimentPercentages {
	return model.SentimentPercentages{
		Counts:   model.SentimentCounts{Positive: positive, Negative: negative, Neutral: neutral},
		Total:    total,
		Positive: model.Ratio(positive, total),
		Negative: model.Ratio(negative, total),
		Neutral:  model.Ratio(neutral, total),
	}
}

// Verification counts rows carrying verifiedTag and notVerifiedTag and the
// not-verified share of the Negative partition.
func Verification(table model.ReviewTable, verifiedTag, notVerifiedTag string) model.VerificationStats {
	st := model.VerificationStats{Total: table.Len()}
	for _, row := range table.Rows {
		switch row.Verified {
		case verifiedTag:
			st.Verified++
		case notVerifiedTag:
			st.NotVerified++
		}
	}
	st.VerifiedPct = model.Ratio(st.Verified, st.Total)
	st.NotVerifiedPct = model.Ratio(st.NotVerified, st.Total)

	_, negative, _ := Partition(table)
	st.NegativeTotal = len(negative)
	for _, row := range negative {
		if row.Verified == notVerifiedTag {
			st.NegativeNotVerified++
		}
	}
	st.NegativeNotVerifiedPct = model.Ratio(st.NegativeNotVerified, st.NegativeTotal)
	return st
}

// DelaySignals counts delay complaints per airline among Negative rows.
// Each review adds one for every distinct keyword among its lower-cased,
// whitespace-separated cleaned tokens. Airlines appear in the order their
// first negative review appears; airlines without negative reviews are absent.
func DelaySignals(table model.ReviewTable, keywords []string) []model.AirlineSignal {
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[strings.ToLower(k)] = struct{}{}
	}

	_, negative, _ := Partition(table)

	var out []model.AirlineSignal
	index := make(map[string]int)
	for _, row := range negative {
		i, ok := index[row.Airline]
		if !ok {
			i = len(out)
			index[row.Airline] = i
			out = append(out, model.AirlineSignal{Airline: row.Airline})
		}

		seen := make(map[string]struct{})
		for _, tok := range strings.Fields(strings.ToLower(row.CleanReview)) {
			if _, hit := kw[tok]; hit {
				seen[tok] = struct{}{}
			}
		}
		out[i].DelayKeywordCount += len(seen)
	}
	return out
}

// Summaries aggregates rows per airline in first-appearance order.
func Summaries(table model.ReviewTable) []model.AirlineSummary {
	var out []model.AirlineSummary
	index := make(map[string]int)
	ratingSum := make(map[string]int)

	for _, row := range table.Rows {
		i, ok := index[row.Airline]
		if !ok {
			i = len(out)
			index[row.Airline] = i
			out = append(out, model.AirlineSummary{Airline: row.Airline})
		}
		s := &out[i]
		s.Reviews++
		switch row.Sentiment {
		case model.SentimentPositive:
			s.Counts.Positive++
		case model.SentimentNegative:
			s.Counts.Negative++
		case model.SentimentNeutral:
			s.Counts.Neutral++
		}
		if n, ok := row.NumericRating(); ok {
			s.RatedReviews++
			ratingSum[row.Airline] += n
		}
		s.AveragePolarity += row.Polarity
		s.AverageSubjectivity += row.Subjectivity
	}

	for i := range out {
		s := &out[i]
		if s.RatedReviews > 0 {
			s.AverageRating = model.Round1(float64(ratingSum[s.Airline]) / float64(s.RatedReviews))
		}
		s.AveragePolarity /= float64(s.Reviews)
		s.AverageSubjectivity /= float64(s.Reviews)
	}
	return out
}

// TopTerms returns up to n most frequent cleaned terms for each sentiment,
// keyed by the sentiment label. Ties are broken alphabetically.
func TopTerms(table model.ReviewTable, n int) map[string][]model.TermCount {
	out := make(map[string][]model.TermCount)
	if n <= 0 {
		return out
	}

	counts := make(map[model.Sentiment]map[string]int)
	for _, row := range table.Rows {
		if counts[row.Sentiment] == nil {
			counts[row.Sentiment] = make(map[string]int)
		}
		for _, tok := range strings.Fields(row.CleanReview) {
			counts[row.Sentiment][tok]++
		}
	}

	for s, terms := range counts {
		if len(terms) == 0 {
			continue
		}
		list := make([]model.TermCount, 0, len(terms))
		for term, c := range terms {
			list = append(list, model.TermCount{Term: term, Count: c})
		}
		slices.SortFunc(list, func(a, b model.TermCount) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return strings.Compare(a.Term, b.Term)
		})
		if len(list) > n {
			list = list[:n]
		}
		out[s.String()] = list
	}
	return out
}
