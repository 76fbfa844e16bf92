package sentiment

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/jonreiter/govader"
)

// Scorer computes polarity and subjectivity of cleaned text with the VADER
// lexicon.
type Scorer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// ScorerOption configures a Scorer.
type ScorerOption func(*scorerOptions)

type scorerOptions struct {
	key func(string) string
}

// WithKeyFunc indexes every lexicon term a second time under key(term).
// Passing the text normalizer lets stemmed and lemmatized review text match
// dictionary words. Exact terms always take precedence over derived keys;
// terms sharing a derived key contribute their mean valence.
func WithKeyFunc(key func(string) string) ScorerOption {
	return func(o *scorerOptions) {
		o.key = key
	}
}

// NewScorer creates a Scorer over the VADER lexicon.
func NewScorer(opts ...ScorerOption) *Scorer {
	var o scorerOptions
	for _, opt := range opts {
		opt(&o)
	}

	vader := govader.NewSentimentIntensityAnalyzer()
	if o.key != nil {
		addDerivedKeys(vader.Lexicon, o.key)
	}
	return &Scorer{vader: vader}
}

// addDerivedKeys adds key(term) for every term of lexicon. Keys that are
// empty or span several tokens are skipped.
func addDerivedKeys(lexicon map[string]float64, key func(string) string) {
	type acc struct {
		sum float64
		n   int
	}
	derived := make(map[string]*acc)
	for _, term := range slices.Sorted(maps.Keys(lexicon)) {
		k := key(term)
		if k == "" || k == term || strings.ContainsRune(k, ' ') {
			continue
		}
		if _, exact := lexicon[k]; exact {
			continue
		}
		a, ok := derived[k]
		if !ok {
			a = &acc{}
			derived[k] = a
		}
		a.sum += lexicon[term]
		a.n++
	}
	for k, a := range derived {
		lexicon[k] = a.sum / float64(a.n)
	}
}

// Score returns the polarity in [-1, 1] and subjectivity in [0, 1] of text.
// Polarity is the VADER compound score; subjectivity is the share of the
// text's valence carried by positive and negative words. Text without any
// recognised word scores (0, 0).
func (s *Scorer) Score(text string) (polarity, subjectivity float64) {
	if strings.TrimSpace(text) == "" {
		return 0, 0
	}
	v := s.vader.PolarityScores(text)
	return clamp(v.Compound, -1, 1), clamp(v.Positive+v.Negative, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
