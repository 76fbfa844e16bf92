package model

import "fmt"

// Sentiment is the label derived from a polarity score.
type Sentiment int

const (
	// SentimentUnknown is the zero value of a row that has not been scored.
	SentimentUnknown Sentiment = iota

	// SentimentPositive is assigned when polarity > 0.
	SentimentPositive

	// SentimentNegative is assigned when polarity < 0.
	SentimentNegative

	// SentimentNeutral is assigned when polarity == 0.
	SentimentNeutral
)

// Sentiments returns the three assignable labels in report order.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// String returns a human-readable representation of the sentiment.
func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "Positive"
	case SentimentNegative:
		return "Negative"
	case SentimentNeutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// ParseSentiment converts the output of String back to a Sentiment.
func ParseSentiment(s string) (Sentiment, error) {
	switch s {
	case "Positive":
		return SentimentPositive, nil
	case "Negative":
		return SentimentNegative, nil
	case "Neutral":
		return SentimentNeutral, nil
	case "Unknown", "":
		return SentimentUnknown, nil
	default:
		return SentimentUnknown, fmt.Errorf("unknown sentiment %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sentiment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sentiment) UnmarshalText(text []byte) error {
	v, err := ParseSentiment(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
