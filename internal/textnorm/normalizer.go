package textnorm

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer turns raw review text into a cleaned, space-separated sequence
// of stemmed and lemmatized tokens.
//
// The stages always run in this order:
//  1. stop-word removal
//  2. punctuation stripping
//  3. repeated-character collapse
//  4. URL removal
//  5. digit removal
//  6. short-word removal
//  7. tokenize, stem, lemmatize, join with single spaces
//
// A Normalizer is not safe for concurrent use.
type Normalizer struct {
	stopwords  StopwordSet
	tokenizer  Tokenizer
	stemmer    Stemmer
	lemmatizer Lemmatizer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStopwords replaces the built-in English stop-word list.
func WithStopwords(words []string) Option {
	return func(n *Normalizer) {
		n.stopwords = NewStopwordSet(words)
	}
}

// WithTokenizer replaces the UAX #29 word tokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(n *Normalizer) {
		n.tokenizer = t
	}
}

// WithStemmer replaces the Snowball stemmer.
func WithStemmer(s Stemmer) Option {
	return func(n *Normalizer) {
		n.stemmer = s
	}
}

// WithLemmatizer replaces the dictionary lemmatizer.
// Supplying one also avoids loading the English dictionary.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) {
		n.lemmatizer = l
	}
}

// New creates a Normalizer. Unless WithLemmatizer is given the English lemma
// dictionary is loaded, which can fail.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		tokenizer: WordTokenizer{},
		stemmer:   SnowballStemmer{},
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.stopwords == nil {
		n.stopwords = EnglishStopwords()
	}
	if n.lemmatizer == nil {
		lem, err := NewEnglishLemmatizer()
		if err != nil {
			return nil, fmt.Errorf("failed to load lemmatizer: %w", err)
		}
		n.lemmatizer = lem
	}
	return n, nil
}

// Clean applies stages 1 to 6 and returns the cleaned text.
func (n *Normalizer) Clean(text string) string {
	text = norm.NFC.String(text)
	text = RemoveStopwords(text, n.stopwords)
	text = StripPunctuation(text)
	text = CollapseRepeats(text)
	text = StripURLs(text)
	text = StripDigits(text)
	return DropShortWords(text)
}

// Normalize runs every stage and returns the final token string.
// The result is empty when nothing survives cleaning.
func (n *Normalizer) Normalize(text string) string {
	tokens := n.tokenizer.Tokenize(n.Clean(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if w := n.lemmatizer.Lemma(n.stemmer.Stem(tok)); w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}
