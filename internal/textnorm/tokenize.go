package textnorm

import (
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/clipperhouse/uax29/v2/words"
	"github.com/kljensen/snowball/english"
)

// Tokenizer splits cleaned text into tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Stemmer reduces a token to its stem.
type Stemmer interface {
	Stem(word string) string
}

// Lemmatizer maps a token to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// StemmerFunc adapts a function to the Stemmer interface.
type StemmerFunc func(string) string

// Stem calls f(word).
func (f StemmerFunc) Stem(word string) string { return f(word) }

// LemmatizerFunc adapts a function to the Lemmatizer interface.
type LemmatizerFunc func(string) string

// Lemma calls f(word).
func (f LemmatizerFunc) Lemma(word string) string { return f(word) }

// WordTokenizer segments text on Unicode word boundaries (UAX #29).
// Hashtags and mentions stay attached to their leading '#' or '@'.
type WordTokenizer struct{}

// Tokenize returns every non-blank segment of text in order.
func (WordTokenizer) Tokenize(text string) []string {
	iter := words.FromString(text)
	iter.Joiners(&words.Joiners[string]{Leading: []rune{'#', '@'}})

	var tokens []string
	for iter.Next() {
		tok := iter.Value()
		if strings.TrimFunc(tok, unicode.IsSpace) == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// SnowballStemmer is the English Snowball (Porter2) stemmer.
type SnowballStemmer struct{}

// Stem lower-cases and stems word. Stop words are stemmed as well.
func (SnowballStemmer) Stem(word string) string {
	return english.Stem(word, true)
}

// NewEnglishLemmatizer loads the English lemma dictionary.
func NewEnglishLemmatizer() (Lemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, err
	}
	return lem, nil
}
