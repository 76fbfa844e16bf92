package textnorm

import (
	_ "embed"
	"strings"

	"golang.org/x/text/cases"
)

//go:embed stopwords_en.txt
var englishStopwords string

// StopwordSet is a case-insensitive set of words removed from review text.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from words. Matching is case-insensitive.
func NewStopwordSet(words []string) StopwordSet {
	fold := cases.Fold()
	set := make(StopwordSet, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[fold.String(w)] = struct{}{}
	}
	return set
}

// EnglishStopwords returns the built-in English stop-word list.
func EnglishStopwords() StopwordSet {
	return NewStopwordSet(strings.Split(englishStopwords, "\n"))
}

// Contains reports whether word is in the set, ignoring case.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[cases.Fold().String(word)]
	return ok
}
