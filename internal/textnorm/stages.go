package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// punctuation is the ASCII punctuation set stripped from review text.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	digitPattern = regexp.MustCompile(`\p{Nd}+`)
)

// MinWordLength is the shortest word kept by DropShortWords.
const MinWordLength = 3

// RemoveStopwords drops every whitespace-separated word found in set,
// comparing case-insensitively. Kept words retain their case and are joined
// with single spaces.
func RemoveStopwords(text string, set StopwordSet) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !set.Contains(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// StripPunctuation deletes every ASCII punctuation character.
func StripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)
}

// CollapseRepeats replaces every run of two or more identical characters with
// a single one ("soooo" becomes "so"). Newlines are left alone.
func CollapseRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	prev, started := rune(0), false
	for _, r := range text {
		if started && r == prev && r != '\n' {
			continue
		}
		b.WriteRune(r)
		prev, started = r, true
	}
	return b.String()
}

// StripURLs deletes http(s) URLs and www. addresses up to the next whitespace.
func StripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// StripDigits deletes every run of decimal digits.
func StripDigits(text string) string {
	return digitPattern.ReplaceAllString(text, "")
}

// DropShortWords drops whitespace-separated words shorter than MinWordLength
// characters and joins the rest with single spaces.
func DropShortWords(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= MinWordLength {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
