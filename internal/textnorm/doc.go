// Package textnorm cleans review text before sentiment scoring.
//
// Each cleaning stage is an exported function so it can be used and tested on
// its own; Normalizer chains them in a fixed order and finishes with
// tokenization, stemming and lemmatization.
package textnorm
