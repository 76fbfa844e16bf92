package config

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.85

// SuggestAirline returns the entry of known closest to name, compared case
// insensitively. It reports false when name already matches an entry or when
// nothing is similar enough.
func SuggestAirline(name string, known []string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return "", false
	}

	best, bestScore := "", 0.0
	for _, k := range known {
		candidate := strings.ToLower(k)
		if candidate == target {
			return "", false
		}
		if score := matchr.JaroWinkler(target, candidate, false); score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}
