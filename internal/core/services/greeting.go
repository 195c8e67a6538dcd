package services

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// greetingThreshold is the fuzzy match score above which a short input
// counts as a greeting.
const greetingThreshold = 90

// greetingMaxTokens bounds greeting detection to very short inputs so a
// real question starting with "hi" is never swallowed.
const greetingMaxTokens = 2

// isGreeting reports whether the query is a salutation rather than a
// question. Matching is fuzzy to absorb variants like "hii".
func isGreeting(query string, greetings []string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" || len(strings.Fields(trimmed)) > greetingMaxTokens {
		return false
	}

	for _, g := range greetings {
		if partialRatio(trimmed, strings.ToLower(g)) > greetingThreshold {
			return true
		}
	}
	return false
}

// partialRatio slides the shorter string over the longer one and
// returns the best edit-distance similarity of any window, scaled to
// 0-100.
func partialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := long[i : i+len(short)]
		dist := levenshtein.ComputeDistance(short, window)
		score := (len(short) - dist) * 100 / len(short)
		if score > best {
			best = score
		}
	}
	return best
}
