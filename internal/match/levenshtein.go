package match

import (
	"fmt"

	"enricher/internal/property"
)

// MinSimilarity is the lowest score Closest accepts.
const MinSimilarity = 0.6

// Distance returns the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	if len(ra) == 0 {
		return len(rb)
	}

	// two rows over the shorter string
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Similarity scores a against b in [0, 1] after normalizing both as
// identifiers, so user_name and UserName score 1.
func Similarity(a, b string) float64 {
	na, nb := property.NormalizeIdent(a), property.NormalizeIdent(b)

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(na, nb))/float64(longest)
}

// Closest returns the candidate most similar to name. Ties keep the first
// candidate. ok is false when no candidate reaches MinSimilarity.
func Closest(name string, candidates []string) (best string, ok bool) {
	bestScore := MinSimilarity

	for _, c := range candidates {
		if c == name {
			continue
		}

		if s := Similarity(name, c); s > bestScore || (s == bestScore && !ok) {
			best, bestScore, ok = c, s, true
		}
	}

	return best, ok
}

// Hint formats a suggestion for name, or returns "" without one.
func Hint(name string, candidates []string) string {
	if c, ok := Closest(name, candidates); ok {
		return fmt.Sprintf(" (did you mean %q?)", c)
	}

	return ""
}
