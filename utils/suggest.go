package utils

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestionThreshold is the minimum similarity for a candidate to be
// offered as a "did you mean" suggestion.
const suggestionThreshold = 0.6

// ClosestMatches returns up to n unique candidates most similar to input,
// case-insensitively, dropping anything below the similarity threshold.
func ClosestMatches(input string, candidates []string, n int) []string {
	type scored struct {
		name  string
		score float64
	}

	in := strings.ToLower(input)
	seen := make(map[string]bool, len(candidates))
	var ranked []scored
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true

		if s := similarity(in, key); s >= suggestionThreshold {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
