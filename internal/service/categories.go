package service

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxCategoryDistance is the largest edit distance snapped to a known category.
const maxCategoryDistance = 2

// MatchCategory resolves input against known categories. Exact matches are
// case-insensitive; otherwise the closest category within
// maxCategoryDistance edits wins, earlier entries breaking ties.
func MatchCategory(input string, known []string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	for _, k := range known {
		if strings.ToLower(k) == in {
			return k, true
		}
	}
	best, bestDist := "", maxCategoryDistance+1
	for _, k := range known {
		d := levenshtein.ComputeDistance(in, strings.ToLower(k))
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// MergeCategories returns the union of the lists in first-seen order,
// comparing case-insensitively.
func MergeCategories(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lists {
		for _, c := range l {
			c = strings.TrimSpace(c)
			key := strings.ToLower(c)
			if c == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}
