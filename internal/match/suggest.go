package match

import (
	"slices"
	"sort"
)

// MinSuggestScore is the lowest similarity a candidate needs to be offered
// as a suggestion.
const MinSuggestScore = 0.5

// tokenHitScore is granted when the misspelled name equals one whole token
// of the candidate ("City" against "HomeCity").
const tokenHitScore = 0.75

// Suggestion is a ranked candidate name.
type Suggestion struct {
	Name  string
	Score float64
}

// Rank scores every candidate against name and returns those reaching
// MinSuggestScore, best first. Equal scores are ordered by name so the
// result is deterministic.
func Rank(name string, candidates []string) []Suggestion {
	norm := NormalizeIdent(name)

	var out []Suggestion

	for _, c := range candidates {
		score := Similarity(norm, NormalizeIdent(c))
		if score < tokenHitScore && slices.Contains(TokenizeIdent(c), norm) {
			score = tokenHitScore
		}

		if score >= MinSuggestScore {
			out = append(out, Suggestion{Name: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}

		return out[i].Name < out[j].Name
	})

	return out
}

// Suggest returns at most limit candidate names close to name.
// A non-positive limit returns every ranked candidate.
func Suggest(name string, candidates []string, limit int) []string {
	ranked := Rank(name, candidates)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.Name
	}

	return names
}
