package completion

import (
	"cmp"
	"slices"

	"github.com/sahilm/fuzzy"
)

// Rank orders candidates by fuzzy score against filter, best first, with
// ties broken by discovery order. Candidates scoring below minScore or not
// matching at all are dropped. An empty filter keeps everything as is.
func Rank(filter string, candidates []LinkCompletion, minScore int) []LinkCompletion {
	if filter == "" {
		return candidates
	}

	data := make([]string, len(candidates))
	for i, c := range candidates {
		data[i] = c.MatchString
	}

	matches := fuzzy.Find(filter, data)
	slices.SortFunc(matches, func(a, b fuzzy.Match) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Index, b.Index)
	})

	out := make([]LinkCompletion, 0, len(matches))
	for _, m := range matches {
		if m.Score < minScore {
			continue
		}
		out = append(out, candidates[m.Index])
	}
	return out
}
