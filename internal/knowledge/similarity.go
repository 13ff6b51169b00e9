package knowledge

import (
	"math"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

const (
	// maxCandidates caps how many vector search hits are rescored.
	maxCandidates = 10
	// minMatchScore is the floor below which candidates are discarded.
	minMatchScore = 0.3
	// exactNameThreshold is the edit-distance similarity at or above which
	// two names are treated as the same material.
	exactNameThreshold = 0.95
	// exactScoreFloor is the minimum confidence reported for exact matches.
	exactScoreFloor = 0.9
)

// nameSimilarity is 1 minus the normalized Levenshtein distance between the
// lowercased, trimmed names.
func nameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(levenshtein.Distance(a, b, nil))/float64(longest)
}

// scoreCandidate folds the vector search score and the edit-distance
// similarity into one confidence and tags the match type. A trimmed
// case-insensitive part number match, or a near-identical name, counts
// as exact.
func scoreCandidate(queryName, queryPN string, candidate Match, vectorScore float64) (float64, string) {
	nameSim := nameSimilarity(queryName, candidate.MaterialName)
	blended := 0.5*vectorScore + 0.5*nameSim

	pn := strings.TrimSpace(queryPN)
	candPN := strings.TrimSpace(candidate.PartNumber)
	if pn != "" && candPN != "" && strings.EqualFold(pn, candPN) {
		return math.Max(exactScoreFloor, blended), MatchExact
	}
	if nameSim >= exactNameThreshold {
		return math.Max(exactScoreFloor, blended), MatchExact
	}
	return blended, MatchFuzzy
}

// rankMatches rescores raw vector hits against the query, drops weak ones
// and orders the remainder best first.
func rankMatches(queryName, queryPN string, candidates []Match, vectorScores []float64) []Match {
	ranked := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		score, matchType := scoreCandidate(queryName, queryPN, c, vectorScores[i])
		if score < minMatchScore {
			continue
		}
		c.Score = score
		c.MatchType = matchType
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}
