package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "Hex Bolt", "hex bolt", 1},
		{"empty query", "", "hex bolt", 0},
		{"empty candidate", "hex bolt", "", 0},
		{"disjoint", "ab", "xy", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, nameSimilarity(tt.a, tt.b), 1e-9)
		})
	}

	// One edit over nine characters.
	assert.InDelta(t, 8.0/9.0, nameSimilarity("hex bolts", "hex bolt "), 1e-9)
}

func TestScoreCandidateExactPartNumber(t *testing.T) {
	score, matchType := scoreCandidate("Hex Bolt", "BOLT-M6-20-SS",
		Match{MaterialName: "M6 Bolt", PartNumber: " bolt-m6-20-ss "}, 0.4)

	assert.Equal(t, MatchExact, matchType)
	assert.GreaterOrEqual(t, score, exactScoreFloor)
}

func TestScoreCandidateNearIdenticalName(t *testing.T) {
	score, matchType := scoreCandidate("Industrial Adhesive Tape", "",
		Match{MaterialName: "industrial adhesive tape"}, 0.5)

	assert.Equal(t, MatchExact, matchType)
	assert.GreaterOrEqual(t, score, exactScoreFloor)
}

func TestScoreCandidateFuzzyBlend(t *testing.T) {
	score, matchType := scoreCandidate("hex bolt", "PN-1",
		Match{MaterialName: "hex bolt", PartNumber: "PN-2"}, 0.6)

	// Same name but different PN stays exact via the name path.
	assert.Equal(t, MatchExact, matchType)
	assert.GreaterOrEqual(t, score, exactScoreFloor)

	score, matchType = scoreCandidate("torque wrench", "",
		Match{MaterialName: "socket wrench"}, 0.6)

	assert.Equal(t, MatchFuzzy, matchType)
	assert.Less(t, score, exactScoreFloor)
	assert.Greater(t, score, minMatchScore)
}

func TestRankMatchesOrdersAndFilters(t *testing.T) {
	candidates := []Match{
		{ID: "weak", MaterialName: "zzzzzzzz"},
		{ID: "exact", MaterialName: "hex bolt"},
		{ID: "close", MaterialName: "hex bolts"},
	}
	scores := []float64{0.05, 0.9, 0.7}

	ranked := rankMatches("hex bolt", "", candidates, scores)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "exact", ranked[0].ID)
	assert.Equal(t, MatchExact, ranked[0].MatchType)
	assert.Equal(t, "close", ranked[1].ID)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}
