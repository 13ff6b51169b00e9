package matcher

import (
	"sort"
	"strings"

	"github.com/fyrsmithlabs/bomatch/internal/supplier"
)

// Supplier match types.
const (
	SupplierMatchPartNumber  = "part_number"
	SupplierMatchDescription = "description"
)

// supplierMatchThreshold is the score below which supplier candidates are
// discarded.
const supplierMatchThreshold = 0.3

// SupplierMatch is one supplier BOM row scored against an extracted item.
type SupplierMatch struct {
	Description string        `json:"supplier_description"`
	PartNumber  string        `json:"supplier_part_number"`
	Confidence  float64       `json:"confidence_score"`
	MatchType   string        `json:"match_type"`
	Supplier    supplier.Item `json:"supplier_data"`
}

// findSupplierMatches scores every supplier row against the item and
// returns those above the minimum threshold, best first. Part number
// agreement dominates: a trimmed exact match scores 0.95 and a substring
// match either way scores 0.8. Otherwise the score is the capped Jaccard
// word overlap of the descriptions.
func findSupplierMatches(materialName, partNumber string, supplierBOM []supplier.Item) []SupplierMatch {
	name := strings.ToLower(materialName)
	pn := strings.TrimSpace(partNumber)

	matches := make([]SupplierMatch, 0)
	for _, row := range supplierBOM {
		desc := strings.ToLower(row.Description)
		rowPN := strings.TrimSpace(row.PartNumber)

		var confidence float64
		switch {
		case pn != "" && rowPN != "" && pn == rowPN:
			confidence = 0.95
		case pn != "" && rowPN != "" && (strings.Contains(rowPN, pn) || strings.Contains(pn, rowPN)):
			confidence = 0.8
		case name != "" && desc != "":
			confidence = cappedJaccard(name, desc)
		}

		if confidence <= supplierMatchThreshold {
			continue
		}

		matchType := SupplierMatchDescription
		if confidence > 0.85 {
			matchType = SupplierMatchPartNumber
		}
		matches = append(matches, SupplierMatch{
			Description: row.Description,
			PartNumber:  row.PartNumber,
			Confidence:  confidence,
			MatchType:   matchType,
			Supplier:    row,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Confidence > matches[j].Confidence })
	return matches
}

// cappedJaccard is the Jaccard word overlap of the two strings, scaled by
// 0.9 and capped at 0.85 so description-only matches never outrank part
// number matches. Zero overlap scores zero.
func cappedJaccard(a, b string) float64 {
	aWords := wordSet(a)
	bWords := wordSet(b)

	shared := 0
	for w := range aWords {
		if bWords[w] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	union := len(bWords)
	for w := range aWords {
		if !bWords[w] {
			union++
		}
	}

	score := float64(shared) / float64(union) * 0.9
	if score > 0.85 {
		score = 0.85
	}
	return score
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
