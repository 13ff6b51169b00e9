package extraction

import (
	"fmt"
	"strings"
)

// DefaultFocusCategories is used when the caller supplies none.
var DefaultFocusCategories = []string{
	"fasteners", "adhesives", "seals", "gaskets",
	"electrical", "connectors", "hardware", "consumables", "jigs", "tools",
}

// Generation parameters for extraction calls. Low temperature keeps the
// record shape consistent across chunks.
const (
	extractionTemperature = 0.2
	extractionMaxTokens   = 4000
)

// buildExtractionPrompt renders the per-chunk extraction prompt. The
// model is instructed to answer with a bare JSON array; the decoder
// tolerates deviations.
func buildExtractionPrompt(chunk string, categories []string, index, total int) string {
	cats := strings.Join(categories, ", ")

	return fmt.Sprintf(`Extract ALL distinct materials, consumables, fasteners, adhesives, jigs, tools, electrical components, gaskets, connectors, hardware, and any other physical items mentioned in this technical Work Instruction text section.

FOCUS CATEGORIES: %s

For each item found, create a JSON object with these fields:
{
    "name": "exact material name from text",
    "category": "one of: %s",
    "specifications": {"key": "value pairs of any specs mentioned"},
    "context": "surrounding text explaining usage",
    "confidence_score": 0.8,
    "qc_process_step": "QC step or work instruction step if mentioned or null",
    "consumable_jigs_tools": true,
    "name_mismatch": false,
    "part_number": "part number if available or null",
    "pn_mismatch": false,
    "quantity": 4,
    "unit_of_measure": "pieces",
    "obsolete_pn": false,
    "vendor_name": "vendor if mentioned or null",
    "kit_available": false,
    "ai_engine_processing": "extraction notes"
}

IMPORTANT INSTRUCTIONS:
- Extract EVERY physical item, material, part, tool, or consumable mentioned
- If the text mentions multiple quantities or variations of the same item, create separate entries
- Include fasteners (bolts, screws, nuts), adhesives (tapes, glues), seals, gaskets, electrical components, tools, jigs
- Return ONLY a valid JSON array containing ALL found items
- Do NOT provide commentary or explanations, ONLY the JSON array

Text section to analyze (chunk %d/%d):
%s

Return JSON array:`, cats, cats, index, total, chunk)
}
