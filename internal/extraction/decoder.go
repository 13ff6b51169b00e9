package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Recovery regexes, compiled once. The array pattern finds bracketed runs
// of objects; the object pattern tolerates one level of nesting, which
// covers the specifications map inside an item record.
var (
	arrayPattern         = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*(?:,\s*\{.*?\}\s*)*\]`)
	objectPattern        = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	trailingCommaBrace   = regexp.MustCompile(`,\s*}`)
	trailingCommaBracket = regexp.MustCompile(`,\s*]`)
)

// DecodeRecords recovers a list of item record mappings from free-form
// model output that nominally contains a JSON array. Strategies are tried
// in order and the first success wins; if nothing is recoverable the
// result is an empty list. DecodeRecords never fails.
func DecodeRecords(payload string) []map[string]any {
	cleaned := stripCodeFence(payload)

	// Strategy 1: direct parse. A bare object is wrapped into a list.
	if records, ok := parseRecords(cleaned); ok {
		return records
	}

	// Strategy 2: scan for array-shaped substrings.
	for _, match := range arrayPattern.FindAllString(cleaned, -1) {
		var records []map[string]any
		if err := json.Unmarshal([]byte(match), &records); err == nil && len(records) > 0 {
			return records
		}
	}

	// Strategy 3: parse individual objects and keep those naming an item.
	var objects []map[string]any
	for _, match := range objectPattern.FindAllString(cleaned, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(match), &obj); err != nil {
			continue
		}
		if name, _ := obj["name"].(string); name != "" {
			objects = append(objects, obj)
		}
	}
	if len(objects) > 0 {
		return objects
	}

	// Strategy 4: repair trailing commas and retry the direct parse.
	repaired := trailingCommaBrace.ReplaceAllString(cleaned, "}")
	repaired = trailingCommaBracket.ReplaceAllString(repaired, "]")
	if records, ok := parseRecords(repaired); ok {
		return records
	}

	return []map[string]any{}
}

// parseRecords attempts a strict parse of text as either an array of
// records or a single record object.
func parseRecords(text string) ([]map[string]any, bool) {
	var records []map[string]any
	if err := json.Unmarshal([]byte(text), &records); err == nil {
		return records, true
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return []map[string]any{single}, true
	}
	return nil, false
}

// stripCodeFence removes a markdown code-fence wrapper if present.
func stripCodeFence(payload string) string {
	cleaned := strings.TrimSpace(payload)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
