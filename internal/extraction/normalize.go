package extraction

import (
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
)

const (
	// placeholderName is used when a record carries no usable name.
	placeholderName = "Unknown Material"

	// defaultEngineNote marks records that passed through normalization.
	defaultEngineNote = "AI processed"

	sourceSectionLimit = 200
	excerptRadius      = 50
)

// NormalizeRecord maps one untyped record mapping to a typed Item,
// applying the defaulting and coercion rules once at the decode boundary.
// Classification is always populated, even for degenerate records.
func NormalizeRecord(record map[string]any, sourceText string) Item {
	name := stringField(record, "name")
	if name == "" {
		name = placeholderName
	}

	category := stringField(record, "category")
	if category == "" {
		category = "uncategorized"
	}

	specs, _ := record["specifications"].(map[string]any)
	quantity := numberField(record, "quantity")

	engineNote := stringField(record, "ai_engine_processing")
	if engineNote == "" {
		engineNote = defaultEngineNote
	}

	item := Item{
		Name:           name,
		QAMaterialName: name,
		Category:       category,
		Specifications: specs,
		Context:        stringField(record, "context"),
		Confidence:     clamp01(floatField(record, "confidence_score", 0.5)),
		SourceSection:  truncate(sourceText, sourceSectionLimit),
		Excerpt:        extractExcerpt(name, sourceText),
		QCProcessStep:  stringField(record, "qc_process_step"),
		Consumable:     boolField(record, "consumable_jigs_tools"),
		NameMismatch:   boolField(record, "name_mismatch"),
		PartNumber:     stringField(record, "part_number"),
		PNMismatch:     boolField(record, "pn_mismatch"),
		Quantity:       quantity,
		UnitOfMeasure:  stringField(record, "unit_of_measure"),
		ObsoletePN:     boolField(record, "obsolete_pn"),
		VendorName:     stringField(record, "vendor_name"),
		KitAvailable:   boolField(record, "kit_available"),
		EngineNote:     engineNote,
	}

	applyClassification(&item)
	return item
}

// applyClassification runs the rulebook over the item's flags and copies
// the outcome onto it.
func applyClassification(item *Item) {
	result := classify.Classify(classify.Flags{
		Consumable: item.Consumable,
		HasPN:      item.PartNumber != "",
		HasQty:     item.Quantity != nil && *item.Quantity != 0,
		HasSpecs:   len(item.Specifications) > 0,
		HasVendor:  item.VendorName != "",
		HasKit:     item.KitAvailable,
		PNMismatch: item.PNMismatch,
		ObsoletePN: item.ObsoletePN,
	})

	item.Label = result.Label
	item.ConfidenceLevel = result.Confidence
	item.ActionPath = result.Action
	item.Reasoning = result.Reasoning
}

// extractExcerpt returns the text surrounding the first mention of name in
// sourceText, or empty when the name does not occur.
func extractExcerpt(name, sourceText string) string {
	if name == "" || sourceText == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(sourceText), strings.ToLower(name))
	if idx < 0 {
		return ""
	}
	start := idx - excerptRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(name) + excerptRadius
	if end > len(sourceText) {
		end = len(sourceText)
	}
	return strings.TrimSpace(sourceText[start:end])
}

func stringField(record map[string]any, key string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// boolField coerces truthy values explicitly: JSON booleans pass through,
// everything else is false.
func boolField(record map[string]any, key string) bool {
	b, _ := record[key].(bool)
	return b
}

// numberField parses a numeric or numeric-string field, returning nil when
// the value is absent or unparsable.
func numberField(record map[string]any, key string) *float64 {
	v, ok := record[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func floatField(record map[string]any, key string, fallback float64) float64 {
	if p := numberField(record, key); p != nil {
		return *p
	}
	return fallback
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
