package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
)

func TestNormalizeRecordFullRecord(t *testing.T) {
	record := map[string]any{
		"name":                  "M6x20mm Hex Bolt",
		"category":              "fasteners",
		"specifications":        map[string]any{"size": "M6x20mm"},
		"context":               "chassis mounting",
		"confidence_score":      0.95,
		"consumable_jigs_tools": true,
		"part_number":           "BOLT-M6-20-SS",
		"quantity":              4.0,
		"unit_of_measure":       "pieces",
	}

	item := NormalizeRecord(record, "Use M6x20mm Hex Bolt to secure the chassis.")

	assert.Equal(t, "M6x20mm Hex Bolt", item.Name)
	assert.Equal(t, "M6x20mm Hex Bolt", item.QAMaterialName)
	assert.Equal(t, "fasteners", item.Category)
	assert.Equal(t, 0.95, item.Confidence)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 4.0, *item.Quantity)
	assert.Contains(t, item.Excerpt, "M6x20mm Hex Bolt")

	// Consumable with PN, specs, and quantity: label 1, high, green.
	assert.Equal(t, classify.LabelConsumableWithPNSpecQty, item.Label)
	assert.Equal(t, classify.ConfidenceHigh, item.ConfidenceLevel)
	assert.Equal(t, classify.ActionGreen, item.ActionPath)
}

func TestNormalizeRecordDefaults(t *testing.T) {
	item := NormalizeRecord(map[string]any{}, "")

	assert.Equal(t, "Unknown Material", item.Name)
	assert.Equal(t, "uncategorized", item.Category)
	assert.Equal(t, 0.5, item.Confidence)
	assert.Nil(t, item.Quantity)
	assert.Equal(t, "AI processed", item.EngineNote)

	// Classification is always populated.
	assert.Equal(t, classify.LabelNoConsumableMentioned, item.Label)
	assert.Equal(t, classify.ActionRed, item.ActionPath)
}

func TestNormalizeRecordQuantityCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *float64
	}{
		{"float", 2.5, ptr(2.5)},
		{"numeric string", "12", ptr(12.0)},
		{"padded numeric string", " 3 ", ptr(3.0)},
		{"garbage string", "a few", nil},
		{"bool", true, nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NormalizeRecord(map[string]any{"name": "x", "quantity": tt.value}, "")
			if tt.want == nil {
				assert.Nil(t, item.Quantity)
			} else {
				require.NotNil(t, item.Quantity)
				assert.Equal(t, *tt.want, *item.Quantity)
			}
		})
	}
}

func TestNormalizeRecordConfidenceClamped(t *testing.T) {
	high := NormalizeRecord(map[string]any{"name": "x", "confidence_score": 3.0}, "")
	assert.Equal(t, 1.0, high.Confidence)

	low := NormalizeRecord(map[string]any{"name": "x", "confidence_score": -0.2}, "")
	assert.Equal(t, 0.0, low.Confidence)
}

func TestNormalizeRecordSourceSectionTruncated(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	item := NormalizeRecord(map[string]any{"name": "x"}, string(long))

	assert.Len(t, item.SourceSection, 203) // 200 chars plus ellipsis
}

func TestNormalizeRecordNonStringFieldsIgnored(t *testing.T) {
	record := map[string]any{
		"name":        42.0,
		"part_number": []any{"P-1"},
	}

	item := NormalizeRecord(record, "")

	assert.Equal(t, "Unknown Material", item.Name)
	assert.Empty(t, item.PartNumber)
}

func ptr(f float64) *float64 { return &f }
