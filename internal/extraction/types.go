// Package extraction turns translated work-instruction text into
// classified item records. It chunks the document, drives concurrent
// generation calls per chunk, recovers structured records from unreliable
// model output, classifies them, and merges the results.
package extraction

import (
	"context"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
)

// Generator is the external content-generation service the extractor
// consumes. Implementations may fail or time out; the extractor treats any
// failure as "no usable output for this chunk".
type Generator interface {
	// Generate produces free-form text for the given prompt.
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

	// Available returns true if the generator is configured and ready.
	Available() bool
}

// Item is one candidate physical item found in the document, with its QA
// classification attached.
type Item struct {
	Name           string         `json:"name"`
	QAMaterialName string         `json:"qa_material_name"`
	Category       string         `json:"category"`
	Specifications map[string]any `json:"specifications"`
	Context        string         `json:"context"`
	Confidence     float64        `json:"confidence_score"`
	SourceSection  string         `json:"source_section"`
	Excerpt        string         `json:"qa_excerpt,omitempty"`

	QCProcessStep string   `json:"qc_process_step,omitempty"`
	Consumable    bool     `json:"consumable_jigs_tools"`
	NameMismatch  bool     `json:"name_mismatch"`
	PartNumber    string   `json:"part_number,omitempty"`
	PNMismatch    bool     `json:"pn_mismatch"`
	Quantity      *float64 `json:"quantity,omitempty"`
	UnitOfMeasure string   `json:"unit_of_measure,omitempty"`
	ObsoletePN    bool     `json:"obsolete_pn"`
	VendorName    string   `json:"vendor_name,omitempty"`
	KitAvailable  bool     `json:"kit_available"`
	EngineNote    string   `json:"ai_engine_processing"`

	Label           classify.Label           `json:"classification_label"`
	ConfidenceLevel classify.ConfidenceLevel `json:"confidence_level"`
	ActionPath      classify.ActionPath      `json:"action_path_rag"`
	Reasoning       string                   `json:"classification_reasoning"`
}

// ConfidenceDistribution buckets item confidence scores.
type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ClassificationSummary aggregates classification outcomes across items.
type ClassificationSummary struct {
	TotalItems int                    `json:"total_items"`
	Green      int                    `json:"green_items"`
	Amber      int                    `json:"amber_items"`
	Red        int                    `json:"red_items"`
	Breakdown  map[classify.Label]int `json:"classification_breakdown"`
}

// Result is the outcome of processing one document.
type Result struct {
	Items                  []Item                 `json:"items"`
	TotalItems             int                    `json:"total_items"`
	ChunksProcessed        int                    `json:"chunks_processed"`
	SuccessfulChunks       int                    `json:"successful_chunks"`
	FocusCategories        []string               `json:"focus_categories"`
	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
	ClassificationSummary  ClassificationSummary  `json:"qa_classification_summary"`
	DemoMode               bool                   `json:"demo_mode,omitempty"`
}
