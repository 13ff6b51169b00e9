// Package workflow orchestrates the document processing pipeline: read,
// translate, extract, load the supplier BOM, then match.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
	"github.com/fyrsmithlabs/bomatch/internal/docreader"
	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/matcher"
	"github.com/fyrsmithlabs/bomatch/internal/metrics"
	"github.com/fyrsmithlabs/bomatch/internal/supplier"
	"github.com/fyrsmithlabs/bomatch/internal/translate"
)

// Pipeline stages reported through progress callbacks.
const (
	StageTranslation = "translation"
	StageExtraction  = "extraction"
	StageSupplierBOM = "supplier_bom"
	StageComparison  = "comparison"
	StageCompleted   = "completed"
	StageError       = "error"
)

// ProgressFunc receives stage transitions as the pipeline advances.
type ProgressFunc func(stage string, percent float64, message string)

// Config holds orchestrator configuration.
type Config struct {
	// ResultsDir is where per-stage JSON results are persisted.
	// Default: "results".
	ResultsDir string

	// SourceLanguage of incoming documents. Default: "ja".
	SourceLanguage string

	// TargetLanguage for translation. Default: "en".
	TargetLanguage string
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ResultsDir == "" {
		c.ResultsDir = "results"
	}
	if c.SourceLanguage == "" {
		c.SourceLanguage = "ja"
	}
	if c.TargetLanguage == "" {
		c.TargetLanguage = "en"
	}
}

// Summary aggregates one run's outcome.
type Summary struct {
	TotalMaterials       int       `json:"total_materials"`
	TotalSupplierItems   int       `json:"total_supplier_items"`
	SuccessfulMatches    int       `json:"successful_matches"`
	KnowledgeBaseMatches int       `json:"knowledge_base_matches"`
	ProcessingDate       time.Time `json:"processing_date"`
	EnhancedMatching     bool      `json:"enhanced_matching"`
}

// QASummary aggregates the classification outcomes of one run.
type QASummary struct {
	ClassificationCounts   map[classify.Label]int           `json:"classification_counts"`
	ConfidenceDistribution map[classify.ConfidenceLevel]int `json:"confidence_distribution"`
	TotalItems             int                              `json:"total_items"`
}

// Result is the final outcome of one workflow run.
type Result struct {
	WorkflowID     string             `json:"workflow_id"`
	Matches        []matcher.Match    `json:"matches"`
	Summary        Summary            `json:"summary"`
	KnowledgeStats knowledge.Stats    `json:"knowledge_stats"`
	QASummary      QASummary          `json:"qa_classification_summary"`
	Translation    *translate.Result  `json:"translation,omitempty"`
	Extraction     *extraction.Result `json:"extraction,omitempty"`
	SupplierBOM    *supplier.Result   `json:"supplier_bom,omitempty"`
}

// Orchestrator coordinates the pipeline stages for one deployment.
type Orchestrator struct {
	translator *translate.Translator
	extractor  *extraction.Coordinator
	matcher    *matcher.Matcher
	store      knowledge.Store
	config     Config
	logger     *zap.Logger
}

// New creates an Orchestrator. The knowledge store may be nil; matching
// then runs supplier-only.
func New(translator *translate.Translator, extractor *extraction.Coordinator, m *matcher.Matcher, store knowledge.Store, config Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	return &Orchestrator{
		translator: translator,
		extractor:  extractor,
		matcher:    m,
		store:      store,
		config:     config,
		logger:     logger,
	}
}

// NewWorkflowID returns a fresh workflow identifier.
func NewWorkflowID() string {
	return uuid.NewString()
}

// Run executes the full pipeline for one document/BOM pair. Individual
// stages degrade to demo output rather than failing, so Run errors only
// on cancellation.
func (o *Orchestrator) Run(ctx context.Context, documentPath, supplierBOMPath, workflowID string, progress ProgressFunc) (*Result, error) {
	start := time.Now()
	report := func(stage string, percent float64, message string) {
		if progress != nil {
			progress(stage, percent, message)
		}
	}

	o.logger.Info("starting workflow",
		zap.String("workflow_id", workflowID),
		zap.String("document", documentPath),
		zap.String("supplier_bom", supplierBOMPath),
	)

	report(StageTranslation, 5, "Translation agent processing QA document...")
	content := docreader.Read(documentPath, o.logger)
	translation := o.translator.Translate(ctx, content, o.config.SourceLanguage, o.config.TargetLanguage)
	o.saveStageResult(workflowID, StageTranslation, translation)
	if err := ctx.Err(); err != nil {
		return o.fail(report, err)
	}
	report(StageTranslation, 30, "Translation completed successfully")

	report(StageExtraction, 35, "Extraction agent processing materials with QA classification...")
	extracted := o.extractor.Extract(ctx, translation.TranslatedContent, nil)
	o.saveStageResult(workflowID, StageExtraction, extracted)
	if err := ctx.Err(); err != nil {
		return o.fail(report, err)
	}
	metrics.MaterialsExtracted.Add(float64(extracted.TotalItems))
	metrics.ChunksProcessed.WithLabelValues("success").Add(float64(extracted.SuccessfulChunks))
	metrics.ChunksProcessed.WithLabelValues("failed").Add(float64(extracted.ChunksProcessed - extracted.SuccessfulChunks))
	report(StageExtraction, 60, fmt.Sprintf("Extracted %d materials with QA classification", extracted.TotalItems))

	report(StageSupplierBOM, 65, "Supplier BOM agent processing spreadsheet data...")
	supplierResult := supplier.Load(supplierBOMPath, o.logger)
	o.saveStageResult(workflowID, StageSupplierBOM, supplierResult)
	if err := ctx.Err(); err != nil {
		return o.fail(report, err)
	}
	report(StageSupplierBOM, 80, fmt.Sprintf("Processed %d supplier BOM items", supplierResult.TotalItems))

	report(StageComparison, 85, "Enhanced comparison using knowledge base...")
	matches := o.matcher.Match(ctx, extracted.Items, supplierResult.Items, workflowID)
	if err := ctx.Err(); err != nil {
		return o.fail(report, err)
	}
	for _, m := range matches {
		metrics.MatchesTotal.WithLabelValues(m.MatchSource).Inc()
	}
	report(StageComparison, 95, "Knowledge base matching completed")

	result := &Result{
		WorkflowID:  workflowID,
		Matches:     matches,
		Summary:     summarize(matches, supplierResult.TotalItems),
		QASummary:   qaSummary(matches),
		Translation: translation,
		Extraction:  extracted,
		SupplierBOM: supplierResult,
	}
	if o.store != nil {
		if stats, err := o.store.Stats(ctx); err == nil {
			result.KnowledgeStats = stats
		}
	}
	o.saveStageResult(workflowID, "final", result)

	metrics.WorkflowsTotal.WithLabelValues("completed").Inc()
	metrics.WorkflowDuration.Observe(time.Since(start).Seconds())
	report(StageCompleted, 100, "Processing completed successfully")

	o.logger.Info("workflow completed",
		zap.String("workflow_id", workflowID),
		zap.Int("materials", result.Summary.TotalMaterials),
		zap.Int("matches", len(matches)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (o *Orchestrator) fail(report func(string, float64, string), err error) (*Result, error) {
	metrics.WorkflowsTotal.WithLabelValues("failed").Inc()
	report(StageError, 0, fmt.Sprintf("Processing failed: %v", err))
	return nil, err
}

func summarize(matches []matcher.Match, supplierItems int) Summary {
	s := Summary{
		TotalMaterials:     len(matches),
		TotalSupplierItems: supplierItems,
		ProcessingDate:     time.Now().UTC(),
		EnhancedMatching:   true,
	}
	for _, m := range matches {
		if m.Confidence > 0.5 {
			s.SuccessfulMatches++
		}
		if m.HasPreviousMatch {
			s.KnowledgeBaseMatches++
		}
	}
	return s
}

func qaSummary(matches []matcher.Match) QASummary {
	qa := QASummary{
		ClassificationCounts:   make(map[classify.Label]int),
		ConfidenceDistribution: make(map[classify.ConfidenceLevel]int),
		TotalItems:             len(matches),
	}
	for _, m := range matches {
		label := m.Item.Label
		if label == 0 {
			label = classify.LabelRequiresManualReview
		}
		qa.ClassificationCounts[label]++

		level := m.Item.ConfidenceLevel
		if level == "" {
			level = classify.ConfidenceMedium
		}
		qa.ConfidenceDistribution[level]++
	}
	return qa
}

// saveStageResult persists one stage's output under the results directory.
// Failures are logged and swallowed so persistence never blocks a run.
func (o *Orchestrator) saveStageResult(workflowID, stage string, v any) {
	dir := filepath.Join(o.config.ResultsDir, workflowID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.logger.Warn("failed to create results directory",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
		return
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		o.logger.Warn("failed to serialize stage result",
			zap.String("stage", stage),
			zap.Error(err),
		)
		return
	}

	path := filepath.Join(dir, stage+"_result.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		o.logger.Warn("failed to save stage result",
			zap.String("stage", stage),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("saved stage result",
		zap.String("workflow_id", workflowID),
		zap.String("stage", stage),
	)
}
