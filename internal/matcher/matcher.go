// Package matcher reconciles extracted materials against the knowledge
// store and the current supplier BOM, producing one enriched match record
// per item.
package matcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/supplier"
)

// Match sources reported on result records.
const (
	SourceKnowledgeBase  = "knowledge_base"
	SourceSupplierBOM    = "supplier_bom"
	SourceSupplierBOMLow = "supplier_bom_low_confidence"
	SourceHybrid         = "hybrid"
	SourceNone           = "no_match"
)

// matcherVersion is stamped on every match record.
const matcherVersion = "2.0"

// Match is one extracted item enriched with its best cross-source match.
type Match struct {
	Item extraction.Item `json:"item"`

	QAMaterialName       string    `json:"qa_material_name"`
	KnowledgeBaseMatches int       `json:"knowledge_base_matches"`
	SupplierMatches      int       `json:"supplier_matches"`
	HasPreviousMatch     bool      `json:"has_previous_match"`
	MatchSource          string    `json:"match_source"`
	Confidence           float64   `json:"confidence_score"`
	SupplierDescription  string    `json:"supplier_description"`
	SupplierPartNumber   string    `json:"supplier_part_number"`
	Reasoning            string    `json:"reasoning"`
	WorkflowID           string    `json:"workflow_id"`
	MatcherVersion       string    `json:"matcher_version"`
	ProcessedAt          time.Time `json:"processing_timestamp"`
}

// bestMatch is the internal selection result before it is folded into a
// Match record.
type bestMatch struct {
	description string
	partNumber  string
	confidence  float64
	matchType   string
	source      string
}

// Matcher runs multi-source matching backed by a knowledge store.
type Matcher struct {
	store  knowledge.Store
	logger *zap.Logger
}

// New creates a Matcher. The store may be nil, in which case matching
// degrades to supplier-only.
func New(store knowledge.Store, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{store: store, logger: logger}
}

// Match registers the extracted items in the knowledge store, then matches
// each one against both previously registered items and the current
// supplier BOM. Knowledge store failures degrade to supplier-only matching
// rather than failing the run.
func (m *Matcher) Match(ctx context.Context, items []extraction.Item, supplierBOM []supplier.Item, workflowID string) []Match {
	m.registerItems(ctx, items, workflowID)

	matches := make([]Match, 0, len(items))
	for _, item := range items {
		materialName := item.QAMaterialName
		if materialName == "" {
			materialName = item.Name
		}

		var kbMatches []knowledge.Match
		if m.store != nil {
			var err error
			kbMatches, err = m.store.FindSimilar(ctx, materialName, item.PartNumber)
			if err != nil {
				m.logger.Error("knowledge store lookup failed",
					zap.String("material_name", materialName),
					zap.Error(err),
				)
				kbMatches = nil
			}
		}

		supplierMatches := findSupplierMatches(materialName, item.PartNumber, supplierBOM)
		best := selectBestMatch(kbMatches, supplierMatches)

		match := Match{
			Item:                 item,
			QAMaterialName:       materialName,
			KnowledgeBaseMatches: len(kbMatches),
			SupplierMatches:      len(supplierMatches),
			HasPreviousMatch:     len(kbMatches) > 0,
			MatchSource:          matchSource(kbMatches, supplierMatches),
			Reasoning:            matchReasoning(kbMatches, supplierMatches, best),
			WorkflowID:           workflowID,
			MatcherVersion:       matcherVersion,
			ProcessedAt:          time.Now().UTC(),
		}
		if best != nil {
			match.Confidence = best.confidence
			match.SupplierDescription = best.description
			match.SupplierPartNumber = best.partNumber
		}
		matches = append(matches, match)
	}

	m.logger.Info("matching completed",
		zap.String("workflow_id", workflowID),
		zap.Int("matches", len(matches)),
	)
	return matches
}

// registerItems adds the extracted items to the knowledge store so future
// runs can match against them. Failures are logged and swallowed.
func (m *Matcher) registerItems(ctx context.Context, items []extraction.Item, workflowID string) {
	if m.store == nil || len(items) == 0 {
		return
	}

	kbItems := make([]knowledge.Item, len(items))
	for i, item := range items {
		name := item.QAMaterialName
		if name == "" {
			name = item.Name
		}
		kbItems[i] = knowledge.Item{
			MaterialName: name,
			PartNumber:   item.PartNumber,
			Category:     item.Category,
			Confidence:   item.Confidence,
		}
	}

	ids, err := m.store.AddItems(ctx, kbItems, workflowID)
	if err != nil {
		m.logger.Error("failed to register items in knowledge store",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
		return
	}
	m.logger.Info("registered items in knowledge store",
		zap.String("workflow_id", workflowID),
		zap.Int("count", len(ids)),
	)
}

// selectBestMatch applies the source priority chain: exact knowledge store
// matches first, then confident supplier matches, then fuzzy knowledge
// store matches, then whatever the supplier table offered.
func selectBestMatch(kbMatches []knowledge.Match, supplierMatches []SupplierMatch) *bestMatch {
	for _, kb := range kbMatches {
		if kb.MatchType == knowledge.MatchExact && kb.Score > 0.8 {
			return &bestMatch{
				description: kb.MaterialName,
				partNumber:  kb.PartNumber,
				confidence:  math.Min(0.95, kb.Score),
				matchType:   knowledge.MatchExact,
				source:      SourceKnowledgeBase,
			}
		}
	}

	if len(supplierMatches) > 0 && supplierMatches[0].Confidence > 0.7 {
		top := supplierMatches[0]
		return &bestMatch{
			description: top.Description,
			partNumber:  top.PartNumber,
			confidence:  top.Confidence,
			matchType:   top.MatchType,
			source:      SourceSupplierBOM,
		}
	}

	var bestKB *knowledge.Match
	for i := range kbMatches {
		if bestKB == nil || kbMatches[i].Score > bestKB.Score {
			bestKB = &kbMatches[i]
		}
	}
	if bestKB != nil && bestKB.Score > 0.5 {
		return &bestMatch{
			description: bestKB.MaterialName,
			partNumber:  bestKB.PartNumber,
			confidence:  math.Max(0.6, bestKB.Score),
			matchType:   knowledge.MatchFuzzy,
			source:      SourceKnowledgeBase,
		}
	}

	if len(supplierMatches) > 0 {
		top := supplierMatches[0]
		return &bestMatch{
			description: top.Description,
			partNumber:  top.PartNumber,
			confidence:  top.Confidence,
			matchType:   top.MatchType,
			source:      SourceSupplierBOMLow,
		}
	}

	return nil
}

// matchSource labels which sources produced candidates at all, independent
// of which one won.
func matchSource(kbMatches []knowledge.Match, supplierMatches []SupplierMatch) string {
	switch {
	case len(kbMatches) > 0 && len(supplierMatches) > 0:
		return SourceHybrid
	case len(kbMatches) > 0:
		return SourceKnowledgeBase
	case len(supplierMatches) > 0:
		return SourceSupplierBOM
	default:
		return SourceNone
	}
}

// matchReasoning renders a reviewer-facing explanation of the selection.
func matchReasoning(kbMatches []knowledge.Match, supplierMatches []SupplierMatch, best *bestMatch) string {
	if best == nil {
		if len(kbMatches) == 0 && len(supplierMatches) == 0 {
			return "No matches found in knowledge base or supplier BOM"
		}
		return "Matches found but confidence scores below minimum threshold"
	}

	percent := fmt.Sprintf("%.1f%%", best.confidence*100)
	switch best.source {
	case SourceKnowledgeBase:
		if best.matchType == knowledge.MatchExact {
			return fmt.Sprintf("Exact match found in knowledge base from previous workflow (confidence: %s)", percent)
		}
		return fmt.Sprintf("Similar item found in knowledge base based on name similarity (confidence: %s)", percent)
	case SourceSupplierBOM:
		if best.matchType == SupplierMatchPartNumber {
			return fmt.Sprintf("Part number match found in current supplier BOM (confidence: %s)", percent)
		}
		return fmt.Sprintf("Description match found in current supplier BOM (confidence: %s)", percent)
	case SourceSupplierBOMLow:
		return fmt.Sprintf("Low confidence match found in supplier BOM - requires review (confidence: %s)", percent)
	}
	return fmt.Sprintf("Match found with %s confidence via %s", percent, best.source)
}
