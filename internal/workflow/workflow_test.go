package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
	"github.com/fyrsmithlabs/bomatch/internal/extraction"
	"github.com/fyrsmithlabs/bomatch/internal/knowledge"
	"github.com/fyrsmithlabs/bomatch/internal/matcher"
	"github.com/fyrsmithlabs/bomatch/internal/translate"
)

type offlineGenerator struct{}

func (g *offlineGenerator) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	return "", errors.New("offline")
}

func (g *offlineGenerator) Available() bool { return false }

type fakeStore struct {
	mu            sync.Mutex
	matches       []knowledge.Match
	added         []knowledge.Item
	addedWorkflow string
}

func (s *fakeStore) AddItems(ctx context.Context, items []knowledge.Item, workflowID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, items...)
	s.addedWorkflow = workflowID
	ids := make([]string, len(items))
	return ids, nil
}

func (s *fakeStore) FindSimilar(ctx context.Context, materialName, partNumber string) ([]knowledge.Match, error) {
	return s.matches, nil
}

func (s *fakeStore) Stats(ctx context.Context) (knowledge.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return knowledge.Stats{TotalItems: len(s.added), Backend: "fake", Collection: "test"}, nil
}

func (s *fakeStore) Clear(ctx context.Context) error { return nil }

func (s *fakeStore) Close() error { return nil }

type progressEvent struct {
	stage   string
	percent float64
	message string
}

func newTestOrchestrator(t *testing.T, store knowledge.Store) *Orchestrator {
	t.Helper()
	gen := &offlineGenerator{}
	return New(
		translate.New(gen, nil),
		extraction.NewCoordinator(gen, extraction.Config{}, nil),
		matcher.New(store, nil),
		store,
		Config{ResultsDir: t.TempDir()},
		nil,
	)
}

func TestRunDemoModeEndToEnd(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(t, store)

	var events []progressEvent
	result, err := o.Run(context.Background(), "no-such-document.txt", "no-such-bom.csv", NewWorkflowID(), func(stage string, percent float64, message string) {
		events = append(events, progressEvent{stage, percent, message})
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NotNil(t, result.Translation)
	assert.True(t, result.Translation.DemoMode)
	require.NotNil(t, result.Extraction)
	assert.True(t, result.Extraction.DemoMode)
	require.NotNil(t, result.SupplierBOM)
	assert.True(t, result.SupplierBOM.DemoMode)

	assert.Len(t, result.Matches, result.Extraction.TotalItems)
	assert.Equal(t, len(result.Matches), result.Summary.TotalMaterials)
	assert.Equal(t, result.SupplierBOM.TotalItems, result.Summary.TotalSupplierItems)
	assert.True(t, result.Summary.EnhancedMatching)
	assert.Equal(t, len(result.Matches), result.QASummary.TotalItems)
	assert.Equal(t, "fake", result.KnowledgeStats.Backend)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, StageCompleted, last.stage)
	assert.Equal(t, 100.0, last.percent)
}

func TestRunReportsStagesInOrder(t *testing.T) {
	o := newTestOrchestrator(t, &fakeStore{})

	var events []progressEvent
	_, err := o.Run(context.Background(), "missing.txt", "missing.csv", "wf-order", func(stage string, percent float64, message string) {
		events = append(events, progressEvent{stage, percent, message})
	})
	require.NoError(t, err)

	var stages []string
	var percents []float64
	for _, e := range events {
		stages = append(stages, e.stage)
		percents = append(percents, e.percent)
	}
	assert.Equal(t, []string{
		StageTranslation, StageTranslation,
		StageExtraction, StageExtraction,
		StageSupplierBOM, StageSupplierBOM,
		StageComparison, StageComparison,
		StageCompleted,
	}, stages)
	assert.Equal(t, []float64{5, 30, 35, 60, 65, 80, 85, 95, 100}, percents)
}

func TestRunPersistsStageResults(t *testing.T) {
	store := &fakeStore{}
	dir := t.TempDir()
	gen := &offlineGenerator{}
	o := New(
		translate.New(gen, nil),
		extraction.NewCoordinator(gen, extraction.Config{}, nil),
		matcher.New(store, nil),
		store,
		Config{ResultsDir: dir},
		nil,
	)

	_, err := o.Run(context.Background(), "missing.txt", "missing.csv", "wf-persist", nil)
	require.NoError(t, err)

	for _, stage := range []string{"translation", "extraction", "supplier_bom", "final"} {
		path := filepath.Join(dir, "wf-persist", stage+"_result.json")
		info, err := os.Stat(path)
		require.NoError(t, err, "expected %s to exist", path)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestRunCancelledContext(t *testing.T) {
	o := newTestOrchestrator(t, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []progressEvent
	result, err := o.Run(ctx, "missing.txt", "missing.csv", "wf-cancel", func(stage string, percent float64, message string) {
		events = append(events, progressEvent{stage, percent, message})
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, StageError, last.stage)
	assert.Contains(t, last.message, "Processing failed")
}

func TestRunRegistersExtractedItems(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(t, store)

	result, err := o.Run(context.Background(), "missing.txt", "missing.csv", "wf-register", nil)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.added, result.Extraction.TotalItems)
	assert.Equal(t, "wf-register", store.addedWorkflow)
	for _, it := range store.added {
		assert.NotEmpty(t, it.MaterialName)
	}
}

func TestSummarize(t *testing.T) {
	matches := []matcher.Match{
		{Confidence: 0.95, HasPreviousMatch: true},
		{Confidence: 0.6},
		{Confidence: 0.5},
		{Confidence: 0.1, HasPreviousMatch: true},
	}
	s := summarize(matches, 7)
	assert.Equal(t, 4, s.TotalMaterials)
	assert.Equal(t, 7, s.TotalSupplierItems)
	assert.Equal(t, 2, s.SuccessfulMatches)
	assert.Equal(t, 2, s.KnowledgeBaseMatches)
	assert.True(t, s.EnhancedMatching)
	assert.WithinDuration(t, time.Now().UTC(), s.ProcessingDate, time.Minute)
}

func TestQASummaryDefaults(t *testing.T) {
	matches := []matcher.Match{
		{Item: extraction.Item{Label: classify.LabelConsumableWithPNSpecQty, ConfidenceLevel: classify.ConfidenceHigh}},
		{Item: extraction.Item{}},
		{Item: extraction.Item{}},
	}
	qa := qaSummary(matches)
	assert.Equal(t, 3, qa.TotalItems)
	assert.Equal(t, 1, qa.ClassificationCounts[classify.LabelConsumableWithPNSpecQty])
	assert.Equal(t, 2, qa.ClassificationCounts[classify.LabelRequiresManualReview])
	assert.Equal(t, 1, qa.ConfidenceDistribution[classify.ConfidenceHigh])
	assert.Equal(t, 2, qa.ConfidenceDistribution[classify.ConfidenceMedium])
}

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	assert.Equal(t, "results", c.ResultsDir)
	assert.Equal(t, "ja", c.SourceLanguage)
	assert.Equal(t, "en", c.TargetLanguage)
}
