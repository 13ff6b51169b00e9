package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/bomatch/internal/classify"
)

// fakeGenerator returns canned responses keyed by a substring of the
// prompt, and records the peak number of concurrent calls.
type fakeGenerator struct {
	mu        sync.Mutex
	respond   func(prompt string) (string, error)
	inFlight  int
	maxSeen   int
	calls     int
	available bool
}

func newFakeGenerator(respond func(prompt string) (string, error)) *fakeGenerator {
	return &fakeGenerator{respond: respond, available: true}
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	f.mu.Lock()
	f.inFlight++
	f.calls++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()
	return f.respond(prompt)
}

func (f *fakeGenerator) Available() bool { return f.available }

func itemResponse(name, pn string) string {
	return fmt.Sprintf(`[{"name": %q, "part_number": %q, "consumable_jigs_tools": true, "quantity": 1, "confidence_score": 0.9}]`, name, pn)
}

func TestExtractSingleChunkDocument(t *testing.T) {
	gen := newFakeGenerator(func(string) (string, error) {
		return itemResponse("Hex Bolt", "B-1"), nil
	})
	coord := NewCoordinator(gen, Config{ChunkSize: 1500}, nil)

	result := coord.Extract(context.Background(), "short document", nil)

	assert.Equal(t, 1, result.ChunksProcessed)
	assert.Equal(t, 1, result.SuccessfulChunks)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Hex Bolt", result.Items[0].Name)
	assert.False(t, result.DemoMode)
	assert.Equal(t, DefaultFocusCategories, result.FocusCategories)
}

func TestExtractFailedChunkIsIsolated(t *testing.T) {
	var n int
	var mu sync.Mutex
	gen := newFakeGenerator(func(string) (string, error) {
		mu.Lock()
		n++
		fail := n == 1
		mu.Unlock()
		if fail {
			return "", errors.New("deadline exceeded")
		}
		return itemResponse("Washer", "W-1"), nil
	})
	coord := NewCoordinator(gen, Config{ChunkSize: 40, MaxParallel: 1}, nil)

	text := strings.Repeat("p", 35) + "\n\n" + strings.Repeat("q", 35)
	result := coord.Extract(context.Background(), text, nil)

	assert.Equal(t, 2, result.ChunksProcessed)
	assert.Equal(t, 1, result.SuccessfulChunks)
	require.Len(t, result.Items, 1)
	assert.False(t, result.DemoMode)
}

func TestExtractDemoFallbackWhenNothingParses(t *testing.T) {
	gen := newFakeGenerator(func(string) (string, error) {
		return "no json here", nil
	})
	coord := NewCoordinator(gen, Config{}, nil)

	result := coord.Extract(context.Background(), "some text", nil)

	assert.True(t, result.DemoMode)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, 0, result.SuccessfulChunks)
	// The demo set classifies green across the board.
	assert.Equal(t, len(result.Items), result.ClassificationSummary.Green)
}

func TestExtractGeneratorUnavailable(t *testing.T) {
	gen := newFakeGenerator(nil)
	gen.available = false
	coord := NewCoordinator(gen, Config{}, nil)

	result := coord.Extract(context.Background(), "text", nil)

	assert.True(t, result.DemoMode)
	assert.Zero(t, gen.calls)
}

func TestExtractDeduplicatesAcrossChunks(t *testing.T) {
	gen := newFakeGenerator(func(string) (string, error) {
		// Every chunk reports the same item with differing case.
		return itemResponse("  HEX BOLT ", "b-1"), nil
	})
	coord := NewCoordinator(gen, Config{ChunkSize: 30, MaxParallel: 2}, nil)

	text := strings.Repeat("a", 25) + "\n\n" + strings.Repeat("b", 25) + "\n\n" + strings.Repeat("c", 25)
	result := coord.Extract(context.Background(), text, nil)

	assert.Equal(t, 3, result.ChunksProcessed)
	require.Len(t, result.Items, 1)
}

func TestExtractRespectsConcurrencyCap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 16)
	gen := newFakeGenerator(func(string) (string, error) {
		started <- struct{}{}
		<-release
		return itemResponse("Bolt", "B-1"), nil
	})
	coord := NewCoordinator(gen, Config{ChunkSize: 20, MaxParallel: 2}, nil)

	var paragraphs []string
	for i := 0; i < 6; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i)), 15))
	}
	text := strings.Join(paragraphs, "\n\n")

	done := make(chan *Result, 1)
	go func() {
		done <- coord.Extract(context.Background(), text, nil)
	}()

	// Wait for the pool to saturate, then let everything through.
	<-started
	<-started
	close(release)
	<-done

	gen.mu.Lock()
	defer gen.mu.Unlock()
	assert.LessOrEqual(t, gen.maxSeen, 2)
	assert.Equal(t, 6, gen.calls)
}

func TestDeduplicateIdempotent(t *testing.T) {
	items := []Item{
		{Name: "Bolt", PartNumber: "B-1"},
		{Name: "bolt ", PartNumber: " b-1"},
		{Name: "Bolt", PartNumber: "B-2"},
		{Name: "Tape"},
	}

	once := Deduplicate(items)
	require.Len(t, once, 3)
	assert.Equal(t, "Bolt", once[0].Name) // first seen survives

	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestConfidenceBucketBoundaries(t *testing.T) {
	items := []Item{
		{Confidence: 0.8},
		{Confidence: 0.79999},
		{Confidence: 0.6},
		{Confidence: 0.59999},
	}

	d := distribution(items)

	assert.Equal(t, 1, d.High)
	assert.Equal(t, 2, d.Medium)
	assert.Equal(t, 1, d.Low)
}

func TestSummarizeBreakdown(t *testing.T) {
	items := []Item{
		{ActionPath: classify.ActionGreen, Label: classify.LabelConsumableWithPNQty},
		{ActionPath: classify.ActionGreen, Label: classify.LabelConsumableWithPNQty},
		{ActionPath: classify.ActionAmber, Label: classify.LabelPreAssembledKit},
		{ActionPath: classify.ActionRed, Label: classify.LabelRequiresManualReview},
	}

	s := Summarize(items)

	assert.Equal(t, 4, s.TotalItems)
	assert.Equal(t, 2, s.Green)
	assert.Equal(t, 1, s.Amber)
	assert.Equal(t, 1, s.Red)
	assert.Equal(t, 2, s.Breakdown[classify.LabelConsumableWithPNQty])
}
