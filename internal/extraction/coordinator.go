package extraction

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/bomatch/internal/chunker"
	"github.com/fyrsmithlabs/bomatch/internal/classify"
)

// DefaultMaxParallel bounds the number of in-flight generation calls.
const DefaultMaxParallel = 8

// Config holds coordinator tunables.
type Config struct {
	// ChunkSize is the maximum chunk size in characters.
	ChunkSize int

	// MaxParallel caps concurrent generation calls.
	MaxParallel int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultMaxChunkSize
	}
	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
}

// Coordinator fans a document out into chunks, extracts items from each
// chunk concurrently, and merges the deduplicated results. All run
// statistics are per-call; a Coordinator is safe for concurrent use.
type Coordinator struct {
	gen    Generator
	config Config
	logger *zap.Logger
}

// NewCoordinator creates an extraction coordinator. The generator may be
// unavailable; extraction then degrades to the demo item set.
func NewCoordinator(gen Generator, config Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	return &Coordinator{
		gen:    gen,
		config: config,
		logger: logger,
	}
}

// Extract processes translated document text and returns the deduplicated
// classified item set with aggregate statistics. Per-chunk failures are
// isolated and counted; they never abort the run. A run that yields no
// items at all substitutes the fixed demo set and flags the result.
func (c *Coordinator) Extract(ctx context.Context, text string, focusCategories []string) *Result {
	if len(focusCategories) == 0 {
		focusCategories = DefaultFocusCategories
	}

	chunks := chunker.Split(text, c.config.ChunkSize)
	c.logger.Info("starting chunked extraction",
		zap.Int("chunks", len(chunks)),
		zap.Int("characters", len(text)),
		zap.Int("max_parallel", c.config.MaxParallel),
	)

	perChunk := make([][]Item, len(chunks))
	sem := make(chan struct{}, c.config.MaxParallel)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, chunk string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			perChunk[idx] = c.extractChunk(ctx, chunk, focusCategories, idx+1, len(chunks))
		}(i, chunk)
	}
	wg.Wait()

	var all []Item
	successful := 0
	for i, items := range perChunk {
		if len(items) == 0 {
			continue
		}
		successful++
		all = append(all, items...)
		c.logger.Debug("chunk extracted", zap.Int("chunk", i+1), zap.Int("items", len(items)))
	}

	demoMode := false
	if len(all) == 0 {
		c.logger.Warn("no items extracted from any chunk, substituting demo items")
		all = demoItems()
		demoMode = true
	}

	unique := Deduplicate(all)
	c.logger.Info("extraction completed",
		zap.Int("successful_chunks", successful),
		zap.Int("total_items", len(all)),
		zap.Int("unique_items", len(unique)),
		zap.Bool("demo_mode", demoMode),
	)

	return &Result{
		Items:                  unique,
		TotalItems:             len(unique),
		ChunksProcessed:        len(chunks),
		SuccessfulChunks:       successful,
		FocusCategories:        focusCategories,
		ConfidenceDistribution: distribution(unique),
		ClassificationSummary:  Summarize(unique),
		DemoMode:               demoMode,
	}
}

// extractChunk runs one generation call and decodes its output. Any
// failure yields zero items for this chunk.
func (c *Coordinator) extractChunk(ctx context.Context, chunk string, categories []string, index, total int) []Item {
	if c.gen == nil || !c.gen.Available() {
		c.logger.Debug("generator unavailable", zap.Int("chunk", index))
		return nil
	}

	prompt := buildExtractionPrompt(chunk, categories, index, total)
	response, err := c.gen.Generate(ctx, prompt, extractionTemperature, extractionMaxTokens)
	if err != nil {
		c.logger.Warn("chunk generation failed",
			zap.Int("chunk", index),
			zap.Int("total", total),
			zap.Error(err),
		)
		return nil
	}

	records := DecodeRecords(response)
	if len(records) == 0 {
		c.logger.Warn("no records recovered from chunk output", zap.Int("chunk", index))
		return nil
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, NormalizeRecord(record, chunk))
	}
	return items
}

// Deduplicate drops items whose composite key (lower-cased trimmed name,
// lower-cased trimmed part number) was already seen, preserving first-seen
// order. Running it on its own output is a no-op.
func Deduplicate(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	unique := make([]Item, 0, len(items))
	for _, item := range items {
		key := dedupKey(item.Name, item.PartNumber)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}

func dedupKey(name, partNumber string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(partNumber))
}

// distribution buckets confidence scores: >=0.8 high, >=0.6 medium,
// otherwise low.
func distribution(items []Item) ConfidenceDistribution {
	var d ConfidenceDistribution
	for _, item := range items {
		switch {
		case item.Confidence >= 0.8:
			d.High++
		case item.Confidence >= 0.6:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}

// Summarize aggregates action-path counts and the per-label breakdown.
func Summarize(items []Item) ClassificationSummary {
	summary := ClassificationSummary{
		TotalItems: len(items),
		Breakdown:  make(map[classify.Label]int),
	}
	for _, item := range items {
		switch item.ActionPath {
		case classify.ActionGreen:
			summary.Green++
		case classify.ActionAmber:
			summary.Amber++
		default:
			summary.Red++
		}
		summary.Breakdown[item.Label]++
	}
	return summary
}
