package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortInputSingleChunk(t *testing.T) {
	text := "Step 1: Prepare M6x20mm hex bolts."
	chunks := Split(text, 1500)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitEmptyInput(t *testing.T) {
	chunks := Split("", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0])
}

func TestSplitPacksParagraphsGreedily(t *testing.T) {
	paras := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
		strings.Repeat("d", 40),
	}
	text := strings.Join(paras, "\n\n")

	chunks := Split(text, 100)

	// Two paragraphs fit per chunk (80 chars), a third would overflow.
	require.Len(t, chunks, 2)
	assert.Equal(t, paras[0]+"\n\n"+paras[1], chunks[0])
	assert.Equal(t, paras[2]+"\n\n"+paras[3], chunks[1])
}

func TestSplitParagraphRoundTrip(t *testing.T) {
	paras := []string{
		"Step 1: Part preparation with fasteners and adhesives.",
		"Step 2: Chassis assembly using M6x20mm bolts, torque 8-10 Nm.",
		"Step 3: Wiring work, secure harnesses with 25mm tape.",
		"Step 4: Sealing process, apply silicone compound to joints.",
	}
	text := strings.Join(paras, "\n\n")

	chunks := Split(text, 80)

	// No paragraph exceeds the limit, so rejoining with the paragraph
	// separator must reproduce the input exactly.
	assert.Equal(t, text, strings.Join(chunks, "\n\n"))
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 80)
	}
}

func TestSplitOversizedParagraphFallsBackToLines(t *testing.T) {
	lines := []string{
		strings.Repeat("x", 30),
		strings.Repeat("y", 30),
		strings.Repeat("z", 30),
	}
	// One paragraph of three lines, 92 chars total.
	text := strings.Join(lines, "\n")

	chunks := Split(text, 65)

	require.Len(t, chunks, 2)
	assert.Equal(t, lines[0]+"\n"+lines[1], chunks[0])
	assert.Equal(t, lines[2], chunks[1])
	assert.Equal(t, text, strings.Join(chunks, "\n"))
}

func TestSplitIndivisibleLineEmittedAsIs(t *testing.T) {
	long := strings.Repeat("q", 200)
	text := "short intro\n\n" + long

	chunks := Split(text, 50)

	require.Len(t, chunks, 2)
	assert.Equal(t, "short intro", chunks[0])
	// A single line over the limit is never broken.
	assert.Equal(t, long, chunks[1])
}

func TestSplitZeroLimitUsesDefault(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks := Split(text, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitChunkSizesBounded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("line with some assembly instructions and part numbers\n")
		if i%5 == 4 {
			sb.WriteString("\n")
		}
	}

	for _, limit := range []int{60, 120, 500, 1500} {
		chunks := Split(sb.String(), limit)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), limit, "limit %d", limit)
		}
	}
}
