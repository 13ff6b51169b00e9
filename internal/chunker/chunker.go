// Package chunker splits document text into bounded-size segments for
// parallel extraction. Splitting prefers blank-line paragraph boundaries
// and falls back to single-line boundaries for oversized paragraphs, so
// joining the chunks with their original separators reproduces the input.
package chunker

import "strings"

// DefaultMaxChunkSize is the default chunk size limit in characters.
const DefaultMaxChunkSize = 1500

// Split divides text into chunks of at most maxSize characters.
//
// Paragraphs (blank-line separated) are greedily packed into chunks. Any
// chunk still over the limit is re-split on single-line boundaries with the
// same greedy packing. A single line longer than maxSize is emitted as its
// own chunk unmodified; lines are never broken mid-way.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	chunks := pack(strings.Split(text, "\n\n"), "\n\n", maxSize)

	final := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk) > maxSize {
			final = append(final, pack(strings.Split(chunk, "\n"), "\n", maxSize)...)
		} else {
			final = append(final, chunk)
		}
	}
	return final
}

// pack greedily joins consecutive units into chunks without exceeding
// maxSize, starting a new chunk when the next unit would overflow. A unit
// that alone exceeds maxSize becomes a chunk by itself.
func pack(units []string, sep string, maxSize int) []string {
	var (
		chunks  []string
		current []string
		length  int
	)

	for _, unit := range units {
		if length+len(unit) > maxSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
			current = []string{unit}
			length = len(unit)
			continue
		}
		current = append(current, unit)
		length += len(unit)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}
	return chunks
}
