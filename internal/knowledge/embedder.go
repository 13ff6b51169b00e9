package knowledge

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultVectorSize is the dimension of hashed feature vectors.
const DefaultVectorSize = 256

// HashEmbedder produces deterministic bag-of-words embeddings by feature
// hashing. Tokens and their character trigrams are hashed into a fixed-size
// vector, which is then L2-normalized so dot products behave as cosine
// similarity. It needs no model files and no network, which keeps both
// backends usable out of the box; edit-distance scoring on top of the
// vector search compensates for the coarser embedding space.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns an embedder with the given dimension,
// or DefaultVectorSize when dim <= 0.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultVectorSize
	}
	return &HashEmbedder{dim: dim}
}

// Dim returns the embedding dimension.
func (e *HashEmbedder) Dim() int { return e.dim }

// Embed returns the normalized feature vector for text. The zero vector is
// returned for text with no tokens.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		vec[e.bucket(tok)]++
		for _, tri := range trigrams(tok) {
			vec[e.bucket(tri)] += 0.5
		}
	}
	normalize(vec)
	return vec, nil
}

func (e *HashEmbedder) bucket(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(e.dim))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func trigrams(tok string) []string {
	if len(tok) < 3 {
		return nil
	}
	grams := make([]string, 0, len(tok)-2)
	for i := 0; i+3 <= len(tok); i++ {
		grams = append(grams, tok[i:i+3])
	}
	return grams
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}
