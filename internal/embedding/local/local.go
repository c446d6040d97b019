package local

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"

	"connections/internal/embedding"
)

// DefaultDimension matches the width of a small English NLP pipeline's
// document vectors.
const DefaultDimension = 96

// Embedder produces deterministic document vectors without any model file
// or network access. Each word maps to a unit vector built from hashed
// seeds of the word itself and of its character trigrams, so words sharing
// stems land close together; a document is the mean of its word vectors.
type Embedder struct {
	dimension int
}

// NewEmbedder returns an embedder of the given width; non-positive widths
// fall back to DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "local" }

// Dimension returns the width of the produced vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the mean word vector of text. Text without words yields a
// zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	words := embedding.Analyze(text)
	if len(words) == 0 {
		return vec, nil
	}
	for _, w := range words {
		wv := e.wordVector(w)
		for i := range vec {
			vec[i] += wv[i]
		}
	}
	n := float64(len(words))
	for i := range vec {
		vec[i] /= n
	}
	return vec, nil
}

// EmbedBatch embeds texts one by one; the local model has no batch path.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Embedder) wordVector(word string) []float64 {
	vec := make([]float64, e.dimension)
	e.accumulate(vec, word, 2)
	padded := []rune("<" + word + ">")
	for i := 0; i+3 <= len(padded); i++ {
		e.accumulate(vec, string(padded[i:i+3]), 1)
	}
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// accumulate adds weight times a pseudo-random vector seeded by key.
func (e *Embedder) accumulate(vec []float64, key string, weight float64) {
	state := xxhash.Sum64String(key)
	for i := range vec {
		state = splitmix64(state)
		// Map the top 53 bits to [-1, 1).
		u := float64(state>>11)/float64(1<<53)*2 - 1
		vec[i] += weight * u
	}
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	z := x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
