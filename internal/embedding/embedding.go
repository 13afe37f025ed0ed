// Package embedding turns text into vectors for the chunk index.
package embedding

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"strings"
	"unicode"
)

// Embedder maps each text to a vector of Dimension() components.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// DefaultDimension is the vector size of the hash embedder.
const DefaultDimension = 256

// Hash is a deterministic bag-of-words embedder: every lowercase alphanumeric
// token increments one md5-selected bucket, and the vector is L2-normalized.
// It needs no network access, which makes it the default for demos and tests.
type Hash struct {
	dim int
}

var _ Embedder = (*Hash)(nil)

// NewHash returns a Hash embedder; dim <= 0 selects DefaultDimension.
func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Hash{dim: dim}
}

func (h *Hash) Dimension() int { return h.dim }

func (h *Hash) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.embedOne(text)
	}
	return out, nil
}

func (h *Hash) embedOne(text string) []float32 {
	acc := make([]float64, h.dim)
	for _, tok := range Tokenize(text) {
		acc[bucket(tok, h.dim)]++
	}
	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm) + 1e-12

	vec := make([]float32, h.dim)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func bucket(token string, dim int) int {
	sum := md5.Sum([]byte(token))
	return int(binary.LittleEndian.Uint32(sum[:4]) % uint32(dim))
}

// Tokenize lowercases text and splits it on every non-alphanumeric rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
