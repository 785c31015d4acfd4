package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jinford/yoga-rag/internal/core/search"
)

func TestCosineSimilarity_IdenticalVectors(t *testing.T) {
	a := []float32{0.5, 0.3, 0.2}

	score := search.CosineSimilarity(a, a)

	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosineSimilarity_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	score := search.CosineSimilarity(a, b)

	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestCosineSimilarity_OppositeVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-1, -2, -3}

	score := search.CosineSimilarity(a, b)

	assert.InDelta(t, -1.0, score, 1e-9)
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}

	score := search.CosineSimilarity(a, b)

	assert.Equal(t, 0.0, score)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}

	score := search.CosineSimilarity(a, b)

	assert.Equal(t, 0.0, score)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.1, 0.9, 0.4}
	b := []float32{0.7, 0.2, 0.5}

	assert.InDelta(t, search.CosineSimilarity(a, b), search.CosineSimilarity(b, a), 1e-12)
}
