package vectorstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineDistance(t *testing.T) {
	d, ok := cosineDistance([]float32{1, 0}, []float32{2, 0})
	assert.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)

	d, ok = cosineDistance([]float32{1, 0}, []float32{-1, 0})
	assert.True(t, ok)
	assert.InDelta(t, 2, d, 1e-9)

	_, ok = cosineDistance([]float32{0, 0}, []float32{1, 0})
	assert.False(t, ok)

	_, ok = cosineDistance([]float32{1}, []float32{1, 0})
	assert.False(t, ok)
}

func TestScoreFromDistance(t *testing.T) {
	zero := 0.0
	half := 0.25
	nan := math.NaN()

	assert.Equal(t, 0.5, ScoreFromDistance(nil), "absent distance is neutral")
	assert.Equal(t, 1.0, ScoreFromDistance(&zero), "zero distance is a perfect match")
	assert.Equal(t, 0.75, ScoreFromDistance(&half))
	assert.Equal(t, 0.5, ScoreFromDistance(&nan))
}
