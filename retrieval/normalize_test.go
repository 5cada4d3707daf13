package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScores(t *testing.T) {
	results := []*Result{
		{ID: "A", Score: 0.008},
		{ID: "B", Score: 0.004},
		{ID: "C", Score: 0.002},
	}

	normalized := NormalizeScores(results)
	require.Len(t, normalized, 3)
	assert.InDelta(t, 100.0, normalized[0].Score, 1e-9)
	assert.InDelta(t, 50.0, normalized[1].Score, 1e-9)
	assert.InDelta(t, 25.0, normalized[2].Score, 1e-9)

	// Inputs stay untouched.
	assert.InDelta(t, 0.008, results[0].Score, 1e-9)
}

func TestNormalizeScores_SkipsNonPositiveMax(t *testing.T) {
	zero := []*Result{{ID: "A", Score: 0}, {ID: "B", Score: 0}}
	assert.Equal(t, zero, NormalizeScores(zero))

	negative := []*Result{{ID: "A", Score: -0.5}}
	normalized := NormalizeScores(negative)
	assert.InDelta(t, -0.5, normalized[0].Score, 1e-9)
}

func TestNormalizeScores_Empty(t *testing.T) {
	assert.Empty(t, NormalizeScores(nil))
}

func TestNormalizeScores_PreservesOrder(t *testing.T) {
	results := []*Result{
		{ID: "A", Score: 0.9},
		{ID: "B", Score: 0.5},
		{ID: "C", Score: 0.1},
	}
	normalized := NormalizeScores(results)
	assert.Equal(t, "A", normalized[0].ID)
	assert.Equal(t, "B", normalized[1].ID)
	assert.Equal(t, "C", normalized[2].ID)
}
