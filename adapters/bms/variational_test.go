package bms

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evidence rows are log-evidence proxies; only within-row differences matter.
func strongEvidence(n int, winner int, margin float64) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{-50, -50}
		rows[i][winner] += margin
	}
	return rows
}

func TestVariational_StrongConsensus(t *testing.T) {
	v := NewVariational(1)
	v.Samples = 20000

	sel, err := v.Select(context.Background(), strongEvidence(20, 0, 10))
	require.NoError(t, err)

	require.Len(t, sel.Frequencies, 2)
	assert.InDelta(t, 1.0, sel.Frequencies[0]+sel.Frequencies[1], 1e-9)
	assert.Greater(t, sel.Frequencies[0], 0.9)
	assert.Greater(t, sel.Exceedance[0], 0.99)
	assert.Less(t, sel.BayesOmnibusRisk, 0.05)
	// Protection barely moves the exceedance when BOR is small.
	assert.Greater(t, sel.ProtectedExceedance[0], 0.95)

	// Every subject is attributed to the winning model.
	require.Len(t, sel.Attribution, 20)
	for _, row := range sel.Attribution {
		assert.Greater(t, row[0], 0.99)
	}
}

func TestVariational_SymmetricEvidence(t *testing.T) {
	v := NewVariational(7)
	v.Samples = 20000

	rows := make([][]float64, 16)
	for i := range rows {
		rows[i] = []float64{-40, -40}
	}
	sel, err := v.Select(context.Background(), rows)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, sel.Frequencies[0], 0.05)
	assert.InDelta(t, 0.5, sel.Frequencies[1], 0.05)
	// Indistinguishable models leave the omnibus risk high.
	assert.Greater(t, sel.BayesOmnibusRisk, 0.5)
	// PXP collapses toward 1/K under protection.
	assert.InDelta(t, 0.5, sel.ProtectedExceedance[0], 0.1)
}

func TestVariational_MixedPopulation(t *testing.T) {
	v := NewVariational(3)
	v.Samples = 20000

	rows := append(strongEvidence(12, 0, 8), strongEvidence(6, 1, 8)...)
	sel, err := v.Select(context.Background(), rows)
	require.NoError(t, err)

	assert.Greater(t, sel.Frequencies[0], sel.Frequencies[1])
	assert.InDelta(t, 12.0/18.0, sel.Frequencies[0], 0.1)
	assert.Greater(t, sel.Exceedance[0], 0.5)
}

func TestVariational_Deterministic(t *testing.T) {
	rows := append(strongEvidence(8, 0, 4), strongEvidence(4, 1, 4)...)

	a, err := NewVariational(5).Select(context.Background(), rows)
	require.NoError(t, err)
	b, err := NewVariational(5).Select(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, a.Exceedance, b.Exceedance)
	assert.Equal(t, a.Frequencies, b.Frequencies)
	assert.Equal(t, a.BayesOmnibusRisk, b.BayesOmnibusRisk)
}

func TestVariational_InputValidation(t *testing.T) {
	v := NewVariational(1)

	_, err := v.Select(context.Background(), nil)
	assert.Error(t, err)

	_, err = v.Select(context.Background(), [][]float64{{-50}})
	assert.Error(t, err)

	_, err = v.Select(context.Background(), [][]float64{{-50, -50}, {-50}})
	assert.Error(t, err)
}

func TestVariational_SelectionSane(t *testing.T) {
	v := NewVariational(11)
	v.Samples = 20000

	sel, err := v.Select(context.Background(), strongEvidence(10, 1, 3))
	require.NoError(t, err)

	var xpSum, pxpSum float64
	for j := range sel.Exceedance {
		xpSum += sel.Exceedance[j]
		pxpSum += sel.ProtectedExceedance[j]
		assert.False(t, math.IsNaN(sel.Frequencies[j]))
		assert.GreaterOrEqual(t, sel.Alpha[j], 1.0)
	}
	assert.InDelta(t, 1.0, xpSum, 1e-9)
	assert.InDelta(t, 1.0, pxpSum, 1e-9)
	assert.GreaterOrEqual(t, sel.BayesOmnibusRisk, 0.0)
	assert.LessOrEqual(t, sel.BayesOmnibusRisk, 1.0)
}
