package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"psychofit/domain/psychometric"
)

// TestCriteria_ReferenceValues pins the criteria to their standard
// definitions: LL=-50, k=3, n=100.
func TestCriteria_ReferenceValues(t *testing.T) {
	ll, k, n := -50.0, 3, 100

	assert.InDelta(t, 106.0, AIC(ll, k), 1e-12)
	assert.InDelta(t, 100+3*math.Log(100), BIC(ll, k, n), 1e-12)
	assert.InDelta(t, -53.0, RescaledAIC(ll, k), 1e-12)
	assert.InDelta(t, -50-1.5*math.Log(100), RescaledBIC(ll, k, n), 1e-12)

	// Spot values from the closed forms.
	assert.InDelta(t, 113.8155, BIC(ll, k, n), 1e-3)
	assert.InDelta(t, -56.9078, RescaledBIC(ll, k, n), 1e-3)
}

func TestFromFit(t *testing.T) {
	r := psychometric.FitResult{
		Model:      psychometric.ModelStationary,
		NLL:        50,
		NumParams:  3,
		SampleSize: 100,
	}
	c := FromFit(r)

	assert.Equal(t, psychometric.ModelStationary, c.Model)
	assert.InDelta(t, -50.0, c.LogLikelihood, 1e-12)
	assert.InDelta(t, 106.0, c.AIC, 1e-12)
	assert.InDelta(t, -53.0, c.RescaledAIC, 1e-12)
	assert.Equal(t, 3, c.NumParams)
	assert.Equal(t, 100, c.SampleSize)
}

// TestCompare_Conventions verifies the two conventions point the same way:
// the lower-AIC model also has the higher rescaled AIC.
func TestCompare_Conventions(t *testing.T) {
	records := Compare([]psychometric.FitResult{
		{Model: "a", NLL: 50, NumParams: 3, SampleSize: 100},
		{Model: "b", NLL: 49, NumParams: 4, SampleSize: 100},
	})

	bestAIC := BestByAIC(records)
	bestRescaled := 0
	for i, c := range records {
		if c.RescaledAIC > records[bestRescaled].RescaledAIC {
			bestRescaled = i
		}
	}
	assert.Equal(t, bestAIC, bestRescaled)
}

func TestBestBy_Empty(t *testing.T) {
	assert.Equal(t, -1, BestByAIC(nil))
	assert.Equal(t, -1, BestByBIC(nil))
}

func TestEvidenceRow(t *testing.T) {
	records := []psychometric.Criteria{
		{Model: "a", RescaledAIC: -53, RescaledBIC: -57},
		{Model: "b", RescaledAIC: -54, RescaledBIC: -55},
	}

	assert.Equal(t, []float64{-53, -54}, EvidenceRow(records, false))
	assert.Equal(t, []float64{-57, -55}, EvidenceRow(records, true))
}
