package psychometric

import (
	"fmt"
	"math/rand"

	"psychofit/domain/core"
)

// Bounds holds the hard admissible box [Lower, Upper] and the plausible
// sub-box [PlausibleLower, PlausibleUpper] used only to initialize search.
type Bounds struct {
	Lower          []float64 `json:"lower"`
	Upper          []float64 `json:"upper"`
	PlausibleLower []float64 `json:"plausible_lower"`
	PlausibleUpper []float64 `json:"plausible_upper"`
}

// Dim returns the parameter dimensionality.
func (b Bounds) Dim() int {
	return len(b.Lower)
}

// Validate checks that all four boxes agree in length, that Lower <= Upper,
// and that the plausible box lies inside the hard box.
func (b Bounds) Validate() error {
	n := len(b.Lower)
	if len(b.Upper) != n || len(b.PlausibleLower) != n || len(b.PlausibleUpper) != n {
		return fmt.Errorf("%w: lengths %d/%d/%d/%d", core.ErrInvalidBounds,
			len(b.Lower), len(b.Upper), len(b.PlausibleLower), len(b.PlausibleUpper))
	}
	for i := 0; i < n; i++ {
		if b.Lower[i] > b.Upper[i] {
			return fmt.Errorf("%w: component %d has LB > UB", core.ErrInvalidBounds, i)
		}
		if b.PlausibleLower[i] > b.PlausibleUpper[i] {
			return fmt.Errorf("%w: component %d has PLB > PUB", core.ErrInvalidBounds, i)
		}
		if b.PlausibleLower[i] < b.Lower[i] || b.PlausibleUpper[i] > b.Upper[i] {
			return fmt.Errorf("%w: component %d plausible box outside hard box", core.ErrInvalidBounds, i)
		}
	}
	return nil
}

// Contains reports whether theta lies inside the hard box component-wise.
func (b Bounds) Contains(theta []float64) bool {
	if len(theta) != b.Dim() {
		return false
	}
	for i, v := range theta {
		if v < b.Lower[i] || v > b.Upper[i] {
			return false
		}
	}
	return true
}

// SamplePlausible draws a parameter vector uniformly from the plausible box
// using the supplied random stream.
func (b Bounds) SamplePlausible(rng *rand.Rand) []float64 {
	theta := make([]float64, b.Dim())
	for i := range theta {
		theta[i] = b.PlausibleLower[i] + rng.Float64()*(b.PlausibleUpper[i]-b.PlausibleLower[i])
	}
	return theta
}
