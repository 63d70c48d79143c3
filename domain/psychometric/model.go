package psychometric

import (
	"fmt"
	"math"

	"psychofit/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Model names used in results, evidence matrices and storage.
const (
	ModelStationary    = "stationary"
	ModelNonStationary = "nonstationary"
)

// Model maps a stimulus and a parameter vector to a response probability.
// Spread parameters are carried in log-space (ln sigma) so that any real
// value maps to a positive sigma; probability functions exponentiate
// internally. Prob validates dimensionality and the lapse rate but not the
// bounds box; BoundedProb adds the bounds check for callers at the boundary.
type Model interface {
	Name() string
	NumParams() int
	DefaultBounds() Bounds

	// Prob returns the probability of observing trial.Response given the
	// stimulus and theta.
	Prob(theta []float64, trial Trial) (float64, error)
}

// BoundedProb evaluates m.Prob after rejecting theta outside the hard box.
// Out-of-bounds vectors fail loudly rather than being clamped.
func BoundedProb(m Model, b Bounds, theta []float64, trial Trial) (float64, error) {
	if len(theta) != m.NumParams() {
		return 0, fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(theta), m.NumParams())
	}
	if !b.Contains(theta) {
		return 0, fmt.Errorf("%w: theta %v", core.ErrParameterOutOfBounds, theta)
	}
	return m.Prob(theta, trial)
}

// lapsed applies the lapse correction to the underlying psychometric value.
// With lapse rate L the positive-category probability is L/2 + (1-L)*psi,
// which bounds p inside [L/2, 1-L/2].
func lapsed(psi, lapse float64) float64 {
	return lapse/2 + (1-lapse)*psi
}

// psi is the underlying psychometric function Phi((x-mu)/sigma).
func psi(x, mu, sigma float64) float64 {
	return distuv.UnitNormal.CDF((x - mu) / sigma)
}

// Stationary is the three-parameter model theta = (mu, ln sigma, lapse).
type Stationary struct{}

func (Stationary) Name() string   { return ModelStationary }
func (Stationary) NumParams() int { return 3 }

// Parameter indices for the stationary model.
const (
	StatMu = iota
	StatLnSigma
	StatLapse
)

func (Stationary) Prob(theta []float64, trial Trial) (float64, error) {
	if len(theta) != 3 {
		return 0, fmt.Errorf("%w: got %d, want 3", core.ErrDimensionMismatch, len(theta))
	}
	lapse := theta[StatLapse]
	if lapse < 0 || lapse > 1 {
		return 0, fmt.Errorf("%w: %g", core.ErrInvalidLapse, lapse)
	}
	sigma := math.Exp(theta[StatLnSigma])
	p := lapsed(psi(trial.Stimulus, theta[StatMu], sigma), lapse)
	return categorize(p, trial.Response)
}

func (Stationary) DefaultBounds() Bounds {
	return Bounds{
		Lower:          []float64{-25, math.Log(0.5), 0},
		Upper:          []float64{25, math.Log(50), 1},
		PlausibleLower: []float64{-10, math.Log(1), 0.01},
		PlausibleUpper: []float64{10, math.Log(20), 0.2},
	}
}

// NonStationary is the four-parameter model theta = (mu, ln sigma1,
// ln sigma2, lapse): the spread differs between the early and late regime.
// With ln sigma1 == ln sigma2 it reproduces Stationary exactly.
type NonStationary struct{}

func (NonStationary) Name() string   { return ModelNonStationary }
func (NonStationary) NumParams() int { return 4 }

// Parameter indices for the non-stationary model.
const (
	NonStatMu = iota
	NonStatLnSigma1
	NonStatLnSigma2
	NonStatLapse
)

func (NonStationary) Prob(theta []float64, trial Trial) (float64, error) {
	if len(theta) != 4 {
		return 0, fmt.Errorf("%w: got %d, want 4", core.ErrDimensionMismatch, len(theta))
	}
	lapse := theta[NonStatLapse]
	if lapse < 0 || lapse > 1 {
		return 0, fmt.Errorf("%w: %g", core.ErrInvalidLapse, lapse)
	}
	lnSigma := theta[NonStatLnSigma1]
	if trial.Regime == RegimeLate {
		lnSigma = theta[NonStatLnSigma2]
	}
	p := lapsed(psi(trial.Stimulus, theta[NonStatMu], math.Exp(lnSigma)), lapse)
	return categorize(p, trial.Response)
}

func (NonStationary) DefaultBounds() Bounds {
	return Bounds{
		Lower:          []float64{-25, math.Log(0.5), math.Log(0.5), 0},
		Upper:          []float64{25, math.Log(50), math.Log(50), 1},
		PlausibleLower: []float64{-10, math.Log(1), math.Log(1), 0.01},
		PlausibleUpper: []float64{10, math.Log(20), math.Log(20), 0.2},
	}
}

// categorize maps the positive-category probability to the probability of
// the observed response.
func categorize(p float64, response Category) (float64, error) {
	switch response {
	case CategoryPositive:
		return p, nil
	case CategoryNegative:
		return 1 - p, nil
	default:
		return 0, core.ErrInvalidResponse
	}
}

// ModelByName resolves a model name to its variant.
func ModelByName(name string) (Model, error) {
	switch name {
	case ModelStationary:
		return Stationary{}, nil
	case ModelNonStationary:
		return NonStationary{}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}
