package fit

import (
	"math"

	"psychofit/domain/core"
	"psychofit/domain/psychometric"
	"psychofit/internal/errors"
)

// NLLObjective is the negative log-likelihood of a model over a dataset,
// held as an explicit object rather than a closure so that (model, dataset)
// pairs can be constructed and tested on their own.
//
// Objective returns +Inf for any theta outside the hard bounds and for any
// theta that assigns a trial probability <= 0, so optimizers simply move on
// instead of crashing on log(0).
type NLLObjective struct {
	Model  psychometric.Model
	Data   psychometric.Dataset
	Bounds psychometric.Bounds
}

// NewNLLObjective validates the (model, dataset, bounds) triple once at
// construction: dataset non-empty with legal responses, bounds well-formed,
// bounds dimensionality matching the model. Dimension mismatches fail fast
// here rather than inside the optimizer loop.
func NewNLLObjective(m psychometric.Model, data psychometric.Dataset, b psychometric.Bounds) (*NLLObjective, error) {
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid dataset")
	}
	if err := b.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid bounds")
	}
	if b.Dim() != m.NumParams() {
		return nil, errors.Wrapf(core.ErrDimensionMismatch,
			"bounds have %d components, model %s has %d parameters", b.Dim(), m.Name(), m.NumParams())
	}
	return &NLLObjective{Model: m, Data: data, Bounds: b}, nil
}

// Dim returns the parameter dimensionality.
func (o *NLLObjective) Dim() int {
	return o.Model.NumParams()
}

// Objective evaluates NLL(theta) = -sum over trials of log p(trial; theta).
func (o *NLLObjective) Objective(theta []float64) float64 {
	if len(theta) != o.Dim() || !o.Bounds.Contains(theta) {
		return math.Inf(1)
	}
	nll := 0.0
	for _, trial := range o.Data {
		p, err := o.Model.Prob(theta, trial)
		if err != nil || p <= 0 || math.IsNaN(p) {
			return math.Inf(1)
		}
		nll -= math.Log(p)
	}
	if math.IsNaN(nll) {
		return math.Inf(1)
	}
	return nll
}
