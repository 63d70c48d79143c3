package fit

import (
	"context"
	"math"

	"psychofit/internal/errors"
	"psychofit/ports"

	"gonum.org/v1/gonum/optimize"
)

// NelderMead adapts gonum's derivative-free simplex method to the bounded
// Optimizer port. Box constraints are enforced by an infinite penalty:
// Nelder-Mead only compares objective values, so vertices outside [lb, ub]
// are never accepted and the returned point stays inside the box.
type NelderMead struct {
	// MaxEvaluations caps objective evaluations per run (0 means the
	// gonum default).
	MaxEvaluations int
}

// Minimize runs a single local search from x0.
func (nm *NelderMead) Minimize(ctx context.Context, obj ports.Objective, x0, lb, ub []float64) (ports.Minimum, error) {
	if err := ctx.Err(); err != nil {
		return ports.Minimum{}, err
	}
	if len(x0) != obj.Dim() || len(lb) != obj.Dim() || len(ub) != obj.Dim() {
		return ports.Minimum{}, errors.InvalidInput("x0 and bounds must match the objective dimension")
	}

	penalized := func(x []float64) float64 {
		for i, v := range x {
			if v < lb[i] || v > ub[i] {
				return math.Inf(1)
			}
		}
		f := obj.Objective(x)
		if math.IsNaN(f) {
			return math.Inf(1)
		}
		return f
	}

	problem := optimize.Problem{Func: penalized}
	settings := &optimize.Settings{}
	if nm.MaxEvaluations > 0 {
		settings.FuncEvaluations = nm.MaxEvaluations
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return ports.Minimum{}, errors.OptimizerFailure(err)
	}

	converged := err == nil &&
		result.Status != optimize.Failure &&
		result.Status != optimize.IterationLimit &&
		result.Status != optimize.FunctionEvaluationLimit

	x := make([]float64, len(result.X))
	copy(x, result.X)
	return ports.Minimum{
		X:           x,
		F:           result.F,
		Converged:   converged,
		Evaluations: result.Stats.FuncEvaluations,
	}, nil
}
