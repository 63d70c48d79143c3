package ports

import (
	"context"
)

// Objective is a scalar function over parameter vectors. Implementations
// must return +Inf (never NaN, never panic) for degenerate or out-of-bounds
// points so that optimizers can keep searching.
type Objective interface {
	Dim() int
	Objective(theta []float64) float64
}

// Optimizer is a bounded local minimizer. x0 must lie inside [lb, ub];
// behavior for an out-of-bounds start is undefined and implementations are
// free to reject it. The returned point lies inside [lb, ub] component-wise.
// No global optimality is guaranteed; callers mitigate local minima with
// multiple restarts.
type Optimizer interface {
	Minimize(ctx context.Context, obj Objective, x0, lb, ub []float64) (Minimum, error)
}

// Minimum is the outcome of one optimizer run.
type Minimum struct {
	X           []float64
	F           float64
	Converged   bool
	Evaluations int
}
