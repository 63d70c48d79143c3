package fit

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"psychofit/domain/core"
	"psychofit/domain/psychometric"
	internal "psychofit/internal"
	"psychofit/internal/errors"
	"psychofit/ports"
)

// Fitter finds maximum-likelihood parameters for a model/dataset pair under
// box constraints. It owns no randomness; initial points are sampled by the
// caller-supplied stream.
type Fitter struct {
	opt ports.Optimizer
	log *internal.Logger
}

// NewFitter creates a fitter around a bounded local optimizer.
func NewFitter(opt ports.Optimizer, logger *internal.Logger) *Fitter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Fitter{opt: opt, log: logger}
}

// NewDefaultFitter returns a fitter backed by Nelder-Mead.
func NewDefaultFitter(logger *internal.Logger) *Fitter {
	return NewFitter(&NelderMead{}, logger)
}

// Fit runs one local search from x0. x0 must lie inside the hard bounds.
// Non-convergence is surfaced on the result, not as an error, so callers can
// retry from a different start.
func (f *Fitter) Fit(ctx context.Context, obj *NLLObjective, x0 []float64) (psychometric.FitResult, error) {
	if !obj.Bounds.Contains(x0) {
		return psychometric.FitResult{}, errors.Wrapf(core.ErrStartOutOfBounds, "x0 %v", x0)
	}

	min, err := f.opt.Minimize(ctx, obj, x0, obj.Bounds.Lower, obj.Bounds.Upper)
	if err != nil {
		return psychometric.FitResult{}, err
	}

	return psychometric.FitResult{
		Model:       obj.Model.Name(),
		Theta:       min.X,
		NLL:         min.F,
		NumParams:   obj.Model.NumParams(),
		SampleSize:  len(obj.Data),
		Converged:   min.Converged,
		Restarts:    1,
		Evaluations: min.Evaluations,
		FittedAt:    core.Now(),
	}, nil
}

// FitMultiStart runs restarts independent local searches with x0 sampled
// uniformly from the plausible box and keeps the lowest NLL. Start points
// are drawn from rng up front, so results are reproducible even though the
// searches run in parallel.
func (f *Fitter) FitMultiStart(ctx context.Context, obj *NLLObjective, restarts int, rng *rand.Rand) (psychometric.FitResult, error) {
	if restarts < 1 {
		return psychometric.FitResult{}, core.ErrNoRestarts
	}

	starts := make([][]float64, restarts)
	for i := range starts {
		starts[i] = obj.Bounds.SamplePlausible(rng)
	}

	var mu sync.Mutex
	best := psychometric.FitResult{NLL: math.Inf(1)}
	evaluations := 0
	anyConverged := false

	g, gctx := errgroup.WithContext(ctx)
	for i, x0 := range starts {
		g.Go(func() error {
			res, err := f.Fit(gctx, obj, x0)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			evaluations += res.Evaluations
			if res.Converged {
				anyConverged = true
			}
			if res.NLL < best.NLL {
				best = res
			}
			f.log.Debug("restart %d/%d: model=%s nll=%.4f converged=%v", i+1, restarts, res.Model, res.NLL, res.Converged)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return psychometric.FitResult{}, err
	}

	if math.IsInf(best.NLL, 1) {
		return psychometric.FitResult{}, errors.OptimizerFailure(core.ErrDegenerateLikelihood)
	}

	best.Restarts = restarts
	best.Evaluations = evaluations
	// A run counts as converged when any restart converged; the best point
	// may itself come from a restart that hit an iteration cap.
	best.Converged = best.Converged || anyConverged
	return best, nil
}
