// Package bms implements group-level Bayesian model selection behind the
// ports.GroupModelSelector interface: variational inference on a
// Dirichlet-multinomial model over per-subject model assignments, consuming
// a subjects x models matrix of log-evidence proxies (rescaled AIC/BIC).
package bms

import (
	"context"
	"math"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distmv"

	"psychofit/internal/errors"
	"psychofit/ports"
)

// Variational is the default GroupModelSelector implementation.
type Variational struct {
	// Alpha0 is the symmetric Dirichlet prior count per model (default 1).
	Alpha0 float64
	// Samples is the Monte Carlo sample count for exceedance probabilities
	// (default 100000).
	Samples int
	// MaxIter and Tol control the variational fixed-point iteration.
	MaxIter int
	Tol     float64
	// Seed drives the exceedance sampler.
	Seed int64
}

// NewVariational returns a selector with standard settings and the given
// sampling seed.
func NewVariational(seed int64) *Variational {
	return &Variational{
		Alpha0:  1,
		Samples: 100000,
		MaxIter: 200,
		Tol:     1e-6,
		Seed:    seed,
	}
}

// Select runs the variational updates until the Dirichlet counts stabilize,
// then derives expected frequencies, exceedance probabilities, the Bayesian
// omnibus risk against the equal-frequency null, and protected exceedance
// probabilities.
func (v *Variational) Select(ctx context.Context, evidence [][]float64) (ports.Selection, error) {
	if err := ctx.Err(); err != nil {
		return ports.Selection{}, err
	}
	n := len(evidence)
	if n == 0 {
		return ports.Selection{}, errors.InvalidInput("evidence matrix has no subjects")
	}
	k := len(evidence[0])
	if k < 2 {
		return ports.Selection{}, errors.InvalidInput("evidence matrix needs at least two models")
	}
	for _, row := range evidence {
		if len(row) != k {
			return ports.Selection{}, errors.InvalidInput("evidence matrix is not rectangular")
		}
	}

	alpha0 := v.Alpha0
	if alpha0 <= 0 {
		alpha0 = 1
	}
	maxIter := v.MaxIter
	if maxIter <= 0 {
		maxIter = 200
	}
	tol := v.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	alpha := make([]float64, k)
	for i := range alpha {
		alpha[i] = alpha0
	}

	u := make([][]float64, n)
	for i := range u {
		u[i] = make([]float64, k)
	}

	logu := make([]float64, k)
	for iter := 0; iter < maxIter; iter++ {
		sumAlpha := floats.Sum(alpha)
		digSum := mathext.Digamma(sumAlpha)

		// E-step: posterior model attribution per subject.
		beta := make([]float64, k)
		for i, row := range evidence {
			for j := 0; j < k; j++ {
				logu[j] = row[j] + mathext.Digamma(alpha[j]) - digSum
			}
			norm := floats.LogSumExp(logu)
			for j := 0; j < k; j++ {
				u[i][j] = math.Exp(logu[j] - norm)
				beta[j] += u[i][j]
			}
		}

		// M-step: update Dirichlet counts.
		delta := 0.0
		for j := 0; j < k; j++ {
			next := alpha0 + beta[j]
			delta = math.Max(delta, math.Abs(next-alpha[j]))
			alpha[j] = next
		}
		if delta < tol {
			break
		}
	}

	sumAlpha := floats.Sum(alpha)
	freq := make([]float64, k)
	for j := range freq {
		freq[j] = alpha[j] / sumAlpha
	}

	xp := v.exceedance(alpha)
	bor := v.omnibusRisk(evidence, u, alpha, alpha0)

	pxp := make([]float64, k)
	for j := range pxp {
		pxp[j] = (1-bor)*xp[j] + bor/float64(k)
	}

	return ports.Selection{
		Frequencies:         freq,
		Alpha:               alpha,
		Exceedance:          xp,
		ProtectedExceedance: pxp,
		BayesOmnibusRisk:    bor,
		Attribution:         u,
	}, nil
}

// exceedance estimates P(r_k > r_j for all j != k) by sampling the Dirichlet
// posterior.
func (v *Variational) exceedance(alpha []float64) []float64 {
	k := len(alpha)
	samples := v.Samples
	if samples <= 0 {
		samples = 100000
	}

	src := randv2.NewPCG(uint64(v.Seed), uint64(v.Seed)+1)
	dir := distmv.NewDirichlet(alpha, src)

	counts := make([]int, k)
	r := make([]float64, k)
	for s := 0; s < samples; s++ {
		dir.Rand(r)
		counts[argmax(r)]++
	}

	xp := make([]float64, k)
	for j := range xp {
		xp[j] = float64(counts[j]) / float64(samples)
	}
	return xp
}

// omnibusRisk compares the free energy of the random-effects model against
// the null in which every model is equally frequent:
// BOR = 1 / (1 + exp(F1 - F0)).
func (v *Variational) omnibusRisk(evidence, u [][]float64, alpha []float64, alpha0 float64) float64 {
	n := len(evidence)
	k := len(alpha)

	// F0: all subjects share the uniform frequency profile.
	f0 := 0.0
	row := make([]float64, k)
	for i := range evidence {
		copy(row, evidence[i])
		f0 += floats.LogSumExp(row) - math.Log(float64(k))
	}

	sumAlpha := floats.Sum(alpha)
	digSum := mathext.Digamma(sumAlpha)
	elogr := make([]float64, k)
	for j := range elogr {
		elogr[j] = mathext.Digamma(alpha[j]) - digSum
	}

	// Entropy of q(r).
	lgSum, _ := math.Lgamma(sumAlpha)
	sqf := -lgSum
	for j := 0; j < k; j++ {
		lg, _ := math.Lgamma(alpha[j])
		sqf += lg - (alpha[j]-1)*elogr[j]
	}

	// Entropy of q(m) and expected log-joint.
	lg0Sum, _ := math.Lgamma(alpha0 * float64(k))
	lg0, _ := math.Lgamma(alpha0)
	elj := lg0Sum - float64(k)*lg0
	sqm := 0.0
	for j := 0; j < k; j++ {
		elj += (alpha0 - 1) * elogr[j]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			if u[i][j] > 0 {
				sqm -= u[i][j] * math.Log(u[i][j])
			}
			elj += u[i][j] * (evidence[i][j] + elogr[j])
		}
	}

	f1 := elj + sqf + sqm
	return 1 / (1 + math.Exp(f1-f0))
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
