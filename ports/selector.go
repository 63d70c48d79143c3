package ports

import (
	"context"
)

// GroupModelSelector is the group-level Bayesian model selection procedure.
// The evidence matrix is subjects x models on the log-evidence scale
// (rescaled AIC or rescaled BIC; callers must not mix conventions). The
// pipeline consumes Selection as opaque results to report; any standard
// random-effects implementation is substitutable.
type GroupModelSelector interface {
	Select(ctx context.Context, evidence [][]float64) (Selection, error)
}

// Selection holds population-level model selection results.
type Selection struct {
	// Frequencies are the expected model frequencies (sum to 1).
	Frequencies []float64 `json:"frequencies"`
	// Alpha are the Dirichlet posterior counts behind Frequencies.
	Alpha []float64 `json:"alpha"`
	// Exceedance[k] is the probability that model k is more frequent than
	// every other model.
	Exceedance []float64 `json:"exceedance"`
	// ProtectedExceedance corrects Exceedance for the possibility that all
	// models are equally frequent.
	ProtectedExceedance []float64 `json:"protected_exceedance"`
	// BayesOmnibusRisk is the posterior probability that model frequencies
	// are all equal (chance differences only).
	BayesOmnibusRisk float64 `json:"bayes_omnibus_risk"`
	// Attribution[n][k] is the posterior probability that subject n's data
	// came from model k.
	Attribution [][]float64 `json:"attribution,omitempty"`
}
