package psychometric

import (
	"psychofit/domain/core"
)

// FitResult is the outcome of fitting one model to one dataset.
// Immutable once produced.
type FitResult struct {
	Model       string         `json:"model"`
	Theta       []float64      `json:"theta"`
	NLL         float64        `json:"nll"` // negative log-likelihood at Theta
	NumParams   int            `json:"num_params"`
	SampleSize  int            `json:"sample_size"`
	Converged   bool           `json:"converged"`
	Restarts    int            `json:"restarts"`
	Evaluations int            `json:"evaluations"`
	FittedAt    core.Timestamp `json:"fitted_at"`
}

// LogLikelihood returns the log-likelihood at the optimum.
func (r FitResult) LogLikelihood() float64 {
	return -r.NLL
}

// Criteria is the comparison record for one fitted model: information
// criteria on both conventions. Lower AIC/BIC means better support; higher
// rescaled values mean better support (log-evidence convention). Callers
// must not mix the two conventions.
type Criteria struct {
	Model         string  `json:"model"`
	LogLikelihood float64 `json:"log_likelihood"`
	AIC           float64 `json:"aic"`
	BIC           float64 `json:"bic"`
	RescaledAIC   float64 `json:"rescaled_aic"`
	RescaledBIC   float64 `json:"rescaled_bic"`
	NumParams     int     `json:"num_params"`
	SampleSize    int     `json:"sample_size"`
}

// Subject is one member of a synthetic population. TrueModel and TrueTheta
// are the generator's ground truth, hidden from the fitter.
type Subject struct {
	ID        core.SubjectID `json:"id"`
	TrueModel string         `json:"true_model"`
	TrueTheta []float64      `json:"true_theta"`
	Data      Dataset        `json:"data"`
}

// Population is a set of independently generated subjects.
type Population struct {
	Seed     int64     `json:"seed"`
	Subjects []Subject `json:"subjects"`
}
