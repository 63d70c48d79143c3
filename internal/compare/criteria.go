package compare

import (
	"math"

	"psychofit/domain/psychometric"
)

// AIC is the Akaike information criterion: -2*LL + 2k. Lower is better.
func AIC(logLikelihood float64, numParams int) float64 {
	return -2*logLikelihood + 2*float64(numParams)
}

// BIC is the Bayesian information criterion: -2*LL + k*ln(n). Lower is better.
func BIC(logLikelihood float64, numParams, sampleSize int) float64 {
	return -2*logLikelihood + float64(numParams)*math.Log(float64(sampleSize))
}

// RescaledAIC shifts AIC onto the log-evidence scale: LL - k. Higher is better.
func RescaledAIC(logLikelihood float64, numParams int) float64 {
	return logLikelihood - float64(numParams)
}

// RescaledBIC shifts BIC onto the log-evidence scale: LL - (k/2)*ln(n).
// Higher is better.
func RescaledBIC(logLikelihood float64, numParams, sampleSize int) float64 {
	return logLikelihood - float64(numParams)/2*math.Log(float64(sampleSize))
}

// FromFit computes the full comparison record for one fit result.
func FromFit(r psychometric.FitResult) psychometric.Criteria {
	ll := r.LogLikelihood()
	return psychometric.Criteria{
		Model:         r.Model,
		LogLikelihood: ll,
		AIC:           AIC(ll, r.NumParams),
		BIC:           BIC(ll, r.NumParams, r.SampleSize),
		RescaledAIC:   RescaledAIC(ll, r.NumParams),
		RescaledBIC:   RescaledBIC(ll, r.NumParams, r.SampleSize),
		NumParams:     r.NumParams,
		SampleSize:    r.SampleSize,
	}
}

// Compare computes comparison records for a set of fits to the same dataset.
func Compare(results []psychometric.FitResult) []psychometric.Criteria {
	out := make([]psychometric.Criteria, len(results))
	for i, r := range results {
		out[i] = FromFit(r)
	}
	return out
}

// BestByAIC returns the index of the lowest-AIC record (-1 for empty input).
func BestByAIC(records []psychometric.Criteria) int {
	return argBest(records, func(c psychometric.Criteria) float64 { return c.AIC })
}

// BestByBIC returns the index of the lowest-BIC record (-1 for empty input).
func BestByBIC(records []psychometric.Criteria) int {
	return argBest(records, func(c psychometric.Criteria) float64 { return c.BIC })
}

func argBest(records []psychometric.Criteria, score func(psychometric.Criteria) float64) int {
	best := -1
	for i, c := range records {
		if best == -1 || score(c) < score(records[best]) {
			best = i
		}
	}
	return best
}

// EvidenceRow extracts the rescaled criteria for one subject, in model
// order, for the group-level evidence matrix. useBIC selects rescaled BIC,
// otherwise rescaled AIC.
func EvidenceRow(records []psychometric.Criteria, useBIC bool) []float64 {
	row := make([]float64, len(records))
	for i, c := range records {
		if useBIC {
			row[i] = c.RescaledBIC
		} else {
			row[i] = c.RescaledAIC
		}
	}
	return row
}
