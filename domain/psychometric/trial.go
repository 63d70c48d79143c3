package psychometric

import (
	"psychofit/domain/core"
)

// Category is a binary response category.
type Category int

const (
	// CategoryNegative is the "negative" response (e.g. "left", "no").
	CategoryNegative Category = 1
	// CategoryPositive is the "positive" response modelled by the psychometric function.
	CategoryPositive Category = 2
)

// Regime tags a trial with the spread regime used by the non-stationary model.
// The zero value is treated as RegimeEarly so stationary datasets need no tagging.
type Regime int

const (
	RegimeEarly Regime = 1
	RegimeLate  Regime = 2
)

// Trial is one observation: a stimulus value and a binary response.
type Trial struct {
	Stimulus float64  `json:"stimulus"` // degrees
	Response Category `json:"response"` // 1 or 2
	Regime   Regime   `json:"regime,omitempty"`
}

// Validate checks the trial's response category.
func (t Trial) Validate() error {
	if t.Response != CategoryNegative && t.Response != CategoryPositive {
		return core.ErrInvalidResponse
	}
	return nil
}

// Dataset is an ordered sequence of trials. Order is irrelevant for likelihood
// computation (trials are conditionally independent) but is preserved because
// regime assignment follows acquisition order.
type Dataset []Trial

// Validate checks every trial in the dataset.
func (d Dataset) Validate() error {
	if len(d) == 0 {
		return core.ErrEmptyDataset
	}
	for _, t := range d {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SplitHalves assigns RegimeEarly to the first half of the trials in
// acquisition order and RegimeLate to the rest, returning a tagged copy.
// Callers with a different regime criterion set Trial.Regime directly.
func (d Dataset) SplitHalves() Dataset {
	out := make(Dataset, len(d))
	half := len(d) / 2
	for i, t := range d {
		if i < half {
			t.Regime = RegimeEarly
		} else {
			t.Regime = RegimeLate
		}
		out[i] = t
	}
	return out
}

// Stimuli returns the stimulus column.
func (d Dataset) Stimuli() []float64 {
	out := make([]float64, len(d))
	for i, t := range d {
		out[i] = t.Stimulus
	}
	return out
}

// PositiveRate returns the fraction of positive responses.
func (d Dataset) PositiveRate() float64 {
	if len(d) == 0 {
		return 0
	}
	n := 0
	for _, t := range d {
		if t.Response == CategoryPositive {
			n++
		}
	}
	return float64(n) / float64(len(d))
}
