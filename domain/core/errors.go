package core

import (
	"errors"
)

// Domain errors - centralized error definitions
var (
	// Likelihood evaluation errors
	ErrParameterOutOfBounds = errors.New("parameter vector outside declared bounds")
	ErrDimensionMismatch    = errors.New("parameter vector length does not match model")
	ErrDegenerateLikelihood = errors.New("trial assigned zero probability")
	ErrInvalidLapse         = errors.New("lapse rate outside [0,1]")

	// Data errors
	ErrEmptyDataset     = errors.New("dataset contains no trials")
	ErrInvalidResponse  = errors.New("response category must be 1 or 2")
	ErrInvalidBounds    = errors.New("invalid parameter bounds")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Fitting errors
	ErrStartOutOfBounds = errors.New("initial guess outside hard bounds")
	ErrNoRestarts       = errors.New("at least one restart is required")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrSeedMismatch     = errors.New("seed mismatch")

	// Storage errors
	ErrNotFound = errors.New("resource not found")
)
