package model

import "errors"

// Domain errors for model orchestration.
var (
	// ErrDuplicateSheet indicates a sheet name is already registered.
	ErrDuplicateSheet = errors.New("model: sheet already registered")

	// ErrDuplicateConnector indicates a connector name is already registered.
	ErrDuplicateConnector = errors.New("model: connector already registered")

	// ErrNoNullStimulusPeriod indicates continuous mode was configured
	// without a positive null stimulus period.
	ErrNoNullStimulusPeriod = errors.New("model: continuous mode requires a positive null stimulus period")
)
