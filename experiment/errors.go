package experiment

import "errors"

// All engine failures are input-validation failures, raised before any
// computation proceeds. Callers match them with errors.Is.
var (
	ErrUnknownMetricType   = errors.New("unknown metric type")
	ErrInvalidAllocation   = errors.New("control traffic share must be strictly between 0 and 1")
	ErrInvalidEffectSize   = errors.New("minimum detectable effect must be positive")
	ErrInvalidVariantCount = errors.New("experiment needs at least one variant")
	ErrInvalidSignificance = errors.New("power and alpha must be strictly between 0 and 1")
	ErrInvalidSampleSize   = errors.New("group sample size must be positive")
	ErrInvalidCount        = errors.New("conversions must be between 0 and the group sample size")
	ErrInvalidVariance     = errors.New("standard deviation must not be negative")
	ErrInvalidBaseline     = errors.New("baseline metric must be positive")
)
