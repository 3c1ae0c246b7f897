package experiment

import "fmt"

// MetricType selects which variance and test formulas apply to an
// experiment's primary metric.
type MetricType int

const (
	// ConversionRate is a binary per-unit outcome (Bernoulli).
	ConversionRate MetricType = iota
	// EarningsPerUnit is a continuous per-unit revenue outcome, e.g.
	// earnings per click, modeled as Normal.
	EarningsPerUnit
)

func (m MetricType) String() string {
	switch m {
	case ConversionRate:
		return "cr"
	case EarningsPerUnit:
		return "epc"
	}
	return "unknown"
}

// DefaultMDE returns the conventional minimum detectable effect (relative
// lift) for a metric family, used by callers that let the experimenter omit
// an explicit MDE.
func (m MetricType) DefaultMDE() float64 {
	switch m {
	case ConversionRate:
		return 0.05
	case EarningsPerUnit:
		return 0.10
	}
	return 0
}

// ParseMetricType parses the short metric tokens used in plan files and
// the shell ("cr", "epc").
func ParseMetricType(s string) (MetricType, error) {
	switch s {
	case "cr":
		return ConversionRate, nil
	case "epc":
		return EarningsPerUnit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetricType, s)
}
