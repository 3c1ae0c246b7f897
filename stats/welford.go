package stats

import "math"

const (
	Epsilon = 1e-6
)

// FuzzyEqual compares floats to within Epsilon.
func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a single-pass mean/variance accumulator for streamed
// observations, e.g. the per-trial lifts of a simulation run. The zero
// value is ready to use.
type Statistic struct {
	n    int
	mean float64
	m2   float64
}

// Push folds one observation into the running moments.
func (s *Statistic) Push(v float64) {
	s.n++
	d := v - s.mean
	s.mean += d / float64(s.n)
	s.m2 += d * (v - s.mean)
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

// Variance is the sample variance (Bessel-corrected); zero until at least
// two observations have been pushed.
func (s *Statistic) Variance() float64 {
	if s.n < 2 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError is the standard error of the running mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) N() int {
	return s.n
}
