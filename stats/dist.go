package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{
	Mu:    0,
	Sigma: 1,
}

// NormalQuantile returns the standard normal quantile at probability p.
func NormalQuantile(p float64) float64 {
	return stdNormal.Quantile(p)
}

// ZCrit returns the two-tailed critical z-value for significance level alpha.
func ZCrit(alpha float64) float64 {
	return stdNormal.Quantile(1 - alpha/2)
}

// NormalTwoSidedP returns the two-sided p-value for a z statistic under the
// standard normal distribution.
func NormalTwoSidedP(z float64) float64 {
	return 2 * stdNormal.CDF(-math.Abs(z))
}

// TCrit returns the two-tailed critical t-value at df degrees of freedom.
func TCrit(alpha, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return dist.Quantile(1 - alpha/2)
}

// StudentTwoSidedP returns the two-sided p-value for a t statistic at df
// degrees of freedom.
func StudentTwoSidedP(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}
