package experiment

import (
	"fmt"
	"math"

	"github.com/TalZucker/ab-optix/stats"
)

// AnalysisRequest holds the observed outcomes of a finished test, comparing
// one variant arm against the control. Which fields apply depends on Metric:
// conversion-rate tests use the conversion counts, earnings-per-unit tests
// use the means and standard deviations. Both use ControlN/VariantN.
type AnalysisRequest struct {
	Metric MetricType

	ControlN int
	VariantN int

	// ConversionRate fields.
	ControlConversions int
	VariantConversions int

	// EarningsPerUnit fields.
	ControlMean float64
	ControlStd  float64
	VariantMean float64
	VariantStd  float64

	// NumVariants is the total number of variant arms in the experiment,
	// used for the Bonferroni correction. It must match the value the
	// test was sized with.
	NumVariants int
	// Alpha defaults to 0.05 when zero.
	Alpha float64
}

// Interval is a confidence interval for the relative lift.
type Interval struct {
	Lower float64
	Upper float64
}

// AnalysisResult reports the outcome of a two-sample significance test.
type AnalysisResult struct {
	// ObservedLift is the relative, signed lift of the variant metric
	// over the control metric.
	ObservedLift float64
	// Statistic is the z statistic (ConversionRate) or Welch t statistic
	// (EarningsPerUnit).
	Statistic float64
	// PValue is the two-sided p-value.
	PValue float64
	// AdjustedAlpha is alpha/numVariants, the same Bonferroni threshold
	// CalculateSampleSize designs at.
	AdjustedAlpha float64
	Significant   bool
	// ConfidenceInterval bounds the relative lift at confidence
	// 1 - AdjustedAlpha.
	ConfidenceInterval Interval
}

// AnalyzeResults runs the two-sample test selected by req.Metric: a
// two-proportion z-test for conversion rates, Welch's t-test for
// earnings per unit. Pure and deterministic.
func AnalyzeResults(req AnalysisRequest) (AnalysisResult, error) {
	alpha := req.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	if req.NumVariants < 1 {
		return AnalysisResult{}, fmt.Errorf("%w: got %d", ErrInvalidVariantCount, req.NumVariants)
	}
	if alpha <= 0 || alpha >= 1 {
		return AnalysisResult{}, fmt.Errorf("%w: alpha=%v", ErrInvalidSignificance, alpha)
	}
	adjAlpha := alpha / float64(req.NumVariants)

	switch req.Metric {
	case ConversionRate:
		return analyzeProportions(req, adjAlpha)
	case EarningsPerUnit:
		return analyzeMeans(req, adjAlpha)
	}
	return AnalysisResult{}, fmt.Errorf("%w: %d", ErrUnknownMetricType, req.Metric)
}

func analyzeProportions(req AnalysisRequest, adjAlpha float64) (AnalysisResult, error) {
	if req.ControlN <= 0 || req.VariantN <= 0 {
		return AnalysisResult{}, fmt.Errorf("%w: control_n=%d variant_n=%d", ErrInvalidSampleSize, req.ControlN, req.VariantN)
	}
	if req.ControlConversions < 0 || req.ControlConversions > req.ControlN {
		return AnalysisResult{}, fmt.Errorf("%w: control %d/%d", ErrInvalidCount, req.ControlConversions, req.ControlN)
	}
	if req.VariantConversions < 0 || req.VariantConversions > req.VariantN {
		return AnalysisResult{}, fmt.Errorf("%w: variant %d/%d", ErrInvalidCount, req.VariantConversions, req.VariantN)
	}

	pc := float64(req.ControlConversions) / float64(req.ControlN)
	pv := float64(req.VariantConversions) / float64(req.VariantN)
	if pc == 0 {
		return AnalysisResult{}, fmt.Errorf("%w: control conversion rate is zero, relative lift is undefined", ErrInvalidBaseline)
	}

	se := math.Sqrt(pc*(1-pc)/float64(req.ControlN) + pv*(1-pv)/float64(req.VariantN))
	diff := pv - pc
	return assemble(diff, pc, se, adjAlpha, func(d float64) (float64, float64) {
		z := d / se
		return z, stats.NormalTwoSidedP(z)
	}, func() float64 {
		return stats.ZCrit(adjAlpha)
	})
}

func analyzeMeans(req AnalysisRequest, adjAlpha float64) (AnalysisResult, error) {
	// Welch-Satterthwaite needs at least two observations per group.
	if req.ControlN < 2 || req.VariantN < 2 {
		return AnalysisResult{}, fmt.Errorf("%w: Welch's test needs n >= 2 per group, control_n=%d variant_n=%d", ErrInvalidSampleSize, req.ControlN, req.VariantN)
	}
	if req.ControlStd < 0 || req.VariantStd < 0 {
		return AnalysisResult{}, fmt.Errorf("%w: control_std=%v variant_std=%v", ErrInvalidVariance, req.ControlStd, req.VariantStd)
	}
	if req.ControlMean <= 0 {
		return AnalysisResult{}, fmt.Errorf("%w: control mean %v, relative lift is undefined", ErrInvalidBaseline, req.ControlMean)
	}

	cv := req.ControlStd * req.ControlStd / float64(req.ControlN)
	vv := req.VariantStd * req.VariantStd / float64(req.VariantN)
	se := math.Sqrt(cv + vv)
	diff := req.VariantMean - req.ControlMean

	var df float64
	if se > 0 {
		df = (cv + vv) * (cv + vv) / (cv*cv/float64(req.ControlN-1) + vv*vv/float64(req.VariantN-1))
	}
	return assemble(diff, req.ControlMean, se, adjAlpha, func(d float64) (float64, float64) {
		t := d / se
		return t, stats.StudentTwoSidedP(t, df)
	}, func() float64 {
		return stats.TCrit(adjAlpha, df)
	})
}

// assemble finishes either test path: statistic, p-value, significance
// verdict, and the lift confidence interval obtained by inverting the test
// statistic at 1 - adjAlpha/2 with the same standard error, expressed in
// relative-lift units by dividing through the control metric.
func assemble(diff, control, se, adjAlpha float64, test func(float64) (float64, float64), crit func() float64) (AnalysisResult, error) {
	res := AnalysisResult{
		ObservedLift:  diff / control,
		AdjustedAlpha: adjAlpha,
	}
	if se == 0 {
		// Both groups are deterministic. Identical outcomes carry no
		// evidence; different outcomes are unambiguous.
		if diff == 0 {
			res.PValue = 1
		} else {
			res.Statistic = math.Inf(1)
			if diff < 0 {
				res.Statistic = math.Inf(-1)
			}
		}
		res.Significant = res.PValue < adjAlpha
		res.ConfidenceInterval = Interval{Lower: res.ObservedLift, Upper: res.ObservedLift}
		return res, nil
	}

	stat, p := test(diff)
	margin := crit() * se
	res.Statistic = stat
	res.PValue = p
	res.Significant = p < adjAlpha
	res.ConfidenceInterval = Interval{
		Lower: (diff - margin) / control,
		Upper: (diff + margin) / control,
	}
	return res, nil
}
