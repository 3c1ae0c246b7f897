package experiment

import (
	"fmt"
	"math"

	"github.com/TalZucker/ab-optix/stats"
)

const (
	DefaultPower = 0.80
	DefaultAlpha = 0.05
	// DefaultControlShare is the conventional traffic split for ad
	// experiments: the control keeps most of the traffic.
	DefaultControlShare = 0.80
)

// ControlLabel is the group label for the control arm in results.
const ControlLabel = "control"

// VariantLabel returns the group label for the i-th variant arm (1-based).
func VariantLabel(i int) string {
	return fmt.Sprintf("variant_%d", i)
}

// SampleSizeRequest describes a planned fixed-horizon A/B/n test.
type SampleSizeRequest struct {
	Metric MetricType

	// Baseline is the control conversion rate (ConversionRate) or the
	// control mean (EarningsPerUnit).
	Baseline float64
	// BaselineStd is the control standard deviation; EarningsPerUnit only.
	BaselineStd float64
	// VariantStd is the assumed variant standard deviation; defaults to
	// BaselineStd when zero. EarningsPerUnit only.
	VariantStd float64

	// MDE is the minimum detectable effect as a relative lift over the
	// baseline. Must be positive.
	MDE float64

	NumVariants int
	// ControlTrafficShare is the fraction of traffic kept by the control,
	// exclusive bounds (0, 1). The remaining traffic is split equally
	// among the variants.
	ControlTrafficShare float64

	// TargetPower defaults to 0.80 when zero.
	TargetPower float64
	// Alpha defaults to 0.05 when zero. Bonferroni-adjusted internally.
	Alpha float64
}

// SampleSizeResult maps group labels ("control", "variant_1", ...) to the
// required observation counts.
type SampleSizeResult struct {
	Groups map[string]int
	// Shares records the traffic share used for each group.
	Shares map[string]float64
	// AdjustedAlpha is the Bonferroni-corrected per-comparison threshold
	// the design was sized at. AnalyzeResults applies the same correction.
	AdjustedAlpha float64
}

// CalculateSampleSize returns the per-group observation counts required to
// detect req.MDE with the target power, with the family-wise error rate
// across all control-vs-variant comparisons bounded by req.Alpha
// (Bonferroni), under the requested traffic allocation.
func CalculateSampleSize(req SampleSizeRequest) (SampleSizeResult, error) {
	power := req.TargetPower
	if power == 0 {
		power = DefaultPower
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}

	if req.NumVariants < 1 {
		return SampleSizeResult{}, fmt.Errorf("%w: got %d", ErrInvalidVariantCount, req.NumVariants)
	}
	if req.ControlTrafficShare <= 0 || req.ControlTrafficShare >= 1 {
		return SampleSizeResult{}, fmt.Errorf("%w: got %v", ErrInvalidAllocation, req.ControlTrafficShare)
	}
	if power <= 0 || power >= 1 || alpha <= 0 || alpha >= 1 {
		return SampleSizeResult{}, fmt.Errorf("%w: power=%v alpha=%v", ErrInvalidSignificance, power, alpha)
	}
	if req.MDE <= 0 {
		return SampleSizeResult{}, fmt.Errorf("%w: got %v", ErrInvalidEffectSize, req.MDE)
	}

	adjAlpha := alpha / float64(req.NumVariants)
	zAlpha := stats.ZCrit(adjAlpha)
	zBeta := stats.NormalQuantile(power)

	// Per-group variance contributions and the absolute effect.
	var vControl, vVariant, delta float64
	switch req.Metric {
	case ConversionRate:
		p1 := req.Baseline
		if p1 <= 0 || p1 >= 1 {
			return SampleSizeResult{}, fmt.Errorf("%w: baseline rate %v is not in (0, 1)", ErrInvalidBaseline, p1)
		}
		p2 := p1 * (1 + req.MDE)
		if p2 >= 1 {
			return SampleSizeResult{}, fmt.Errorf("%w: lifted rate %v is not a probability", ErrInvalidEffectSize, p2)
		}
		vControl = p1 * (1 - p1)
		vVariant = p2 * (1 - p2)
		delta = p2 - p1
	case EarningsPerUnit:
		if req.Baseline <= 0 {
			return SampleSizeResult{}, fmt.Errorf("%w: baseline mean %v", ErrInvalidBaseline, req.Baseline)
		}
		if req.BaselineStd <= 0 {
			return SampleSizeResult{}, fmt.Errorf("%w: baseline std is required and must be positive", ErrInvalidVariance)
		}
		vstd := req.VariantStd
		if vstd < 0 {
			return SampleSizeResult{}, fmt.Errorf("%w: variant std %v", ErrInvalidVariance, vstd)
		}
		if vstd == 0 {
			vstd = req.BaselineStd
		}
		vControl = req.BaselineStd * req.BaselineStd
		vVariant = vstd * vstd
		delta = req.Baseline * req.MDE
	default:
		return SampleSizeResult{}, fmt.Errorf("%w: %d", ErrUnknownMetricType, req.Metric)
	}

	kc := req.ControlTrafficShare
	kv := (1 - kc) / float64(req.NumVariants)
	r := kv / kc

	// Two-sample size with allocation ratio r = nVariant/nControl:
	//   nControl = (zAlpha+zBeta)^2 (vControl + vVariant/r) / delta^2
	// At these sizes vControl/nControl + vVariant/nVariant equals
	// delta^2/(zAlpha+zBeta)^2, matching the equal-allocation reference
	// standard error, so target power is preserved for any split. For
	// equal variances this reduces to scaling the equal-split size by
	// (kc+kv)/(2 kv) and (kc+kv)/(2 kc) respectively.
	zsum := zAlpha + zBeta
	nControl := zsum * zsum * (vControl + vVariant/r) / (delta * delta)

	// Adding arms to the family must never shrink any group's
	// requirement: a variant in an m-arm family needs at least as many
	// observations as it would in every smaller family. The raw ratio
	// formula dips below that at even and variant-heavy splits (the
	// falling variant share outruns the tighter critical value), so the
	// variant count is floored over all smaller family sizes.
	var nVariant float64
	for f := 1; f <= req.NumVariants; f++ {
		zf := stats.ZCrit(alpha/float64(f)) + zBeta
		rf := (1 - kc) / (float64(f) * kc)
		if nv := zf * zf * (rf*vControl + vVariant) / (delta * delta); nv > nVariant {
			nVariant = nv
		}
	}

	groups := make(map[string]int, req.NumVariants+1)
	shares := make(map[string]float64, req.NumVariants+1)
	groups[ControlLabel] = int(math.Ceil(nControl))
	shares[ControlLabel] = kc
	for i := 1; i <= req.NumVariants; i++ {
		groups[VariantLabel(i)] = int(math.Ceil(nVariant))
		shares[VariantLabel(i)] = kv
	}
	return SampleSizeResult{Groups: groups, Shares: shares, AdjustedAlpha: adjAlpha}, nil
}
