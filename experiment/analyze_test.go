package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeConversionRate(t *testing.T) {
	// 2.4% control vs 3.1% variant, two variant arms in the family.
	res, err := AnalyzeResults(AnalysisRequest{
		Metric:             ConversionRate,
		ControlN:           50000,
		ControlConversions: 1200,
		VariantN:           10000,
		VariantConversions: 310,
		NumVariants:        2,
		Alpha:              0.05,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.29167, res.ObservedLift, 1e-4)
	assert.InDelta(t, 3.757, res.Statistic, 0.01)
	assert.Less(t, res.PValue, 0.001)
	assert.Equal(t, 0.025, res.AdjustedAlpha)
	assert.Equal(t, res.PValue < 0.025, res.Significant)
	assert.True(t, res.Significant)
	assert.Greater(t, res.ConfidenceInterval.Lower, 0.0)
	assert.Less(t, res.ConfidenceInterval.Lower, res.ObservedLift)
	assert.Greater(t, res.ConfidenceInterval.Upper, res.ObservedLift)
}

func TestAnalyzeEarningsPerUnit(t *testing.T) {
	res, err := AnalyzeResults(AnalysisRequest{
		Metric:      EarningsPerUnit,
		ControlMean: 4.50,
		ControlStd:  0.8,
		ControlN:    50000,
		VariantMean: 4.75,
		VariantStd:  0.9,
		VariantN:    10000,
		NumVariants: 1,
		Alpha:       0.05,
	})
	require.NoError(t, err)

	// +5.6% lift, and a t statistic matching Welch's formula:
	// 0.25 / sqrt(0.64/50000 + 0.81/10000).
	assert.InDelta(t, 0.0556, res.ObservedLift, 1e-3)
	assert.InDelta(t, 25.81, res.Statistic, 0.05)
	assert.Equal(t, 0.05, res.AdjustedAlpha)
	assert.True(t, res.Significant)
}

func TestAnalyzeClearWinner(t *testing.T) {
	// 10% vs 2% conversion over 1000 observations each is unambiguous.
	res, err := AnalyzeResults(AnalysisRequest{
		Metric:             ConversionRate,
		ControlN:           1000,
		ControlConversions: 20,
		VariantN:           1000,
		VariantConversions: 100,
		NumVariants:        1,
	})
	require.NoError(t, err)
	assert.True(t, res.Significant)
	assert.InDelta(t, 4.0, res.ObservedLift, 1e-9)
}

func TestAnalyzeIdenticalMeans(t *testing.T) {
	res, err := AnalyzeResults(AnalysisRequest{
		Metric:      EarningsPerUnit,
		ControlMean: 5.0,
		ControlStd:  1.0,
		ControlN:    100,
		VariantMean: 5.0,
		VariantStd:  1.0,
		VariantN:    100,
		NumVariants: 1,
	})
	require.NoError(t, err)
	assert.False(t, res.Significant)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.Zero(t, res.ObservedLift)
}

func TestAnalyzeIntervalMatchesVerdict(t *testing.T) {
	// The interval is built by inverting the same statistic at the same
	// threshold, so it excludes zero exactly when the test rejects.
	cases := []AnalysisRequest{
		{Metric: ConversionRate, ControlN: 1000, ControlConversions: 20, VariantN: 1000, VariantConversions: 100, NumVariants: 1},
		{Metric: ConversionRate, ControlN: 1000, ControlConversions: 50, VariantN: 1000, VariantConversions: 55, NumVariants: 1},
		{Metric: ConversionRate, ControlN: 50000, ControlConversions: 1200, VariantN: 10000, VariantConversions: 310, NumVariants: 3},
		{Metric: EarningsPerUnit, ControlMean: 4.5, ControlStd: 0.8, ControlN: 500, VariantMean: 4.6, VariantStd: 0.8, VariantN: 500, NumVariants: 1},
		{Metric: EarningsPerUnit, ControlMean: 4.5, ControlStd: 0.8, ControlN: 50000, VariantMean: 4.75, VariantStd: 0.9, VariantN: 10000, NumVariants: 2},
	}
	for _, req := range cases {
		res, err := AnalyzeResults(req)
		require.NoError(t, err)
		excludesZero := res.ConfidenceInterval.Lower > 0 || res.ConfidenceInterval.Upper < 0
		assert.Equal(t, res.Significant, excludesZero, "request %+v", req)
	}
}

func TestAnalyzeAdjustedAlpha(t *testing.T) {
	prev := 1.0
	for variants := 1; variants <= 5; variants++ {
		res, err := AnalyzeResults(AnalysisRequest{
			Metric:             ConversionRate,
			ControlN:           1000,
			ControlConversions: 50,
			VariantN:           1000,
			VariantConversions: 60,
			NumVariants:        variants,
			Alpha:              0.05,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.05/float64(variants), res.AdjustedAlpha)
		assert.LessOrEqual(t, res.AdjustedAlpha, prev)
		prev = res.AdjustedAlpha
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	req := AnalysisRequest{
		Metric:             ConversionRate,
		ControlN:           50000,
		ControlConversions: 1200,
		VariantN:           10000,
		VariantConversions: 310,
		NumVariants:        2,
	}
	first, err := AnalyzeResults(req)
	require.NoError(t, err)
	second, err := AnalyzeResults(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeValidation(t *testing.T) {
	cases := []struct {
		name string
		req  AnalysisRequest
		want error
	}{
		{
			"zero control n",
			AnalysisRequest{Metric: ConversionRate, ControlN: 0, VariantN: 100, NumVariants: 1},
			ErrInvalidSampleSize,
		},
		{
			"negative variant n",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, VariantN: -5, NumVariants: 1},
			ErrInvalidSampleSize,
		},
		{
			"conversions above n",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, ControlConversions: 101, VariantN: 100, NumVariants: 1},
			ErrInvalidCount,
		},
		{
			"negative conversions",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, ControlConversions: 10, VariantN: 100, VariantConversions: -1, NumVariants: 1},
			ErrInvalidCount,
		},
		{
			"zero control rate",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, ControlConversions: 0, VariantN: 100, VariantConversions: 10, NumVariants: 1},
			ErrInvalidBaseline,
		},
		{
			"negative std",
			AnalysisRequest{Metric: EarningsPerUnit, ControlMean: 5, ControlStd: -1, ControlN: 100, VariantMean: 5, VariantStd: 1, VariantN: 100, NumVariants: 1},
			ErrInvalidVariance,
		},
		{
			"single observation",
			AnalysisRequest{Metric: EarningsPerUnit, ControlMean: 5, ControlStd: 1, ControlN: 1, VariantMean: 5, VariantStd: 1, VariantN: 100, NumVariants: 1},
			ErrInvalidSampleSize,
		},
		{
			"no variants",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, ControlConversions: 10, VariantN: 100, VariantConversions: 10},
			ErrInvalidVariantCount,
		},
		{
			"alpha out of range",
			AnalysisRequest{Metric: ConversionRate, ControlN: 100, ControlConversions: 10, VariantN: 100, VariantConversions: 10, NumVariants: 1, Alpha: 2},
			ErrInvalidSignificance,
		},
		{
			"unknown metric",
			AnalysisRequest{Metric: MetricType(7), ControlN: 100, VariantN: 100, NumVariants: 1},
			ErrUnknownMetricType,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AnalyzeResults(tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
