package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		obs   []float64
		mean  float64
		stdev float64
	}
	cases := []tc{
		{[]float64{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]float64{1}, 1, 0},
		{[]float64{}, 0, 0},
		{[]float64{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, o := range c.obs {
			s.Push(o)
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestNormalQuantile(t *testing.T) {
	is := is.New(t)
	// Standard critical values.
	is.True(FuzzyEqual(ZCrit(0.05), 1.9599639845))
	is.True(FuzzyEqual(ZCrit(0.01), 2.5758293035))
	is.True(FuzzyEqual(NormalQuantile(0.8), 0.8416212336))
	is.True(FuzzyEqual(NormalQuantile(0.5), 0))
}

func TestNormalTwoSidedP(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(NormalTwoSidedP(0), 1))
	is.True(FuzzyEqual(NormalTwoSidedP(1.9599639845), 0.05))
	is.True(FuzzyEqual(NormalTwoSidedP(-1.9599639845), 0.05))
	is.True(NormalTwoSidedP(10) < 1e-15)
}

func TestStudentTwoSidedP(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(StudentTwoSidedP(0, 10), 1))
	// At large df the t distribution converges to the normal.
	diff := StudentTwoSidedP(1.96, 1e6) - NormalTwoSidedP(1.96)
	is.True(diff < 1e-4 && diff > -1e-4)
	// Heavier tails at small df mean a larger p-value.
	is.True(StudentTwoSidedP(2.0, 3) > NormalTwoSidedP(2.0))
}

func TestTCrit(t *testing.T) {
	is := is.New(t)
	// t(df=10) 97.5th percentile.
	is.True(FuzzyEqual(TCrit(0.05, 10), 2.2281388520))
	is.True(TCrit(0.05, 5) > TCrit(0.05, 50))
}
