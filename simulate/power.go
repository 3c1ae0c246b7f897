// Package simulate verifies experiment designs empirically: it draws
// synthetic experiments from a design's assumed distributions, runs the
// significance analysis on each draw, and reports the observed detection
// rates. It is how we check that the sample-size formulas actually deliver
// the power and alpha they promise, including under uneven traffic splits.
package simulate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/TalZucker/ab-optix/experiment"
	"github.com/TalZucker/ab-optix/stats"
)

const DefaultTrials = 2000

// Options control a power simulation run.
type Options struct {
	// Trials is the number of synthetic experiments drawn per hypothesis;
	// defaults to DefaultTrials.
	Trials int
	// Seed makes the run deterministic when nonzero.
	Seed uint64
	// Workers defaults to 4.
	Workers int
}

// Report summarizes a power simulation.
type Report struct {
	Trials int
	// Sizes is the per-group design the simulation exercised.
	Sizes experiment.SampleSizeResult
	// Power is the fraction of trials drawn at baseline*(1+MDE) that the
	// analysis flagged significant with a positive lift.
	Power float64
	// FalsePositiveRate is the fraction of trials drawn at the baseline
	// (true null) that the analysis still flagged significant.
	FalsePositiveRate float64
	// Lifts holds the observed relative lift of every trial drawn under
	// the alternative.
	Lifts []float64
	// LiftMean and LiftStdev summarize Lifts.
	LiftMean  float64
	LiftStdev float64
}

// Power sizes the design with experiment.CalculateSampleSize and then
// simulates it. The control is compared against a single variant arm: with
// equal variant shares every control-vs-variant comparison is exchangeable,
// so the reported power is the per-comparison power at the Bonferroni
// threshold the design was sized at.
func Power(ctx context.Context, design experiment.SampleSizeRequest, opts Options) (Report, error) {
	sizes, err := experiment.CalculateSampleSize(design)
	if err != nil {
		return Report{}, fmt.Errorf("sizing design for simulation: %w", err)
	}

	trials := opts.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > trials {
		workers = trials
	}

	controlN := sizes.Groups[experiment.ControlLabel]
	variantN := sizes.Groups[experiment.VariantLabel(1)]

	detected := make([]int, workers)
	falsePos := make([]int, workers)
	lifts := make([][]float64, workers)

	// Trials split across workers, each with its own RNG stream so runs
	// are reproducible for a given seed and worker count.
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		share := trials / workers
		if w < trials%workers {
			share++
		}
		g.Go(func() error {
			rng := newRNG(opts.Seed, w)
			lifts[w] = make([]float64, 0, share)
			for i := 0; i < share; i++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				alt, null, err := drawPair(rng, design, controlN, variantN)
				if err != nil {
					return err
				}
				altRes, err := experiment.AnalyzeResults(alt)
				if err != nil {
					return fmt.Errorf("analyzing alternative draw: %w", err)
				}
				nullRes, err := experiment.AnalyzeResults(null)
				if err != nil {
					return fmt.Errorf("analyzing null draw: %w", err)
				}
				if altRes.Significant && altRes.ObservedLift > 0 {
					detected[w]++
				}
				if nullRes.Significant {
					falsePos[w]++
				}
				lifts[w] = append(lifts[w], altRes.ObservedLift)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	all := lo.Flatten(lifts)
	liftStat := &stats.Statistic{}
	for _, l := range all {
		liftStat.Push(l)
	}
	rep := Report{
		Trials:            trials,
		Sizes:             sizes,
		Power:             float64(lo.Sum(detected)) / float64(trials),
		FalsePositiveRate: float64(lo.Sum(falsePos)) / float64(trials),
		Lifts:             all,
		LiftMean:          liftStat.Mean(),
		LiftStdev:         liftStat.Stdev(),
	}
	log.Debug().
		Int("trials", trials).
		Float64("power", rep.Power).
		Float64("false-positive-rate", rep.FalsePositiveRate).
		Msg("power-sim-finished")
	return rep, nil
}

// drawPair draws one synthetic experiment under the alternative (variant at
// baseline*(1+MDE)) and one under the null (variant at baseline).
func drawPair(rng *frand.RNG, design experiment.SampleSizeRequest, controlN, variantN int) (alt, null experiment.AnalysisRequest, err error) {
	common := experiment.AnalysisRequest{
		Metric:      design.Metric,
		ControlN:    controlN,
		VariantN:    variantN,
		NumVariants: design.NumVariants,
		Alpha:       design.Alpha,
	}

	switch design.Metric {
	case experiment.ConversionRate:
		p1 := design.Baseline
		p2 := p1 * (1 + design.MDE)
		alt = common
		alt.ControlConversions = binomial(rng, controlN, p1)
		alt.VariantConversions = binomial(rng, variantN, p2)
		null = common
		null.ControlConversions = binomial(rng, controlN, p1)
		null.VariantConversions = binomial(rng, variantN, p1)
	case experiment.EarningsPerUnit:
		// Group stds are held at their design values; at these sample
		// sizes the sampling noise of the std is negligible next to
		// that of the mean.
		vstd := design.VariantStd
		if vstd == 0 {
			vstd = design.BaselineStd
		}
		mu1 := design.Baseline
		mu2 := mu1 * (1 + design.MDE)
		alt = common
		alt.ControlMean = sampleMean(rng, mu1, design.BaselineStd, controlN)
		alt.ControlStd = design.BaselineStd
		alt.VariantMean = sampleMean(rng, mu2, vstd, variantN)
		alt.VariantStd = vstd
		null = common
		null.ControlMean = sampleMean(rng, mu1, design.BaselineStd, controlN)
		null.ControlStd = design.BaselineStd
		null.VariantMean = sampleMean(rng, mu1, vstd, variantN)
		null.VariantStd = vstd
	default:
		return alt, null, fmt.Errorf("%w: %d", experiment.ErrUnknownMetricType, design.Metric)
	}
	return alt, null, nil
}
