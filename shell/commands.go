package shell

import (
	"context"
	"fmt"
	"sort"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/TalZucker/ab-optix/experiment"
	"github.com/TalZucker/ab-optix/planfile"
	"github.com/TalZucker/ab-optix/simulate"
)

func (sc *ShellController) buildSizeRequest(args map[string]string) (experiment.SampleSizeRequest, error) {
	metric, err := experiment.ParseMetricType(argString(args, "metric", "cr"))
	if err != nil {
		return experiment.SampleSizeRequest{}, err
	}
	if _, ok := args["baseline"]; !ok {
		return experiment.SampleSizeRequest{}, fmt.Errorf("baseline=<rate or mean> is required")
	}

	req := experiment.SampleSizeRequest{Metric: metric}
	if req.Baseline, err = argFloat(args, "baseline", 0); err != nil {
		return req, err
	}
	if req.BaselineStd, err = argFloat(args, "std", 0); err != nil {
		return req, err
	}
	if req.VariantStd, err = argFloat(args, "vstd", 0); err != nil {
		return req, err
	}
	if req.MDE, err = argFloat(args, "mde", sc.cfg.DefaultMDE(metric)); err != nil {
		return req, err
	}
	if req.NumVariants, err = argInt(args, "variants", 1); err != nil {
		return req, err
	}
	if req.ControlTrafficShare, err = argFloat(args, "share", sc.cfg.ControlTrafficShare()); err != nil {
		return req, err
	}
	if req.TargetPower, err = argFloat(args, "power", sc.cfg.TargetPower()); err != nil {
		return req, err
	}
	if req.Alpha, err = argFloat(args, "alpha", sc.cfg.Alpha()); err != nil {
		return req, err
	}
	return req, nil
}

func (sc *ShellController) size(args map[string]string) error {
	req, err := sc.buildSizeRequest(args)
	if err != nil {
		return err
	}
	res, err := experiment.CalculateSampleSize(req)
	if err != nil {
		return err
	}
	sc.renderSizes(res)
	return nil
}

func (sc *ShellController) renderSizes(res experiment.SampleSizeResult) {
	total := 0
	for _, label := range sortedGroups(res.Groups) {
		n := res.Groups[label]
		total += n
		sc.p.Fprintf(sc.out, "  %-12s %12d   (%.0f%% of traffic)\n", label, n, res.Shares[label]*100)
	}
	sc.p.Fprintf(sc.out, "  %-12s %12d\n", "total", total)
	sc.p.Fprintf(sc.out, "  adjusted alpha: %.4f\n", res.AdjustedAlpha)
}

// sortedGroups orders the control first, then variants numerically; labels
// are "control", "variant_1", "variant_2", ...
func sortedGroups(groups map[string]int) []string {
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i] == experiment.ControlLabel {
			return true
		}
		if labels[j] == experiment.ControlLabel {
			return false
		}
		// variant labels share a prefix, and the numeric suffixes of
		// equal length sort lexically; pad-free compare on length first.
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) < len(labels[j])
		}
		return labels[i] < labels[j]
	})
	return labels
}

func (sc *ShellController) analyze(args map[string]string) error {
	metric, err := experiment.ParseMetricType(argString(args, "metric", "cr"))
	if err != nil {
		return err
	}
	req := experiment.AnalysisRequest{Metric: metric}
	if req.ControlN, err = argInt(args, "cn", 0); err != nil {
		return err
	}
	if req.VariantN, err = argInt(args, "vn", 0); err != nil {
		return err
	}
	if req.NumVariants, err = argInt(args, "variants", 1); err != nil {
		return err
	}
	if req.Alpha, err = argFloat(args, "alpha", sc.cfg.Alpha()); err != nil {
		return err
	}
	switch metric {
	case experiment.ConversionRate:
		if req.ControlConversions, err = argInt(args, "cconv", 0); err != nil {
			return err
		}
		if req.VariantConversions, err = argInt(args, "vconv", 0); err != nil {
			return err
		}
	case experiment.EarningsPerUnit:
		if req.ControlMean, err = argFloat(args, "cmean", 0); err != nil {
			return err
		}
		if req.ControlStd, err = argFloat(args, "cstd", 0); err != nil {
			return err
		}
		if req.VariantMean, err = argFloat(args, "vmean", 0); err != nil {
			return err
		}
		if req.VariantStd, err = argFloat(args, "vstd", 0); err != nil {
			return err
		}
	}
	res, err := experiment.AnalyzeResults(req)
	if err != nil {
		return err
	}
	sc.renderAnalysis(res)
	return nil
}

func (sc *ShellController) renderAnalysis(res experiment.AnalysisResult) {
	verdict := "NOT SIGNIFICANT"
	if res.Significant {
		verdict = "SIGNIFICANT"
	}
	sc.p.Fprintf(sc.out, "  observed lift:  %+.2f%%\n", res.ObservedLift*100)
	sc.p.Fprintf(sc.out, "  statistic:      %.4f\n", res.Statistic)
	sc.p.Fprintf(sc.out, "  p-value:        %.4g\n", res.PValue)
	sc.p.Fprintf(sc.out, "  adjusted alpha: %.4f\n", res.AdjustedAlpha)
	sc.p.Fprintf(sc.out, "  %.0f%% CI for lift: [%+.2f%%, %+.2f%%]\n",
		(1-res.AdjustedAlpha)*100, res.ConfidenceInterval.Lower*100, res.ConfidenceInterval.Upper*100)
	showMessage("  verdict:        "+verdict, sc.out)
}

func (sc *ShellController) power(args map[string]string) error {
	req, err := sc.buildSizeRequest(args)
	if err != nil {
		return err
	}
	opts := simulate.Options{}
	if opts.Trials, err = argInt(args, "trials", sc.cfg.SimTrials()); err != nil {
		return err
	}
	if opts.Seed, err = argUint(args, "seed", sc.cfg.SimSeed()); err != nil {
		return err
	}
	rep, err := simulate.Power(context.Background(), req, opts)
	if err != nil {
		return err
	}
	sc.renderSizes(rep.Sizes)
	sc.p.Fprintf(sc.out, "  trials:               %d\n", rep.Trials)
	sc.p.Fprintf(sc.out, "  empirical power:      %.3f\n", rep.Power)
	sc.p.Fprintf(sc.out, "  false positive rate:  %.3f\n", rep.FalsePositiveRate)
	sc.p.Fprintf(sc.out, "  mean observed lift:   %+.2f%% (sd %.2f%%)\n", rep.LiftMean*100, rep.LiftStdev*100)
	showMessage("  observed lift distribution:", sc.out)
	h := histogram.Hist(15, rep.Lifts)
	return histogram.Fprint(sc.out, h, histogram.Linear(40))
}

func (sc *ShellController) plan(path string) error {
	doc, err := planfile.Load(path)
	if err != nil {
		return err
	}
	for _, entry := range doc.Experiments {
		showMessage(fmt.Sprintf("== %s (%s)", entry.Name, entry.Metric), sc.out)
		if entry.Design != nil {
			req, err := entry.SampleSizeRequest(sc.cfg)
			if err != nil {
				return err
			}
			res, err := experiment.CalculateSampleSize(req)
			if err != nil {
				return fmt.Errorf("sizing %q: %w", entry.Name, err)
			}
			sc.renderSizes(res)
		}
		if entry.Results != nil {
			req, err := entry.AnalysisRequest()
			if err != nil {
				return err
			}
			res, err := experiment.AnalyzeResults(req)
			if err != nil {
				return fmt.Errorf("analyzing %q: %w", entry.Name, err)
			}
			sc.renderAnalysis(res)
		}
	}
	return nil
}

func (sc *ShellController) set(key, value string) {
	sc.cfg.Set(key, value)
	showMessage(fmt.Sprintf("  %s = %s", key, value), sc.out)
}

func (sc *ShellController) show() {
	settings := sc.cfg.AllSettings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sc.p.Fprintf(sc.out, "  %-24s %v\n", k, settings[k])
	}
}

func argString(args map[string]string, key, fallback string) string {
	if v, ok := args[key]; ok {
		return v
	}
	return fallback
}
