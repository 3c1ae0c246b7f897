// Package planfile reads YAML experiment-plan documents: a list of named
// experiments, each carrying a design to size and/or observed results to
// analyze. Plan files exist so a batch of experiments can be processed in
// one shell command; the statistics engine itself knows nothing about them.
package planfile

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/TalZucker/ab-optix/config"
	"github.com/TalZucker/ab-optix/experiment"
)

type Document struct {
	Experiments []Entry `yaml:"experiments"`
}

type Entry struct {
	Name    string   `yaml:"name"`
	Metric  string   `yaml:"metric"`
	Design  *Design  `yaml:"design,omitempty"`
	Results *Results `yaml:"results,omitempty"`
}

// Design holds the planning inputs. Zero fields fall back to the configured
// defaults when the entry is turned into a request.
type Design struct {
	Baseline     float64 `yaml:"baseline"`
	BaselineStd  float64 `yaml:"baseline_std,omitempty"`
	VariantStd   float64 `yaml:"variant_std,omitempty"`
	MDE          float64 `yaml:"mde,omitempty"`
	Variants     int     `yaml:"variants,omitempty"`
	ControlShare float64 `yaml:"control_share,omitempty"`
	Power        float64 `yaml:"power,omitempty"`
	Alpha        float64 `yaml:"alpha,omitempty"`
}

// Results holds observed outcomes for one control-vs-variant comparison.
type Results struct {
	Variants int     `yaml:"variants,omitempty"`
	Alpha    float64 `yaml:"alpha,omitempty"`
	Control  Group   `yaml:"control"`
	Variant  Group   `yaml:"variant"`
}

type Group struct {
	N           int     `yaml:"n"`
	Conversions int     `yaml:"conversions,omitempty"`
	Mean        float64 `yaml:"mean,omitempty"`
	Std         float64 `yaml:"std,omitempty"`
}

// Load parses and validates a plan file. Every entry needs a unique name, a
// known metric token, and at least one of design or results.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	if len(doc.Experiments) == 0 {
		return nil, fmt.Errorf("plan file %s lists no experiments", path)
	}
	names := lo.Map(doc.Experiments, func(e Entry, _ int) string { return e.Name })
	if dupes := lo.FindDuplicates(names); len(dupes) > 0 {
		return nil, fmt.Errorf("plan file %s has duplicate experiment names: %v", path, dupes)
	}
	for _, e := range doc.Experiments {
		if e.Name == "" {
			return nil, fmt.Errorf("plan file %s has an unnamed experiment", path)
		}
		if _, err := experiment.ParseMetricType(e.Metric); err != nil {
			return nil, fmt.Errorf("experiment %q: %w", e.Name, err)
		}
		if e.Design == nil && e.Results == nil {
			return nil, fmt.Errorf("experiment %q has neither a design nor results", e.Name)
		}
	}
	return &doc, nil
}

// SampleSizeRequest turns the entry's design into an engine request,
// filling omitted fields from the configured defaults.
func (e *Entry) SampleSizeRequest(cfg *config.Config) (experiment.SampleSizeRequest, error) {
	m, err := experiment.ParseMetricType(e.Metric)
	if err != nil {
		return experiment.SampleSizeRequest{}, err
	}
	if e.Design == nil {
		return experiment.SampleSizeRequest{}, fmt.Errorf("experiment %q has no design section", e.Name)
	}
	d := e.Design
	req := experiment.SampleSizeRequest{
		Metric:              m,
		Baseline:            d.Baseline,
		BaselineStd:         d.BaselineStd,
		VariantStd:          d.VariantStd,
		MDE:                 d.MDE,
		NumVariants:         d.Variants,
		ControlTrafficShare: d.ControlShare,
		TargetPower:         d.Power,
		Alpha:               d.Alpha,
	}
	if req.MDE == 0 {
		req.MDE = cfg.DefaultMDE(m)
	}
	if req.NumVariants == 0 {
		req.NumVariants = 1
	}
	if req.ControlTrafficShare == 0 {
		req.ControlTrafficShare = cfg.ControlTrafficShare()
	}
	if req.TargetPower == 0 {
		req.TargetPower = cfg.TargetPower()
	}
	if req.Alpha == 0 {
		req.Alpha = cfg.Alpha()
	}
	return req, nil
}

// AnalysisRequest turns the entry's results into an engine request.
func (e *Entry) AnalysisRequest() (experiment.AnalysisRequest, error) {
	m, err := experiment.ParseMetricType(e.Metric)
	if err != nil {
		return experiment.AnalysisRequest{}, err
	}
	if e.Results == nil {
		return experiment.AnalysisRequest{}, fmt.Errorf("experiment %q has no results section", e.Name)
	}
	r := e.Results
	req := experiment.AnalysisRequest{
		Metric:      m,
		ControlN:    r.Control.N,
		VariantN:    r.Variant.N,
		NumVariants: r.Variants,
		Alpha:       r.Alpha,
	}
	if req.NumVariants == 0 {
		req.NumVariants = 1
	}
	switch m {
	case experiment.ConversionRate:
		req.ControlConversions = r.Control.Conversions
		req.VariantConversions = r.Variant.Conversions
	case experiment.EarningsPerUnit:
		req.ControlMean = r.Control.Mean
		req.ControlStd = r.Control.Std
		req.VariantMean = r.Variant.Mean
		req.VariantStd = r.Variant.Std
	}
	return req, nil
}
