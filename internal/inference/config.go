package inference

import (
	"errors"
	"fmt"
	"sort"
)

// Preset names.
const (
	PresetStrict  = "strict"
	PresetLenient = "lenient"
)

// Config holds every threshold the engine uses. A Config is passed by value
// to NewEngine and never changes afterwards.
type Config struct {
	// Stopping rules.
	SuccessConfidence  float64 `koanf:"success_confidence" yaml:"success_confidence"`
	MinEvidenceAnswers int     `koanf:"min_evidence_answers" yaml:"min_evidence_answers"`
	EarlyFinalizeTopP  float64 `koanf:"early_finalize_top_p" yaml:"early_finalize_top_p"`
	CandidateFloor     float64 `koanf:"candidate_floor" yaml:"candidate_floor"`
	LowGainThreshold   float64 `koanf:"low_gain_threshold" yaml:"low_gain_threshold"`
	LowGainLimit       int     `koanf:"low_gain_limit" yaml:"low_gain_limit"`
	MaxSteps           int     `koanf:"max_steps" yaml:"max_steps"` // 0 disables

	// Update weighting.
	CoveragePenalty    float64 `koanf:"coverage_penalty" yaml:"coverage_penalty"`
	ClusterBoostPerHit float64 `koanf:"cluster_boost_per_hit" yaml:"cluster_boost_per_hit"`
	ClusterBoostMax    float64 `koanf:"cluster_boost_max" yaml:"cluster_boost_max"`
	ScarcityWeight     float64 `koanf:"scarcity_weight" yaml:"scarcity_weight"`
	ScarcityBoostMax   float64 `koanf:"scarcity_boost_max" yaml:"scarcity_boost_max"`
	StageBoostMax      float64 `koanf:"stage_boost_max" yaml:"stage_boost_max"`
	AlphaCap           float64 `koanf:"alpha_cap" yaml:"alpha_cap"`
	StrictBayes        bool    `koanf:"strict_bayes" yaml:"strict_bayes"`

	// Confidence.
	GapWeight float64 `koanf:"gap_weight" yaml:"gap_weight"`

	// Selection.
	BatchSize   int     `koanf:"batch_size" yaml:"batch_size"`
	MinSelectLR float64 `koanf:"min_select_lr" yaml:"min_select_lr"`

	// Per-disease evidence requirement: ceil(ratio * backed symptoms),
	// clamped to [min, max].
	RequiredHitsRatio float64 `koanf:"required_hits_ratio" yaml:"required_hits_ratio"`
	RequiredHitsMin   int     `koanf:"required_hits_min" yaml:"required_hits_min"`
	RequiredHitsMax   int     `koanf:"required_hits_max" yaml:"required_hits_max"`
}

// Strict returns the original, conservative thresholds.
func Strict() Config {
	return Config{
		SuccessConfidence:  0.9,
		MinEvidenceAnswers: 3,
		EarlyFinalizeTopP:  0.55,
		CandidateFloor:     0.01,
		LowGainThreshold:   0.05,
		LowGainLimit:       2,

		CoveragePenalty:    0.9,
		ClusterBoostPerHit: 0.3,
		ClusterBoostMax:    0.8,
		ScarcityWeight:     0.6,
		ScarcityBoostMax:   0.8,
		StageBoostMax:      0.6,
		AlphaCap:           3.0,

		GapWeight: 1.0,

		BatchSize:   5,
		MinSelectLR: 1.0,

		RequiredHitsRatio: 0.4,
		RequiredHitsMin:   2,
		RequiredHitsMax:   5,
	}
}

// Lenient returns thresholds tuned for faster convergence on common
// diseases: lower confidence bars, softer penalties, larger batches and a
// step limit.
func Lenient() Config {
	c := Strict()
	c.SuccessConfidence = 0.85
	c.MinEvidenceAnswers = 2
	c.EarlyFinalizeTopP = 0.50
	c.LowGainLimit = 3
	c.MaxSteps = 20

	c.CoveragePenalty = 0.95
	c.ClusterBoostPerHit = 0.25
	c.ClusterBoostMax = 0.7
	c.ScarcityWeight = 0.4
	c.ScarcityBoostMax = 0.6
	c.StageBoostMax = 0.5
	c.AlphaCap = 2.5

	c.GapWeight = 0.8
	c.BatchSize = 15
	return c
}

var presets = map[string]func() Config{
	PresetStrict:  Strict,
	PresetLenient: Lenient,
}

// Preset returns the named preset.
func Preset(name string) (Config, error) {
	fn, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return fn(), nil
}

// PresetNames lists the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that all values are in range.
func (c Config) Validate() error {
	var errs []error
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0,1], got %v", name, v))
		}
	}
	nonNeg := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", name, v))
		}
	}

	unit("success_confidence", c.SuccessConfidence)
	unit("early_finalize_top_p", c.EarlyFinalizeTopP)
	unit("candidate_floor", c.CandidateFloor)
	unit("low_gain_threshold", c.LowGainThreshold)
	if c.CoveragePenalty <= 0 || c.CoveragePenalty > 1 {
		errs = append(errs, fmt.Errorf("coverage_penalty must be in (0,1], got %v", c.CoveragePenalty))
	}
	nonNeg("cluster_boost_per_hit", c.ClusterBoostPerHit)
	nonNeg("cluster_boost_max", c.ClusterBoostMax)
	nonNeg("scarcity_weight", c.ScarcityWeight)
	nonNeg("scarcity_boost_max", c.ScarcityBoostMax)
	nonNeg("stage_boost_max", c.StageBoostMax)
	nonNeg("gap_weight", c.GapWeight)
	if c.AlphaCap < 1 {
		errs = append(errs, fmt.Errorf("alpha_cap must be >= 1, got %v", c.AlphaCap))
	}
	if c.MinSelectLR < 1 {
		errs = append(errs, fmt.Errorf("min_select_lr must be >= 1, got %v", c.MinSelectLR))
	}
	if c.MinEvidenceAnswers < 0 {
		errs = append(errs, fmt.Errorf("min_evidence_answers must be >= 0, got %d", c.MinEvidenceAnswers))
	}
	if c.LowGainLimit < 1 {
		errs = append(errs, fmt.Errorf("low_gain_limit must be >= 1, got %d", c.LowGainLimit))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps must be >= 0, got %d", c.MaxSteps))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch_size must be >= 1, got %d", c.BatchSize))
	}
	if c.RequiredHitsRatio <= 0 {
		errs = append(errs, fmt.Errorf("required_hits_ratio must be > 0, got %v", c.RequiredHitsRatio))
	}
	if c.RequiredHitsMin < 1 || c.RequiredHitsMax < c.RequiredHitsMin {
		errs = append(errs, fmt.Errorf("required hits range [%d,%d] is invalid", c.RequiredHitsMin, c.RequiredHitsMax))
	}
	return errors.Join(errs...)
}
