package ezdiffusion

import (
	"math"

	"ezrecover/domain/core"
)

// NumericalSafety collects every floor and clamp used to keep the sampling
// and inversion steps defined under finite-sample noise. They are safety
// nets only; none of them changes the model.
type NumericalSafety struct {
	// AccuracyEpsilon clamps accuracy rates to [eps, 1-eps] before the logit
	AccuracyEpsilon float64 `yaml:"accuracy_epsilon"`
	// LogOddsBound clamps the log-odds to [-bound, bound]
	LogOddsBound float64 `yaml:"log_odds_bound"`
	// MinVariance floors variance arguments and sampled variances
	MinVariance float64 `yaml:"min_variance"`
	// MinRadicand floors the drift-rate radicand
	MinRadicand float64 `yaml:"min_radicand"`
	// MinGammaParameter floors the gamma shape and scale when N <= 1
	MinGammaParameter float64 `yaml:"min_gamma_parameter"`
}

// DefaultNumericalSafety returns the floors used by the reference experiment
func DefaultNumericalSafety() NumericalSafety {
	return NumericalSafety{
		AccuracyEpsilon:   1e-5,
		LogOddsBound:      10,
		MinVariance:       1e-12,
		MinRadicand:       1e-6,
		MinGammaParameter: 1e-6,
	}
}

// Validate checks every floor is a usable positive number
func (s NumericalSafety) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"accuracy_epsilon", s.AccuracyEpsilon},
		{"log_odds_bound", s.LogOddsBound},
		{"min_variance", s.MinVariance},
		{"min_radicand", s.MinRadicand},
		{"min_gamma_parameter", s.MinGammaParameter},
	}
	for _, c := range checks {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return core.NewDomainError(c.name, c.value)
		}
	}
	if s.AccuracyEpsilon >= 0.5 {
		return core.NewDomainError("accuracy_epsilon", s.AccuracyEpsilon)
	}
	return nil
}

// ClampAccuracy keeps an accuracy rate strictly inside (0, 1)
func (s NumericalSafety) ClampAccuracy(r float64) float64 {
	return clamp(r, s.AccuracyEpsilon, 1-s.AccuracyEpsilon)
}

// ClampLogOdds keeps a log-odds value inside [-LogOddsBound, LogOddsBound]
func (s NumericalSafety) ClampLogOdds(l float64) float64 {
	return clamp(l, -s.LogOddsBound, s.LogOddsBound)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Interval is a closed range [Min, Max]
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether x lies in the interval
func (i Interval) Contains(x float64) bool {
	return x >= i.Min && x <= i.Max
}

// ParameterRanges are the uniform sampling intervals for the true parameters
type ParameterRanges struct {
	DriftRate          Interval `yaml:"drift_rate"`
	BoundarySeparation Interval `yaml:"boundary_separation"`
	NondecisionTime    Interval `yaml:"nondecision_time"`
}

// DefaultParameterRanges returns the fixed simulate-and-recover intervals
func DefaultParameterRanges() ParameterRanges {
	return ParameterRanges{
		DriftRate:          Interval{Min: 0.5, Max: 2},
		BoundarySeparation: Interval{Min: 0.5, Max: 2},
		NondecisionTime:    Interval{Min: 0.1, Max: 0.5},
	}
}

// Validate rejects empty intervals and intervals outside the model domain
func (r ParameterRanges) Validate() error {
	if !(r.DriftRate.Min > 0) || r.DriftRate.Min >= r.DriftRate.Max {
		return core.NewRangeError(Drift.String(), r.DriftRate.Min, r.DriftRate.Max)
	}
	if !(r.BoundarySeparation.Min > 0) || r.BoundarySeparation.Min >= r.BoundarySeparation.Max {
		return core.NewRangeError(Boundary.String(), r.BoundarySeparation.Min, r.BoundarySeparation.Max)
	}
	if !(r.NondecisionTime.Min >= 0) || r.NondecisionTime.Min >= r.NondecisionTime.Max {
		return core.NewRangeError(Nondecision.String(), r.NondecisionTime.Min, r.NondecisionTime.Max)
	}
	return nil
}

// Contains reports whether p lies inside all three intervals
func (r ParameterRanges) Contains(p LatentParameters) bool {
	return r.DriftRate.Contains(p.DriftRate) &&
		r.BoundarySeparation.Contains(p.BoundarySeparation) &&
		r.NondecisionTime.Contains(p.NondecisionTime)
}
