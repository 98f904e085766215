package ezdiffusion

import (
	"math"

	"ezrecover/domain/core"
)

// UnrecoverableReason says why an observation could not be inverted.
// The empty reason means the estimate is usable.
type UnrecoverableReason string

const (
	ReasonNone                UnrecoverableReason = ""
	ReasonNonPositiveVariance UnrecoverableReason = "non_positive_variance"
	ReasonInvalidRadicand     UnrecoverableReason = "invalid_radicand"
	ReasonZeroDrift           UnrecoverableReason = "zero_drift_estimate"
	ReasonNonFiniteEstimate   UnrecoverableReason = "non_finite_estimate"
)

// Estimate is the outcome of Inverse: either recovered parameters or a reason
// the observation is unusable. Callers drop unrecoverable estimates.
type Estimate struct {
	Parameters LatentParameters    `json:"parameters"`
	Reason     UnrecoverableReason `json:"reason,omitempty"`
}

// Recovered reports whether Parameters hold a usable estimate
func (e Estimate) Recovered() bool {
	return e.Reason == ReasonNone
}

// Err returns nil for a usable estimate, otherwise an error wrapping core.ErrUnrecoverable
func (e Estimate) Err() error {
	if e.Recovered() {
		return nil
	}
	return core.NewUnrecoverableError(string(e.Reason))
}

func unrecoverable(reason UnrecoverableReason) Estimate {
	return Estimate{Reason: reason}
}

// Inverse recovers latent parameters from observed summary statistics using
// the closed-form EZ-diffusion equations:
//
//	L = logit(R)
//	v = sign(R − ½) · [L·(R²L − RL + R − ½) / V]^¼
//	a = L / v
//	t = M − (a / 2v) · (1 − exp(−va)) / (1 + exp(−va))
//
// Accuracy is clamped and the log-odds bounded by safety before use, and the
// radicand is floored at safety.MinRadicand. The sign of R − ½ decides
// which boundary dominates and thus the sign of the recovered drift.
func Inverse(obs ObservedStatistics, safety NumericalSafety) Estimate {
	if !(obs.VarianceRT > 0) {
		return unrecoverable(ReasonNonPositiveVariance)
	}

	r := safety.ClampAccuracy(obs.AccuracyRate)
	l := safety.ClampLogOdds(math.Log(r / (1 - r)))

	radicand := l * (r*r*l - r*l + r - 0.5) / obs.VarianceRT
	if math.IsNaN(radicand) {
		return unrecoverable(ReasonInvalidRadicand)
	}
	radicand = math.Max(radicand, safety.MinRadicand)

	drift := sign(r-0.5) * math.Sqrt(math.Sqrt(radicand))
	if math.IsNaN(drift) || drift == 0 {
		return unrecoverable(ReasonZeroDrift)
	}

	boundary := l / drift
	nondecision := obs.MeanRT - meanDecisionTime(drift, boundary)

	est := LatentParameters{
		DriftRate:          drift,
		BoundarySeparation: boundary,
		NondecisionTime:    nondecision,
	}
	if !est.IsFinite() {
		return unrecoverable(ReasonNonFiniteEstimate)
	}
	return Estimate{Parameters: est}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
