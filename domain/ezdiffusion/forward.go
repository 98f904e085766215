package ezdiffusion

import (
	"math"

	"ezrecover/domain/core"
)

// Forward maps latent parameters to the summary statistics the EZ-diffusion
// model predicts:
//
//	y   = exp(-a·v)
//	R   = 1 / (y + 1)
//	M   = t + (a / 2v) · (1 − y) / (1 + y)
//	V   = (a / 2v³) · (1 − 2av·y − y²) / (y + 1)²
//
// A zero drift rate divides by zero and is rejected with core.ErrZeroDrift.
func Forward(p LatentParameters) (PredictedStatistics, error) {
	if !p.IsFinite() {
		return PredictedStatistics{}, core.ErrNonFiniteParameter
	}
	v, a, t := p.DriftRate, p.BoundarySeparation, p.NondecisionTime
	if v == 0 {
		return PredictedStatistics{}, core.ErrZeroDrift
	}

	y := math.Exp(-a * v)
	accuracy := 1 / (y + 1)
	meanRT := t + meanDecisionTime(v, a)
	varianceRT := (a / (2 * v * v * v)) * ((1 - 2*a*v*y - y*y) / ((y + 1) * (y + 1)))

	return PredictedStatistics{
		AccuracyRate: accuracy,
		MeanRT:       meanRT,
		VarianceRT:   varianceRT,
	}, nil
}

// meanDecisionTime is the decision-time part of the mean RT, shared with Inverse
func meanDecisionTime(v, a float64) float64 {
	y := math.Exp(-v * a)
	return (a / (2 * v)) * ((1 - y) / (1 + y))
}
