package ezdiffusion

import (
	"fmt"
	"math"
)

// ============================================================================
// COMPONENT ORDER (Canonical, never change)
// ============================================================================

// Component indexes a parameter inside every 3-vector produced by this package.
// INVARIANTS:
// - Order is always [drift_rate, boundary_separation, nondecision_time]
// - Bias, squared error and parameter vectors share the same order
type Component int

const (
	Drift Component = iota
	Boundary
	Nondecision
)

// Components lists all components in canonical order
var Components = [3]Component{Drift, Boundary, Nondecision}

func (c Component) String() string {
	switch c {
	case Drift:
		return "drift_rate"
	case Boundary:
		return "boundary_separation"
	case Nondecision:
		return "nondecision_time"
	default:
		return fmt.Sprintf("component(%d)", int(c))
	}
}

// Vector3 holds one value per Component
type Vector3 [3]float64

// NaNVector returns a vector with every component set to NaN
func NaNVector() Vector3 {
	nan := math.NaN()
	return Vector3{nan, nan, nan}
}

// Get returns the value for a component
func (v Vector3) Get(c Component) float64 { return v[c] }

// Sub returns v - w elementwise
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Square returns v*v elementwise
func (v Vector3) Square() Vector3 {
	return Vector3{v[0] * v[0], v[1] * v[1], v[2] * v[2]}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vector3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// AllNaN reports whether every component is NaN
func (v Vector3) AllNaN() bool {
	for _, x := range v {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

// String renders the vector in canonical order, e.g. "[0.1 -0.02 0.003]"
func (v Vector3) String() string {
	return fmt.Sprintf("[%s %s %s]", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
}

func formatFloat(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", x)
}

// ============================================================================
// MODEL VALUES
// ============================================================================

// LatentParameters are the true (or estimated) EZ-diffusion parameters
type LatentParameters struct {
	DriftRate          float64 `json:"drift_rate" yaml:"drift_rate"`                   // v
	BoundarySeparation float64 `json:"boundary_separation" yaml:"boundary_separation"` // a
	NondecisionTime    float64 `json:"nondecision_time" yaml:"nondecision_time"`       // t
}

// Vector returns the parameters in canonical component order
func (p LatentParameters) Vector() Vector3 {
	return Vector3{p.DriftRate, p.BoundarySeparation, p.NondecisionTime}
}

// IsFinite reports whether all three parameters are finite
func (p LatentParameters) IsFinite() bool {
	return p.Vector().IsFinite()
}

// PredictedStatistics are the noise-free summary statistics implied by LatentParameters
// INVARIANTS (for v, a > 0 and t >= 0):
// - AccuracyRate in (0, 1)
// - MeanRT > 0, VarianceRT > 0
type PredictedStatistics struct {
	AccuracyRate float64 `json:"accuracy_rate"`
	MeanRT       float64 `json:"mean_rt"`
	VarianceRT   float64 `json:"variance_rt"`
}

// ObservedStatistics are one noisy draw of PredictedStatistics from SampleSize responses
type ObservedStatistics struct {
	AccuracyRate float64 `json:"accuracy_rate"`
	MeanRT       float64 `json:"mean_rt"`
	VarianceRT   float64 `json:"variance_rt"`
	SampleSize   int     `json:"sample_size,omitempty"` // 0 when supplied directly
}

// ============================================================================
// RECOVERY RESULTS
// ============================================================================

// RecoveryResult is the per-trial error of an estimate against ground truth
type RecoveryResult struct {
	Bias         Vector3 `json:"bias"`          // true - estimate
	SquaredError Vector3 `json:"squared_error"` // bias^2
}

// NewRecoveryResult computes bias = truth - estimate and its elementwise square
func NewRecoveryResult(truth, estimate LatentParameters) RecoveryResult {
	bias := truth.Vector().Sub(estimate.Vector())
	return RecoveryResult{Bias: bias, SquaredError: bias.Square()}
}

// SampleSizeSummary aggregates retained trials for one sample size
// INVARIANTS:
// - Retained + sum(Skipped) == Attempted
// - Retained == 0 implies MeanBias and MeanSquaredError are all NaN
type SampleSizeSummary struct {
	SampleSize       int                         `json:"sample_size"`
	Attempted        int                         `json:"attempted"`
	Retained         int                         `json:"retained"`
	Skipped          map[UnrecoverableReason]int `json:"skipped,omitempty"`
	MeanBias         Vector3                     `json:"mean_bias"`
	MeanSquaredError Vector3                     `json:"mean_squared_error"`
	BiasStdDev       Vector3                     `json:"bias_std_dev"` // sample SD, NaN with fewer than 2 retained
}

// SkippedTotal returns the number of dropped trials
func (s SampleSizeSummary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// HasRecoveries reports whether any trial at this sample size was usable
func (s SampleSizeSummary) HasRecoveries() bool {
	return s.Retained > 0
}

// AggregateReport maps each requested sample size to its summary
type AggregateReport struct {
	RunID       string                    `json:"run_id"`
	Fingerprint string                    `json:"fingerprint,omitempty"`
	Seed        uint64                    `json:"seed"`
	Iterations  int                       `json:"iterations"`
	SampleSizes []int                     `json:"sample_sizes"` // request order
	Results     map[int]SampleSizeSummary `json:"results"`
}

// Get returns the summary for sample size n
func (r *AggregateReport) Get(n int) (SampleSizeSummary, bool) {
	s, ok := r.Results[n]
	return s, ok
}

// Ordered returns summaries in the order sample sizes were requested
func (r *AggregateReport) Ordered() []SampleSizeSummary {
	out := make([]SampleSizeSummary, 0, len(r.SampleSizes))
	for _, n := range r.SampleSizes {
		if s, ok := r.Results[n]; ok {
			out = append(out, s)
		}
	}
	return out
}
