package simulator

import (
	"math"
	"math/rand/v2"

	"ezrecover/domain/core"
	"ezrecover/domain/ezdiffusion"
	"ezrecover/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// SamplingSimulator draws observed statistics from the sampling
// distribution of each estimator:
//   - accuracy:  Binomial(N, R) / N, clamped inside (0, 1)
//   - mean RT:   Normal(M, sqrt(V / N))
//   - var RT:    Gamma(shape (N-1)/2, scale 2V/(N-1))
type SamplingSimulator struct {
	safety ezdiffusion.NumericalSafety
}

var _ ports.ObservationSimulatorPort = (*SamplingSimulator)(nil)

// NewSamplingSimulator creates a simulator using the given floors
func NewSamplingSimulator(safety ezdiffusion.NumericalSafety) *SamplingSimulator {
	return &SamplingSimulator{safety: safety}
}

// Simulate draws one set of observed statistics for a sample of n responses
func (s *SamplingSimulator) Simulate(src rand.Source, pred ezdiffusion.PredictedStatistics, n int) (ezdiffusion.ObservedStatistics, error) {
	if n < 1 {
		return ezdiffusion.ObservedStatistics{}, core.NewSampleSizeError(n)
	}
	nf := float64(n)

	correct := s.accuracyDist(pred, nf, src).Rand()
	meanRT := s.meanDist(pred, nf, src).Rand()
	varianceRT := s.varianceDist(pred, nf, src).Rand()

	return ezdiffusion.ObservedStatistics{
		AccuracyRate: s.safety.ClampAccuracy(correct / nf),
		MeanRT:       meanRT,
		VarianceRT:   math.Max(varianceRT, s.safety.MinVariance),
		SampleSize:   n,
	}, nil
}

func (s *SamplingSimulator) accuracyDist(pred ezdiffusion.PredictedStatistics, n float64, src rand.Source) distuv.Binomial {
	p := math.Max(0, math.Min(1, pred.AccuracyRate))
	return distuv.Binomial{N: n, P: p, Src: src}
}

func (s *SamplingSimulator) meanDist(pred ezdiffusion.PredictedStatistics, n float64, src rand.Source) distuv.Normal {
	variance := math.Max(pred.VarianceRT/n, s.safety.MinVariance)
	return distuv.Normal{Mu: pred.MeanRT, Sigma: math.Sqrt(variance), Src: src}
}

// varianceDist is the scaled chi-square law of the sample variance.
// gonum parameterises Gamma by rate, so Beta = 1/scale.
func (s *SamplingSimulator) varianceDist(pred ezdiffusion.PredictedStatistics, n float64, src rand.Source) distuv.Gamma {
	shape := math.Max((n-1)/2, s.safety.MinGammaParameter)
	scale := math.Max(2*pred.VarianceRT/(n-1), s.safety.MinGammaParameter)
	if n <= 1 {
		scale = s.safety.MinGammaParameter
	}
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: src}
}
