package simulator

import (
	"math/rand/v2"
	"testing"

	"ezrecover/domain/core"
	"ezrecover/domain/ezdiffusion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predicted(t *testing.T, v, a, tt float64) ezdiffusion.PredictedStatistics {
	t.Helper()
	pred, err := ezdiffusion.Forward(ezdiffusion.LatentParameters{DriftRate: v, BoundarySeparation: a, NondecisionTime: tt})
	require.NoError(t, err)
	return pred
}

func TestSimulate_StaysInRange(t *testing.T) {
	sim := NewSamplingSimulator(ezdiffusion.DefaultNumericalSafety())
	src := rand.NewPCG(11, 13)

	preds := []ezdiffusion.PredictedStatistics{
		predicted(t, 1, 1, 0.2),
		predicted(t, 2, 2, 0.5),     // accuracy close to 1
		predicted(t, 0.5, 0.5, 0.1), // accuracy close to chance
		predicted(t, 2, 0.5, 0.1),   // smallest variance in range
	}

	for _, pred := range preds {
		for _, n := range []int{1, 2, 3, 10, 40, 4000} {
			for i := 0; i < 200; i++ {
				obs, err := sim.Simulate(src, pred, n)
				require.NoError(t, err)

				assert.Greater(t, obs.AccuracyRate, 0.0, "n=%d", n)
				assert.Less(t, obs.AccuracyRate, 1.0, "n=%d", n)
				assert.Greater(t, obs.VarianceRT, 0.0, "n=%d", n)
				assert.Equal(t, n, obs.SampleSize)
			}
		}
	}
}

func TestSimulate_AccuracyIsClampedAtBothEnds(t *testing.T) {
	safety := ezdiffusion.DefaultNumericalSafety()
	sim := NewSamplingSimulator(safety)
	src := rand.NewPCG(3, 4)

	always := ezdiffusion.PredictedStatistics{AccuracyRate: 1, MeanRT: 0.5, VarianceRT: 0.05}
	never := ezdiffusion.PredictedStatistics{AccuracyRate: 0, MeanRT: 0.5, VarianceRT: 0.05}

	obs, err := sim.Simulate(src, always, 10)
	require.NoError(t, err)
	assert.Equal(t, 1-safety.AccuracyEpsilon, obs.AccuracyRate)

	obs, err = sim.Simulate(src, never, 10)
	require.NoError(t, err)
	assert.Equal(t, safety.AccuracyEpsilon, obs.AccuracyRate)
}

func TestSimulate_UnbiasedOnAverage(t *testing.T) {
	sim := NewSamplingSimulator(ezdiffusion.DefaultNumericalSafety())
	src := rand.NewPCG(21, 22)
	pred := predicted(t, 1, 1, 0.2)

	const draws = 4000
	var sumR, sumM, sumV float64
	for i := 0; i < draws; i++ {
		obs, err := sim.Simulate(src, pred, 40)
		require.NoError(t, err)
		sumR += obs.AccuracyRate
		sumM += obs.MeanRT
		sumV += obs.VarianceRT
	}

	assert.InDelta(t, pred.AccuracyRate, sumR/draws, 0.01)
	assert.InDelta(t, pred.MeanRT, sumM/draws, 0.005)
	assert.InEpsilon(t, pred.VarianceRT, sumV/draws, 0.05)
}

func TestSimulate_NoiseShrinksWithSampleSize(t *testing.T) {
	sim := NewSamplingSimulator(ezdiffusion.DefaultNumericalSafety())
	src := rand.NewPCG(5, 6)
	pred := predicted(t, 1.2, 1.4, 0.3)

	spread := func(n int) float64 {
		var sq float64
		for i := 0; i < 500; i++ {
			obs, err := sim.Simulate(src, pred, n)
			require.NoError(t, err)
			d := obs.MeanRT - pred.MeanRT
			sq += d * d
		}
		return sq / 500
	}

	assert.Less(t, spread(4000), spread(10))
}

func TestSimulate_RejectsInvalidSampleSize(t *testing.T) {
	sim := NewSamplingSimulator(ezdiffusion.DefaultNumericalSafety())
	pred := predicted(t, 1, 1, 0.2)

	for _, n := range []int{0, -5} {
		_, err := sim.Simulate(rand.NewPCG(1, 1), pred, n)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidSampleSize)
		assert.True(t, core.IsFatal(err))
	}
}

func TestSimulate_Reproducible(t *testing.T) {
	sim := NewSamplingSimulator(ezdiffusion.DefaultNumericalSafety())
	pred := predicted(t, 1, 1, 0.2)

	a, err := sim.Simulate(rand.NewPCG(9, 9), pred, 40)
	require.NoError(t, err)
	b, err := sim.Simulate(rand.NewPCG(9, 9), pred, 40)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
