package ports

import (
	"math/rand/v2"

	"ezrecover/domain/ezdiffusion"
)

// ParameterSamplerPort draws true latent parameters for one trial
type ParameterSamplerPort interface {
	Sample(src rand.Source) ezdiffusion.LatentParameters
}

// ObservationSimulatorPort draws noisy observed statistics from predicted ones
type ObservationSimulatorPort interface {
	// Simulate fails with core.ErrInvalidSampleSize when n < 1
	Simulate(src rand.Source, pred ezdiffusion.PredictedStatistics, n int) (ezdiffusion.ObservedStatistics, error)
}
