package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random sources for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic source for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (rand.Source, error)

	// TrialStream creates the source owned by one simulate-and-recover trial.
	// The same (seed, sampleSize, trial) always yields the same stream, so a
	// run is reproducible no matter how trials are scheduled.
	TrialStream(ctx context.Context, seed uint64, sampleSize, trial int) (rand.Source, error)
}
