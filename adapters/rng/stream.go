package rng

import (
	"context"
	"fmt"
	"math/rand/v2"

	"ezrecover/domain/core"
	"ezrecover/ports"
)

// PCGAdapter implements ports.RNGPort with PCG streams keyed by hashing
// the stream coordinates into the PCG sequence word.
type PCGAdapter struct{}

// NewPCGAdapter creates a new stream adapter
func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

var _ ports.RNGPort = (*PCGAdapter)(nil)

// SeededStream creates a deterministic source for a named operation
func (a *PCGAdapter) SeededStream(ctx context.Context, name string, seed uint64) (rand.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.NewPCG(seed, mix(uint64(hashString(name)))), nil
}

// TrialStream creates the source for trial `trial` at sample size `sampleSize`
func (a *PCGAdapter) TrialStream(ctx context.Context, seed uint64, sampleSize, trial int) (rand.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sampleSize < 1 {
		return nil, core.NewSampleSizeError(sampleSize)
	}
	if trial < 0 {
		return nil, fmt.Errorf("%w: negative trial index %d", core.ErrInvalidInput, trial)
	}
	seq := uint64(sampleSize)<<32 | uint64(uint32(trial))
	return rand.NewPCG(mix(seed), mix(seq)), nil
}

// RandomSeed returns a fresh seed for runs that did not request one
func RandomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

// mix is the splitmix64 finalizer; nearby inputs map to unrelated outputs
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
