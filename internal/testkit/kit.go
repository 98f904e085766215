package testkit

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"ezrecover/adapters/rng"
	"ezrecover/domain/core"
	"ezrecover/domain/ezdiffusion"
	"ezrecover/ports"
)

// TestKit provides testing utilities and fixtures for experiment tests
type TestKit struct {
	seed uint64
}

// NewTestKit creates a kit whose streams derive from a fixed seed
func NewTestKit() *TestKit {
	return &TestKit{seed: 42}
}

// Seed returns the fixed seed used by the kit
func (t *TestKit) Seed() uint64 {
	return t.seed
}

// RNGAdapter returns the production stream adapter wrapped to count streams
func (t *TestKit) RNGAdapter() *CountingRNG {
	return &CountingRNG{inner: rng.NewPCGAdapter()}
}

// CountingRNG implements ports.RNGPort and records how many trial streams were opened
type CountingRNG struct {
	inner  ports.RNGPort
	trials atomic.Int64
}

var _ ports.RNGPort = (*CountingRNG)(nil)

// SeededStream delegates to the wrapped adapter
func (c *CountingRNG) SeededStream(ctx context.Context, name string, seed uint64) (rand.Source, error) {
	return c.inner.SeededStream(ctx, name, seed)
}

// TrialStream delegates to the wrapped adapter and counts the call
func (c *CountingRNG) TrialStream(ctx context.Context, seed uint64, sampleSize, trial int) (rand.Source, error) {
	c.trials.Add(1)
	return c.inner.TrialStream(ctx, seed, sampleSize, trial)
}

// Trials returns the number of trial streams opened so far
func (c *CountingRNG) Trials() int {
	return int(c.trials.Load())
}

// ScriptedSampler returns fixed parameters in order, cycling when exhausted
type ScriptedSampler struct {
	mu     sync.Mutex
	params []ezdiffusion.LatentParameters
	next   int
}

var _ ports.ParameterSamplerPort = (*ScriptedSampler)(nil)

// NewScriptedSampler creates a sampler that replays params
func NewScriptedSampler(params ...ezdiffusion.LatentParameters) *ScriptedSampler {
	return &ScriptedSampler{params: params}
}

// Sample ignores src and returns the next scripted parameters
func (s *ScriptedSampler) Sample(src rand.Source) ezdiffusion.LatentParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.params[s.next%len(s.params)]
	s.next++
	return p
}

// ExactSimulator returns the predicted statistics unchanged (zero noise)
type ExactSimulator struct{}

var _ ports.ObservationSimulatorPort = ExactSimulator{}

// Simulate copies pred into an observation
func (ExactSimulator) Simulate(src rand.Source, pred ezdiffusion.PredictedStatistics, n int) (ezdiffusion.ObservedStatistics, error) {
	if n < 1 {
		return ezdiffusion.ObservedStatistics{}, core.NewSampleSizeError(n)
	}
	return ezdiffusion.ObservedStatistics{
		AccuracyRate: pred.AccuracyRate,
		MeanRT:       pred.MeanRT,
		VarianceRT:   pred.VarianceRT,
		SampleSize:   n,
	}, nil
}

// FixedSimulator always returns the same observation, e.g. a zero variance
// to force every trial to be unrecoverable
type FixedSimulator struct {
	Observation ezdiffusion.ObservedStatistics
}

var _ ports.ObservationSimulatorPort = FixedSimulator{}

// Simulate returns the fixed observation stamped with n
func (f FixedSimulator) Simulate(src rand.Source, pred ezdiffusion.PredictedStatistics, n int) (ezdiffusion.ObservedStatistics, error) {
	obs := f.Observation
	obs.SampleSize = n
	return obs, nil
}

// FailingSimulator returns Err on every call
type FailingSimulator struct {
	Err error
}

var _ ports.ObservationSimulatorPort = FailingSimulator{}

// Simulate fails
func (f FailingSimulator) Simulate(src rand.Source, pred ezdiffusion.PredictedStatistics, n int) (ezdiffusion.ObservedStatistics, error) {
	return ezdiffusion.ObservedStatistics{}, f.Err
}

// RecoveryResults builds per-trial results from bias vectors
func RecoveryResults(biases ...ezdiffusion.Vector3) []ezdiffusion.RecoveryResult {
	out := make([]ezdiffusion.RecoveryResult, len(biases))
	for i, b := range biases {
		out[i] = ezdiffusion.RecoveryResult{Bias: b, SquaredError: b.Square()}
	}
	return out
}
