package experiment

import (
	"context"
	"time"

	"ezrecover/adapters/rng"
	"ezrecover/adapters/sampler"
	"ezrecover/adapters/simulator"
	"ezrecover/domain/core"
	"ezrecover/domain/ezdiffusion"
	"ezrecover/internal"
	"ezrecover/ports"

	"golang.org/x/sync/errgroup"
)

// Experiment runs the simulate-and-recover procedure: for every sample size
// it runs Iterations independent trials and reduces the retained ones to
// mean bias and mean squared error.
type Experiment struct {
	cfg       Config
	runID     core.RunID
	rng       ports.RNGPort
	sampler   ports.ParameterSamplerPort
	simulator ports.ObservationSimulatorPort
	logger    *internal.Logger
	metrics   *Metrics
}

// Option customises an Experiment
type Option func(*Experiment)

// WithRNG replaces the trial stream source
func WithRNG(r ports.RNGPort) Option {
	return func(e *Experiment) { e.rng = r }
}

// WithSampler replaces the parameter sampler
func WithSampler(s ports.ParameterSamplerPort) Option {
	return func(e *Experiment) { e.sampler = s }
}

// WithSimulator replaces the observation simulator
func WithSimulator(s ports.ObservationSimulatorPort) Option {
	return func(e *Experiment) { e.simulator = s }
}

// WithLogger sets the logger
func WithLogger(l *internal.Logger) Option {
	return func(e *Experiment) {
		if l == nil {
			l = internal.NewDiscardLogger()
		}
		e.logger = l.WithComponent("Experiment")
	}
}

// WithRunID pins the run identifier instead of generating one
func WithRunID(id core.RunID) Option {
	return func(e *Experiment) { e.runID = id }
}

// New validates cfg and wires the default uniform sampler, sampling simulator
// and PCG streams unless options replace them. A zero seed is replaced by a
// random one so the report always states the seed that reproduces it.
func New(cfg Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.SampleSizes = append([]int(nil), cfg.SampleSizes...)
	if cfg.Seed == 0 {
		cfg.Seed = rng.RandomSeed()
	}

	smp, err := sampler.NewUniformSampler(cfg.Ranges)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:       cfg,
		runID:     core.NewRunID(),
		rng:       rng.NewPCGAdapter(),
		sampler:   smp,
		simulator: simulator.NewSamplingSimulator(cfg.Safety),
		logger:    internal.NewDefaultLogger().WithComponent("Experiment"),
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the effective configuration, including the resolved seed
func (e *Experiment) Config() Config {
	return e.cfg
}

// Metrics returns the experiment's collectors
func (e *Experiment) Metrics() *Metrics {
	return e.metrics
}

// RunID returns the identifier stamped on the report
func (e *Experiment) RunID() core.RunID {
	return e.runID
}

// Run executes every sample size in request order. Domain and input errors
// abort the run; unrecoverable trials are dropped and counted.
func (e *Experiment) Run(ctx context.Context) (*ezdiffusion.AggregateReport, error) {
	report := &ezdiffusion.AggregateReport{
		RunID:       e.runID.String(),
		Fingerprint: e.cfg.Fingerprint().Short(),
		Seed:        e.cfg.Seed,
		Iterations:  e.cfg.Iterations,
		SampleSizes: append([]int(nil), e.cfg.SampleSizes...),
		Results:     make(map[int]ezdiffusion.SampleSizeSummary, len(e.cfg.SampleSizes)),
	}

	e.logger.Info("run %s: %d iterations x %v (seed %d, %d workers)",
		report.RunID, e.cfg.Iterations, e.cfg.SampleSizes, e.cfg.Seed, e.cfg.workers())

	for _, n := range e.cfg.SampleSizes {
		summary, err := e.RunSampleSize(ctx, n)
		if err != nil {
			e.logger.Error("sample size %d aborted: %v", n, err)
			return nil, err
		}
		report.Results[n] = summary

		if !summary.HasRecoveries() {
			e.logger.Warn("sample size %d: no usable recoveries in %d trials", n, summary.Attempted)
			continue
		}
		e.logger.Info("sample size %d: retained %d/%d, mean bias %s, mse %s",
			n, summary.Retained, summary.Attempted, summary.MeanBias, summary.MeanSquaredError)
	}
	return report, nil
}

// RunSampleSize runs all trials for one sample size and reduces them.
// Trials are sampled in parallel into index-addressed slots and reduced
// afterwards, so the result does not depend on scheduling.
func (e *Experiment) RunSampleSize(ctx context.Context, n int) (ezdiffusion.SampleSizeSummary, error) {
	if n < 1 {
		return ezdiffusion.SampleSizeSummary{}, core.NewSampleSizeError(n)
	}
	start := time.Now()
	outcomes := make([]TrialOutcome, e.cfg.Iterations)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.workers())
	for i := range outcomes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trialStart := time.Now()
			out, err := e.runTrial(gctx, n, i)
			if err != nil {
				return &TrialError{SampleSize: n, Trial: i, Err: err}
			}
			outcomes[i] = out
			e.metrics.observeTrial(n, out, time.Since(trialStart))
			if !out.Retained() {
				e.logger.Trace("n=%d trial=%d skipped: %s", n, i, out.Estimate.Reason)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ezdiffusion.SampleSizeSummary{}, err
	}

	e.metrics.observeSampleSize(n, time.Since(start))
	return Reduce(n, outcomes), nil
}
