package experiment

import (
	"context"
	"fmt"

	"ezrecover/domain/ezdiffusion"
)

// TrialOutcome records everything one simulate-and-recover trial produced
type TrialOutcome struct {
	Trial    int
	Truth    ezdiffusion.LatentParameters
	Observed ezdiffusion.ObservedStatistics
	Estimate ezdiffusion.Estimate
	Result   ezdiffusion.RecoveryResult // zero unless Retained()
}

// Retained reports whether the trial counts toward the aggregate
func (o TrialOutcome) Retained() bool {
	return o.Estimate.Recovered()
}

// TrialError wraps a fatal failure with the trial that hit it
type TrialError struct {
	SampleSize int
	Trial      int
	Err        error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d at sample size %d: %v", e.Trial, e.SampleSize, e.Err)
}

func (e *TrialError) Unwrap() error {
	return e.Err
}

// runTrial samples truth, predicts, simulates N responses and inverts.
// Forward and simulator errors are fatal; an unrecoverable estimate is not.
func (e *Experiment) runTrial(ctx context.Context, n, trial int) (TrialOutcome, error) {
	src, err := e.rng.TrialStream(ctx, e.cfg.Seed, n, trial)
	if err != nil {
		return TrialOutcome{}, err
	}

	truth := e.sampler.Sample(src)
	pred, err := ezdiffusion.Forward(truth)
	if err != nil {
		return TrialOutcome{}, err
	}

	obs, err := e.simulator.Simulate(src, pred, n)
	if err != nil {
		return TrialOutcome{}, err
	}

	out := TrialOutcome{
		Trial:    trial,
		Truth:    truth,
		Observed: obs,
		Estimate: ezdiffusion.Inverse(obs, e.cfg.Safety),
	}
	if !out.Estimate.Recovered() {
		return out, nil
	}

	res := ezdiffusion.NewRecoveryResult(truth, out.Estimate.Parameters)
	if !res.Bias.IsFinite() || !res.SquaredError.IsFinite() {
		out.Estimate.Reason = ezdiffusion.ReasonNonFiniteEstimate
		return out, nil
	}
	out.Result = res
	return out, nil
}
