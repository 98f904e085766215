package experiment

import (
	"math"

	"ezrecover/domain/ezdiffusion"

	"github.com/montanaflynn/stats"
)

// Aggregate reduces retained per-trial results at sample size n to elementwise
// means. skipped counts the dropped trials by reason. With no retained results
// the means are all NaN, which keeps "nothing recovered" distinct from a
// perfect recovery.
func Aggregate(n int, results []ezdiffusion.RecoveryResult, skipped map[ezdiffusion.UnrecoverableReason]int) ezdiffusion.SampleSizeSummary {
	summary := ezdiffusion.SampleSizeSummary{
		SampleSize:       n,
		Retained:         len(results),
		Skipped:          make(map[ezdiffusion.UnrecoverableReason]int, len(skipped)),
		MeanBias:         ezdiffusion.NaNVector(),
		MeanSquaredError: ezdiffusion.NaNVector(),
		BiasStdDev:       ezdiffusion.NaNVector(),
	}
	for reason, count := range skipped {
		if count > 0 {
			summary.Skipped[reason] = count
		}
	}
	summary.Attempted = summary.Retained + summary.SkippedTotal()

	if len(results) == 0 {
		return summary
	}

	bias := make([]float64, len(results))
	sqErr := make([]float64, len(results))
	for _, c := range ezdiffusion.Components {
		for i, r := range results {
			bias[i] = r.Bias[c]
			sqErr[i] = r.SquaredError[c]
		}
		summary.MeanBias[c] = mean(bias)
		summary.MeanSquaredError[c] = mean(sqErr)
		if len(results) > 1 {
			if sd, err := stats.StandardDeviationSample(bias); err == nil {
				summary.BiasStdDev[c] = sd
			}
		}
	}
	return summary
}

// Reduce turns a batch of trial outcomes into a summary
func Reduce(n int, outcomes []TrialOutcome) ezdiffusion.SampleSizeSummary {
	results := make([]ezdiffusion.RecoveryResult, 0, len(outcomes))
	skipped := make(map[ezdiffusion.UnrecoverableReason]int)
	for _, o := range outcomes {
		if o.Retained() {
			results = append(results, o.Result)
			continue
		}
		skipped[o.Estimate.Reason]++
	}
	return Aggregate(n, results, skipped)
}

func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}
