package experiment

import (
	"strconv"
	"time"

	"ezrecover/domain/ezdiffusion"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeRetained = "retained"

// Metrics counts trial outcomes for one experiment. Each experiment owns its
// registry so concurrent experiments never share collectors.
type Metrics struct {
	registry *prometheus.Registry

	// trialsTotal counts trials by sample size and outcome (retained or skip reason)
	trialsTotal *prometheus.CounterVec

	// trialDuration tracks wall time of a single trial
	trialDuration prometheus.Histogram

	// sampleSizeDuration tracks wall time of a full batch at one sample size
	sampleSizeDuration *prometheus.HistogramVec
}

// NewMetrics registers the experiment collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		trialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ezrecover_trials_total",
			Help: "Simulate-and-recover trials by sample size and outcome",
		}, []string{"sample_size", "outcome"}),
		trialDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ezrecover_trial_duration_seconds",
			Help:    "Duration of one simulate-and-recover trial",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10), // 100ns to ~26ms
		}),
		sampleSizeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ezrecover_sample_size_duration_seconds",
			Help:    "Duration of all trials at one sample size",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"sample_size"}),
	}
}

// Gatherer exposes the registry for callers that want to dump or serve it
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) observeTrial(n int, outcome TrialOutcome, elapsed time.Duration) {
	m.trialsTotal.WithLabelValues(strconv.Itoa(n), OutcomeLabel(outcome.Estimate.Reason)).Inc()
	m.trialDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeSampleSize(n int, elapsed time.Duration) {
	m.sampleSizeDuration.WithLabelValues(strconv.Itoa(n)).Observe(elapsed.Seconds())
}

// TrialCount returns how many trials at sample size n ended with outcome,
// where outcome is "retained" or an UnrecoverableReason.
func (m *Metrics) TrialCount(n int, outcome string) float64 {
	families, err := m.registry.Gather()
	if err != nil {
		return 0
	}
	size := strconv.Itoa(n)
	for _, mf := range families {
		if mf.GetName() != "ezrecover_trials_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, 2)
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["sample_size"] == size && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// OutcomeLabel maps a skip reason to its metric label
func OutcomeLabel(reason ezdiffusion.UnrecoverableReason) string {
	if reason == ezdiffusion.ReasonNone {
		return outcomeRetained
	}
	return string(reason)
}
