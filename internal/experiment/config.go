package experiment

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"ezrecover/domain/core"
	"ezrecover/domain/ezdiffusion"
)

// Default run shape
const (
	DefaultIterations = 1000
)

// DefaultSampleSizes returns the sample sizes of the reference experiment
func DefaultSampleSizes() []int {
	return []int{10, 40, 4000}
}

// Config is everything one experiment run needs. It is passed explicitly so
// several experiments can run side by side with different settings.
type Config struct {
	Iterations  int
	SampleSizes []int
	// Seed for all trial streams; 0 picks a random seed at New
	Seed uint64
	// Workers bounds concurrent trials; <= 0 means GOMAXPROCS
	Workers int
	Ranges  ezdiffusion.ParameterRanges
	Safety  ezdiffusion.NumericalSafety
}

// DefaultConfig returns the reference configuration: 1000 iterations at N = 10, 40, 4000
func DefaultConfig() Config {
	return Config{
		Iterations:  DefaultIterations,
		SampleSizes: DefaultSampleSizes(),
		Workers:     runtime.GOMAXPROCS(0),
		Ranges:      ezdiffusion.DefaultParameterRanges(),
		Safety:      ezdiffusion.DefaultNumericalSafety(),
	}
}

// Validate rejects configurations that would abort or silently misbehave
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be >= 1 (got %d)", core.ErrInvalidInput, c.Iterations)
	}
	if len(c.SampleSizes) == 0 {
		return fmt.Errorf("%w: at least one sample size is required", core.ErrInvalidInput)
	}
	seen := make(map[int]bool, len(c.SampleSizes))
	for _, n := range c.SampleSizes {
		if n < 1 {
			return core.NewSampleSizeError(n)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate sample size %d", core.ErrInvalidInput, n)
		}
		seen[n] = true
	}
	if err := c.Ranges.Validate(); err != nil {
		return err
	}
	return c.Safety.Validate()
}

// Fingerprint identifies the settings that determine a run's numbers
func (c Config) Fingerprint() core.Hash {
	sizes := make([]string, len(c.SampleSizes))
	for i, n := range c.SampleSizes {
		sizes[i] = strconv.Itoa(n)
	}
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	return core.Fingerprint(map[string]string{
		"iterations":          strconv.Itoa(c.Iterations),
		"sample_sizes":        strings.Join(sizes, ","),
		"seed":                strconv.FormatUint(c.Seed, 10),
		"range.drift":         f(c.Ranges.DriftRate.Min) + ":" + f(c.Ranges.DriftRate.Max),
		"range.boundary":      f(c.Ranges.BoundarySeparation.Min) + ":" + f(c.Ranges.BoundarySeparation.Max),
		"range.nondecision":   f(c.Ranges.NondecisionTime.Min) + ":" + f(c.Ranges.NondecisionTime.Max),
		"safety.accuracy_eps": f(c.Safety.AccuracyEpsilon),
		"safety.log_odds":     f(c.Safety.LogOddsBound),
		"safety.min_variance": f(c.Safety.MinVariance),
		"safety.min_radicand": f(c.Safety.MinRadicand),
		"safety.min_gamma":    f(c.Safety.MinGammaParameter),
	})
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
