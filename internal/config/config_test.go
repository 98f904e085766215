package config

import (
	"os"
	"path/filepath"
	"testing"

	"ezrecover/domain/core"
	"ezrecover/internal/errors"
	"ezrecover/internal/experiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EZ_CONFIG_FILE", "EZ_ITERATIONS", "EZ_SAMPLE_SIZES", "EZ_SEED", "EZ_WORKERS",
		"EZ_REPORT_PATH", "EZ_REPORT_HTML", "EZ_ACCURACY_EPSILON", "EZ_LOG_ODDS_BOUND",
		"EZ_MIN_VARIANCE", "EZ_MIN_RADICAND", "EZ_MIN_GAMMA_PARAMETER", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ezrecover.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, experiment.DefaultIterations, cfg.Experiment.Iterations)
	assert.Equal(t, []int{10, 40, 4000}, cfg.Experiment.SampleSizes)
	assert.Equal(t, "version.md", cfg.Report.Path)
	assert.Empty(t, cfg.Report.HTMLPath)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, 1e-5, cfg.Safety.AccuracyEpsilon)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EZ_ITERATIONS", "250")
	t.Setenv("EZ_SAMPLE_SIZES", "20, 80")
	t.Setenv("EZ_SEED", "7")
	t.Setenv("EZ_WORKERS", "3")
	t.Setenv("EZ_REPORT_PATH", "out.md")
	t.Setenv("EZ_REPORT_HTML", "out.html")
	t.Setenv("EZ_MIN_RADICAND", "0.001")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	exp := cfg.ToExperiment()
	assert.Equal(t, 250, exp.Iterations)
	assert.Equal(t, []int{20, 80}, exp.SampleSizes)
	assert.Equal(t, uint64(7), exp.Seed)
	assert.Equal(t, 3, exp.Workers)
	assert.Equal(t, 0.001, exp.Safety.MinRadicand)
	assert.Equal(t, "out.md", cfg.Report.Path)
	assert.Equal(t, "out.html", cfg.Report.HTMLPath)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
experiment:
  iterations: 50
  sample_sizes: [5, 15]
  seed: 11
ranges:
  drift_rate: {min: 1, max: 3}
  boundary_separation: {min: 0.5, max: 2}
  nondecision_time: {min: 0.1, max: 0.5}
report:
  path: from-file.md
`)
	t.Setenv("EZ_ITERATIONS", "60")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Experiment.Iterations)
	assert.Equal(t, []int{5, 15}, cfg.Experiment.SampleSizes)
	assert.Equal(t, uint64(11), cfg.Experiment.Seed)
	assert.Equal(t, 1.0, cfg.Ranges.DriftRate.Min)
	assert.Equal(t, 3.0, cfg.Ranges.DriftRate.Max)
	assert.Equal(t, "from-file.md", cfg.Report.Path)
	// untouched keys keep their defaults
	assert.Equal(t, 10.0, cfg.Safety.LogOddsBound)
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("EZ_CONFIG_FILE", writeFile(t, "experiment:\n  iterations: 9\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Experiment.Iterations)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unparseable sample sizes", map[string]string{"EZ_SAMPLE_SIZES": "10,forty"}},
		{"empty sample size list", map[string]string{"EZ_SAMPLE_SIZES": " , "}},
		{"zero sample size", map[string]string{"EZ_SAMPLE_SIZES": "0"}},
		{"zero iterations", map[string]string{"EZ_ITERATIONS": "0"}},
		{"negative radicand floor", map[string]string{"EZ_MIN_RADICAND": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = LoadFile(writeFile(t, "experiment: [not, a, map"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate_KeepsDomainSentinel(t *testing.T) {
	clearEnv(t)
	t.Setenv("EZ_SAMPLE_SIZES", "10,10")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, core.IsInputError(err))
}

func TestParseSampleSizes(t *testing.T) {
	sizes, err := ParseSampleSizes("10,40,4000")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 40, 4000}, sizes)

	sizes, err = ParseSampleSizes(" 7 ,")
	require.NoError(t, err)
	assert.Equal(t, []int{7}, sizes)
}
