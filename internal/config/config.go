package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"ezrecover/domain/ezdiffusion"
	"ezrecover/internal/errors"
	"ezrecover/internal/experiment"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Experiment ExperimentConfig            `yaml:"experiment"`
	Ranges     ezdiffusion.ParameterRanges `yaml:"ranges"`
	Safety     ezdiffusion.NumericalSafety `yaml:"safety"`
	Report     ReportConfig                `yaml:"report"`
	Log        LogConfig                   `yaml:"log"`
}

// ExperimentConfig holds the shape of a recovery run
type ExperimentConfig struct {
	Iterations  int    `yaml:"iterations"`
	SampleSizes []int  `yaml:"sample_sizes"`
	Seed        uint64 `yaml:"seed"`
	Workers     int    `yaml:"workers"`
}

// ReportConfig holds output paths
type ReportConfig struct {
	Path     string `yaml:"path"`
	HTMLPath string `yaml:"html_path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the reference configuration
func Default() *Config {
	return &Config{
		Experiment: ExperimentConfig{
			Iterations:  experiment.DefaultIterations,
			SampleSizes: experiment.DefaultSampleSizes(),
		},
		Ranges: ezdiffusion.DefaultParameterRanges(),
		Safety: ezdiffusion.DefaultNumericalSafety(),
		Report: ReportConfig{Path: "version.md"},
		Log:    LogConfig{Level: "INFO"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// EZ_CONFIG_FILE, then environment variables, and validates it
func Load() (*Config, error) {
	return LoadFile(os.Getenv("EZ_CONFIG_FILE"))
}

// LoadFile is Load with an explicit config file; an empty path skips the file
func LoadFile(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if err := loadYAML(path, config); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, errors.Wrap(err, "failed to read environment configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// ToExperiment converts to the value the experiment runner takes
func (c *Config) ToExperiment() experiment.Config {
	return experiment.Config{
		Iterations:  c.Experiment.Iterations,
		SampleSizes: append([]int(nil), c.Experiment.SampleSizes...),
		Seed:        c.Experiment.Seed,
		Workers:     c.Experiment.Workers,
		Ranges:      c.Ranges,
		Safety:      c.Safety,
	}
}

func loadYAML(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("cannot parse %s: %v", path, err))
	}
	return nil
}

func applyEnv(config *Config) error {
	exp := &config.Experiment
	exp.Iterations = getEnvIntOrDefault("EZ_ITERATIONS", exp.Iterations)
	exp.Workers = getEnvIntOrDefault("EZ_WORKERS", exp.Workers)
	exp.Seed = getEnvUintOrDefault("EZ_SEED", exp.Seed)

	if value := os.Getenv("EZ_SAMPLE_SIZES"); value != "" {
		sizes, err := ParseSampleSizes(value)
		if err != nil {
			return err
		}
		exp.SampleSizes = sizes
	}

	safety := &config.Safety
	safety.AccuracyEpsilon = getEnvFloatOrDefault("EZ_ACCURACY_EPSILON", safety.AccuracyEpsilon)
	safety.LogOddsBound = getEnvFloatOrDefault("EZ_LOG_ODDS_BOUND", safety.LogOddsBound)
	safety.MinVariance = getEnvFloatOrDefault("EZ_MIN_VARIANCE", safety.MinVariance)
	safety.MinRadicand = getEnvFloatOrDefault("EZ_MIN_RADICAND", safety.MinRadicand)
	safety.MinGammaParameter = getEnvFloatOrDefault("EZ_MIN_GAMMA_PARAMETER", safety.MinGammaParameter)

	config.Report.Path = getEnvOrDefault("EZ_REPORT_PATH", config.Report.Path)
	config.Report.HTMLPath = getEnvOrDefault("EZ_REPORT_HTML", config.Report.HTMLPath)
	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
	return nil
}

// ParseSampleSizes parses a comma-separated list such as "10,40,4000"
func ParseSampleSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("invalid sample size %q", part))
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, errors.ConfigInvalid("sample size list is empty")
	}
	return sizes, nil
}

func validateConfig(config *Config) error {
	if config.Report.Path == "" {
		return errors.ConfigInvalid("report path is required")
	}
	if err := config.ToExperiment().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUintOrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
