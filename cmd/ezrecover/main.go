package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"ezrecover/domain/ezdiffusion"
	"ezrecover/internal"
	"ezrecover/internal/config"
	"ezrecover/internal/errors"
	"ezrecover/internal/experiment"
	"ezrecover/internal/report"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "ezrecover",
		Short:         "EZ-diffusion simulate-and-recover experiments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newForwardCmd(),
		newInverseCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		stop()
		os.Exit(1)
	}
}

type runFlags struct {
	configFile  string
	iterations  int
	sampleSizes string
	seed        uint64
	workers     int
	out         string
	html        string
	metrics     bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulate-and-recover experiment and write the report",
		Long: `Sample true parameters, simulate observed statistics at each sample size,
recover the parameters with the inverse equations and report mean bias and
mean squared error per sample size.

Settings come from defaults, then the YAML file (--config or EZ_CONFIG_FILE),
then EZ_* environment variables, then flags.

Example: ezrecover run --iterations 1000 --sample-sizes 10,40,4000 --seed 42 --html version.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runExperiment(cmd.Context(), cfg, flags.metrics)
		},
	}

	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML configuration file")
	cmd.Flags().IntVar(&flags.iterations, "iterations", experiment.DefaultIterations, "Trials per sample size")
	cmd.Flags().StringVar(&flags.sampleSizes, "sample-sizes", "10,40,4000", "Comma-separated sample sizes")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Random seed (0 picks one and reports it)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent trials (0 uses GOMAXPROCS)")
	cmd.Flags().StringVar(&flags.out, "out", "version.md", "Markdown report path")
	cmd.Flags().StringVar(&flags.html, "html", "", "Optional HTML report path")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "Print trial outcome counters after the run")

	return cmd
}

// loadConfig layers explicitly set flags over the file and environment
func loadConfig(cmd *cobra.Command, flags runFlags) (*config.Config, error) {
	path := flags.configFile
	if path == "" {
		path = os.Getenv("EZ_CONFIG_FILE")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("iterations") {
		cfg.Experiment.Iterations = flags.iterations
	}
	if changed("sample-sizes") {
		sizes, err := config.ParseSampleSizes(flags.sampleSizes)
		if err != nil {
			return nil, err
		}
		cfg.Experiment.SampleSizes = sizes
	}
	if changed("seed") {
		cfg.Experiment.Seed = flags.seed
	}
	if changed("workers") {
		cfg.Experiment.Workers = flags.workers
	}
	if changed("out") {
		cfg.Report.Path = flags.out
	}
	if changed("html") {
		cfg.Report.HTMLPath = flags.html
	}
	return cfg, nil
}

func runExperiment(ctx context.Context, cfg *config.Config, printMetrics bool) error {
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))

	exp, err := experiment.New(cfg.ToExperiment(), experiment.WithLogger(logger))
	if err != nil {
		return errors.FromDomain(err, "invalid experiment configuration")
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return errors.FromDomain(err, "experiment failed")
	}

	if err := report.SaveMarkdown(cfg.Report.Path, result); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", cfg.Report.Path)

	if cfg.Report.HTMLPath != "" {
		if err := report.SaveHTML(cfg.Report.HTMLPath, result); err != nil {
			return err
		}
		fmt.Printf("HTML report written to %s\n", cfg.Report.HTMLPath)
	}

	fmt.Printf("\nRun %s (seed %d, %d iterations)\n", result.RunID, result.Seed, result.Iterations)
	for _, s := range result.Ordered() {
		fmt.Printf("N=%-6d retained %d/%d  bias %s  mse %s\n",
			s.SampleSize, s.Retained, s.Attempted, s.MeanBias, s.MeanSquaredError)
	}

	if printMetrics {
		return dumpCounters(exp.Metrics().Gatherer())
	}
	return nil
}

// dumpCounters prints every counter sample as name{labels} value
func dumpCounters(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	fmt.Println("\nMetrics:")
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func newForwardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forward [drift-rate] [boundary-separation] [nondecision-time]",
		Short: "Predict accuracy, mean RT and RT variance from parameters",
		Long: `Evaluate the EZ-diffusion forward equations.

Example: ezrecover forward 1 1 0.2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats(args)
			if err != nil {
				return err
			}
			pred, err := ezdiffusion.Forward(ezdiffusion.LatentParameters{
				DriftRate:          values[0],
				BoundarySeparation: values[1],
				NondecisionTime:    values[2],
			})
			if err != nil {
				return errors.FromDomain(err, "forward model failed")
			}
			fmt.Printf("accuracy_rate: %.10g\nmean_rt:       %.10g\nvariance_rt:   %.10g\n",
				pred.AccuracyRate, pred.MeanRT, pred.VarianceRT)
			return nil
		},
	}
}

func newInverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inverse [accuracy-rate] [mean-rt] [variance-rt]",
		Short: "Recover parameters from observed summary statistics",
		Long: `Evaluate the EZ-diffusion inverse equations with the default numerical safety floors.

Example: ezrecover inverse 0.7310585786 0.4310585786 0.0344466454`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats(args)
			if err != nil {
				return err
			}
			est := ezdiffusion.Inverse(ezdiffusion.ObservedStatistics{
				AccuracyRate: values[0],
				MeanRT:       values[1],
				VarianceRT:   values[2],
			}, ezdiffusion.DefaultNumericalSafety())
			if !est.Recovered() {
				return errors.FromDomain(est.Err(), "parameters not recoverable")
			}
			p := est.Parameters
			fmt.Printf("drift_rate:          %.10g\nboundary_separation: %.10g\nnondecision_time:    %.10g\n",
				p.DriftRate, p.BoundarySeparation, p.NondecisionTime)
			return nil
		},
	}
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("argument %d: %q is not a number", i+1, arg))
		}
		values[i] = v
	}
	return values, nil
}
