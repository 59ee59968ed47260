// Package cli is the command-line surface (spec §6): it registers flags on
// a single root command, translates them into a runnable Plan, and drives
// one Scheduler run to completion, following the rootCmd/PersistentPreRun/
// cobra.OnInitialize wiring pattern the benchmark aggregator this module
// grew out of already used for its own command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/export"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/progress"
	"github.com/swiftbench/swiftbench/internal/scheduler"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "swiftbench COMMAND...",
	Short: "A statistical command-line benchmarking tool",
	Long: `swiftbench measures the wall-clock, user, and system time of one or more
shell commands across repeated runs, and reports mean, standard deviation,
and a relative-speed comparison.

Example:
  swiftbench 'sleep 0.1' 'sleep 0.2'`,
	Version:       "0.1.0",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
	RunE: runBenchmarks,
}

// Execute parses flags, validates the resulting configuration, and runs the
// benchmarking pipeline to completion. The returned error's concrete type
// determines the process exit code the caller should use.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./swiftbench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	f := rootCmd.Flags()
	f.IntP("warmup", "w", 0, "number of warmup runs before timing starts")
	f.IntP("min-runs", "m", 10, "minimum number of timed runs")
	f.IntP("max-runs", "M", 0, "maximum number of timed runs (0 = unbounded)")
	f.IntP("runs", "r", 0, "exact number of timed runs, overriding estimation")
	f.Float64("min-benchmarking-time", 3.0, "minimum total measuring time in seconds when runs are estimated")
	f.StringArrayP("prepare", "p", nil, "command run before each timed run, once or once per benchmark")
	f.StringArray("conclude", nil, "command run after each timed run, once or once per benchmark")
	f.StringP("setup", "s", "", "command run once before the first benchmark")
	f.StringP("cleanup", "c", "", "command run once after the last benchmark")
	f.StringArrayP("parameter-scan", "P", nil, `numeric parameter range, as "NAME MIN MAX"`)
	f.Float64SliceP("parameter-step-size", "D", nil, "step size for the matching --parameter-scan, in order")
	f.StringArrayP("parameter-list", "L", nil, `explicit parameter values, as "NAME v1,v2,v3"`)
	f.String("command-name", "", "display name template, substituted the same way as commands")
	f.StringP("shell", "S", "sh", `shell used to run commands, or "none" to exec argv directly`)
	f.BoolP("no-shell", "N", false, "execute commands directly without a shell")
	f.String("input", "null", `stdin source for benchmarked commands: "null" or a file path`)
	f.StringArray("output", nil, `stdout destination: "null", "pipe", "inherit", or a file path`)
	f.StringP("time-unit", "u", "auto", "time unit for reporting: auto, second, millisecond, microsecond")
	f.BoolP("ignore-failure", "i", false, "treat non-zero exit codes as a warning rather than a fatal error")
	f.String("style", "auto", "progress rendering: auto, basic, full, color, none")
	f.String("sort", "mean-time", "comparison table order: mean-time, command")
	f.String("reference", "", "benchmark to use as the 1.00x baseline in comparisons")
	f.String("export-csv", "", "write a CSV report to PATH")
	f.String("export-json", "", "write a JSON report to PATH")
	f.String("export-markdown", "", "write a Markdown report to PATH")
	f.String("export-asciidoc", "", "write an AsciiDoc report to PATH")
	f.String("export-orgmode", "", "write an org-mode report to PATH")
	f.String("export-html", "", "write a self-contained HTML report to PATH")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("swiftbench")
	}

	viper.SetEnvPrefix("SWIFTBENCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func initLogger() {
	level := slog.LevelInfo
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	fl := readFlags(cmd)
	plan, err := buildPlan(fl, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderer := progress.New(os.Stderr, plan.Style)
	sched := scheduler.New(plan.SchedulerCfg, renderer)

	results, runErr := sched.Run(ctx, jobPointers(plan.Jobs))
	if runErr != nil {
		slog.Error("run aborted", "error", runErr)
	}

	export.RenderConsoleSummary(results, plan.SchedulerCfg.Metadata, os.Stderr)

	for _, target := range plan.StdoutExports {
		if err := target.Exporter.Write(results, plan.SchedulerCfg.Metadata, os.Stdout); err != nil {
			slog.Error("stdout export failed", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if anyFailed(results) {
		return &bmerrors.BenchmarkError{Kind: bmerrors.KindNonZeroExit, Err: fmt.Errorf("one or more benchmarks failed")}
	}
	return nil
}

func jobPointers(jobs []model.BenchmarkJob) []*model.BenchmarkJob {
	out := make([]*model.BenchmarkJob, len(jobs))
	for i := range jobs {
		out[i] = &jobs[i]
	}
	return out
}

func anyFailed(results []*model.BenchmarkResult) bool {
	for _, r := range results {
		if r.Failed {
			return true
		}
	}
	return false
}
