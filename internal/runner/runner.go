// Package runner is the Benchmark Runner leaf (spec §4.3): it drives one
// job through warmup, estimation, and steady-state measurement, emitting
// progress events and producing a frozen BenchmarkResult.
package runner

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/executor"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/shellcalib"
	"github.com/swiftbench/swiftbench/internal/stats"
)

// Config carries the run-wide knobs that apply to every job.
type Config struct {
	WarmupCount         int
	MinRuns             int           // default 10
	MaxRuns             int           // 0 means unbounded
	ExactRuns           int           // if > 0, overrides estimation entirely
	MinBenchmarkingTime time.Duration // default 3s
	IgnoreFailure       bool
	Shell               string
	ShellFlag           string
	NoShell             bool
	OutlierThresholds   stats.OutlierThresholds
}

// Runner executes one job's full lifecycle.
type Runner struct {
	exec     *executor.Executor
	overhead shellcalib.Overhead
	cfg      Config
}

// New builds a Runner. overhead is the zero value in no-shell mode or when
// calibration has been skipped.
func New(exec *executor.Executor, overhead shellcalib.Overhead, cfg Config) *Runner {
	if cfg.MinRuns <= 0 {
		cfg.MinRuns = 10
	}
	if cfg.MinBenchmarkingTime <= 0 {
		cfg.MinBenchmarkingTime = 3 * time.Second
	}
	return &Runner{exec: exec, overhead: overhead, cfg: cfg}
}

// Run drives job through its full lifecycle. The returned error is always a
// *bmerrors.BenchmarkError when non-nil. A context cancellation partway
// through the measuring phase is not an error: Run returns whatever samples
// were gathered so far with a nil error, per spec §5's graceful-teardown
// requirement.
func (r *Runner) Run(ctx context.Context, job *model.BenchmarkJob, progress func(model.ProgressEvent)) (*model.BenchmarkResult, error) {
	if progress == nil {
		progress = func(model.ProgressEvent) {}
	}

	for w := 0; w < r.cfg.WarmupCount; w++ {
		if ctx.Err() != nil {
			break
		}
		if _, _, _, err := r.measureOnce(ctx, job, 0, model.PhaseWarming); err != nil {
			if isHookFailure(err) {
				return nil, err
			}
			// A warmup sample's own non-zero exit is discarded either way.
		}
	}

	sample, rawWall, warning, err := r.measureOnce(ctx, job, 1, model.PhaseEstimating)
	if err != nil {
		return nil, err
	}

	samples := []model.TimingSample{sample}
	warnings := appendWarning(nil, warning)

	targetRuns := r.targetRuns(rawWall)
	progress(r.event(job, model.PhaseEstimating, 1, targetRuns, samples))

	for i := 2; i <= targetRuns; i++ {
		if ctx.Err() != nil {
			break
		}
		sample, _, warning, err := r.measureOnce(ctx, job, i, model.PhaseMeasuring)
		if err != nil {
			if ctx.Err() != nil {
				// The child was stopped by the cancellation; keep what was
				// measured before it.
				break
			}
			return nil, err
		}
		samples = append(samples, sample)
		warnings = appendWarning(warnings, warning)
		progress(r.event(job, model.PhaseMeasuring, i, targetRuns, samples))
	}

	return r.finalize(job, samples, warnings), nil
}

func (r *Runner) finalize(job *model.BenchmarkJob, samples []model.TimingSample, warnings []string) *model.BenchmarkResult {
	wallSeconds := make([]float64, len(samples))
	for i, s := range samples {
		wallSeconds[i] = s.Wall.Seconds()
	}

	result := &model.BenchmarkResult{
		Job:      job,
		Samples:  samples,
		Stats:    stats.ComputeStats(samples),
		Outliers: stats.DetectOutliers(wallSeconds, r.cfg.OutlierThresholds),
		Warnings: warnings,
	}

	if result.Outliers.WideSpread {
		result.Warnings = append(result.Warnings, "samples show a wide spread relative to their standard deviation; consider more warmup runs")
	}
	if result.Outliers.SlowFirstRun {
		result.Warnings = append(result.Warnings, "the first sample was significantly slower than the rest; results might be inconsistent without extra warmup")
	}
	if result.Outliers.FastFirstRun {
		result.Warnings = append(result.Warnings, "the first sample was significantly faster than the rest; results might be inconsistent")
	}

	return result
}

// measureOnce runs one prepare/command/conclude cycle and returns the
// recorded sample, the raw (pre-overhead-subtraction) wall time in seconds
// (used only by the estimation phase), an optional warning string for a
// demoted failure, and a fatal error for anything ignore-failure does not
// cover.
func (r *Runner) measureOnce(ctx context.Context, job *model.BenchmarkJob, iteration int, phase model.RunPhase) (model.TimingSample, float64, string, error) {
	env := map[string]string{
		"HYPERFINE_RANDOMIZED_ENVIRONMENT_OFFSET": randomOffset(),
	}
	if iteration > 0 {
		env["HYPERFINE_ITERATION"] = strconv.Itoa(iteration)
	}

	if job.Prepare != "" {
		res, err := r.exec.Execute(ctx, r.buildSpec(job.Prepare, job, env))
		if err != nil {
			return model.TimingSample{}, 0, "", &bmerrors.BenchmarkError{Kind: bmerrors.KindPrepareFailed, Benchmark: job.DisplayName, Iteration: iteration, Err: err}
		}
		if !res.Exit.Success() {
			return model.TimingSample{}, 0, "", &bmerrors.BenchmarkError{Kind: bmerrors.KindPrepareFailed, Benchmark: job.DisplayName, Iteration: iteration, Code: res.Exit.Code, Signal: res.Exit.Signal}
		}
	}

	res, err := r.exec.Execute(ctx, r.buildSpec(job.Command, job, env))
	if err != nil {
		if r.cfg.IgnoreFailure {
			sample := model.TimingSample{Exit: model.ExitStatus{Code: -1}}
			warning := "iteration " + strconv.Itoa(iteration) + ": command failed to start (ignored): " + err.Error()
			return sample, 0, warning, nil
		}
		return model.TimingSample{}, 0, "", &bmerrors.BenchmarkError{Kind: bmerrors.KindSpawnFailed, Benchmark: job.DisplayName, Iteration: iteration, Err: err}
	}

	var warning string
	if !res.Exit.Success() && !r.cfg.IgnoreFailure {
		kind := bmerrors.KindNonZeroExit
		if res.Exit.Signaled {
			kind = bmerrors.KindSignalTerminated
		}
		return model.TimingSample{}, 0, "", &bmerrors.BenchmarkError{Kind: kind, Benchmark: job.DisplayName, Iteration: iteration, Code: res.Exit.Code, Signal: res.Exit.Signal}
	}
	if !res.Exit.Success() {
		warning = "iteration " + strconv.Itoa(iteration) + ": command exited with a non-zero status (ignored)"
	}

	rawWall := time.Duration(res.Wall)
	corrected, below := r.subtractOverhead(rawWall)
	sample := model.TimingSample{
		Wall:               corrected,
		User:               time.Duration(res.User),
		System:             time.Duration(res.System),
		Exit:               res.Exit,
		BelowShellOverhead: below,
	}
	if below {
		warning = appendWarningText(warning, "iteration "+strconv.Itoa(iteration)+": raw wall time was below the calibrated shell overhead")
	}

	if job.Conclude != "" {
		cres, cerr := r.exec.Execute(ctx, r.buildSpec(job.Conclude, job, env))
		if cerr != nil {
			return sample, rawWall.Seconds(), "", &bmerrors.BenchmarkError{Kind: bmerrors.KindConcludeFailed, Benchmark: job.DisplayName, Iteration: iteration, Err: cerr}
		}
		if !cres.Exit.Success() {
			return sample, rawWall.Seconds(), "", &bmerrors.BenchmarkError{Kind: bmerrors.KindConcludeFailed, Benchmark: job.DisplayName, Iteration: iteration, Code: cres.Exit.Code, Signal: cres.Exit.Signal}
		}
	}

	return sample, rawWall.Seconds(), warning, nil
}

func (r *Runner) buildSpec(command string, job *model.BenchmarkJob, env map[string]string) executor.Spec {
	spec := executor.Spec{Input: job.Input, Output: job.Output, Env: env}
	if r.cfg.NoShell {
		spec.NoShell = true
		spec.Argv = tokenize(command)
	} else {
		spec.Shell = r.cfg.Shell
		spec.ShellFlag = r.cfg.ShellFlag
		spec.Command = command
	}
	return spec
}

func (r *Runner) subtractOverhead(wall time.Duration) (time.Duration, bool) {
	if r.overhead.MeanWall <= 0 {
		return wall, false
	}
	overhead := time.Duration(r.overhead.MeanWall * float64(time.Second))
	if wall < overhead {
		return 0, true
	}
	return wall - overhead, false
}

// targetRuns computes ceil(min_time/estimate), clamped to [min_runs,
// max_runs]. ExactRuns, when set, wins outright.
func (r *Runner) targetRuns(estimateSeconds float64) int {
	if r.cfg.ExactRuns > 0 {
		return r.cfg.ExactRuns
	}
	if estimateSeconds <= 0 {
		estimateSeconds = 1e-9
	}
	target := int(math.Ceil(r.cfg.MinBenchmarkingTime.Seconds() / estimateSeconds))
	if target < r.cfg.MinRuns {
		target = r.cfg.MinRuns
	}
	if r.cfg.MaxRuns > 0 && target > r.cfg.MaxRuns {
		target = r.cfg.MaxRuns
	}
	return target
}

func (r *Runner) event(job *model.BenchmarkJob, phase model.RunPhase, iteration, targetRuns int, samples []model.TimingSample) model.ProgressEvent {
	wall := make([]float64, len(samples))
	for i, s := range samples {
		wall[i] = s.Wall.Seconds()
	}
	d := stats.Describe(wall)
	mean := time.Duration(d.Mean * float64(time.Second))
	stddev := time.Duration(d.StdDev * float64(time.Second))

	var eta time.Duration
	if remaining := targetRuns - iteration; remaining > 0 {
		eta = mean * time.Duration(remaining)
	}

	return model.ProgressEvent{
		JobIndex:      job.Index,
		Benchmark:     job.DisplayName,
		Phase:         phase,
		Iteration:     iteration,
		TotalRuns:     targetRuns,
		RunningMean:   mean,
		RunningStdDev: stddev,
		ETA:           eta,
	}
}

func isHookFailure(err error) bool {
	be, ok := err.(*bmerrors.BenchmarkError)
	if !ok {
		return false
	}
	return be.Kind == bmerrors.KindPrepareFailed || be.Kind == bmerrors.KindConcludeFailed
}

func appendWarning(warnings []string, w string) []string {
	if w == "" {
		return warnings
	}
	return append(warnings, w)
}

func appendWarningText(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "; " + addition
}

// randomOffsetMaxLen bounds the length of the padding string injected via
// HYPERFINE_RANDOMIZED_ENVIRONMENT_OFFSET, meant to perturb the child's
// initial stack/environment memory layout across iterations.
const randomOffsetMaxLen = 4096

const offsetAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var bigRandomOffsetMaxLen = big.NewInt(randomOffsetMaxLen + 1)

func randomOffset() string {
	n, err := rand.Int(rand.Reader, bigRandomOffsetMaxLen)
	if err != nil {
		return ""
	}
	length := int(n.Int64())

	buf := make([]byte, length)
	idx := make([]byte, length)
	if _, err := rand.Read(idx); err != nil {
		return ""
	}
	for i, b := range idx {
		buf[i] = offsetAlphabet[int(b)%len(offsetAlphabet)]
	}
	return string(buf)
}
