// Package scheduler is the Scheduler leaf (spec §4.5): it runs global
// setup/cleanup, iterates the expanded job list through the Runner, writes
// incremental exports after each benchmark, and assembles the final ordered
// result list. It owns the only top-level loop over benchmarks; everything
// inside one benchmark is the Runner's concern.
package scheduler

import (
	"context"
	"fmt"
	"os"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/executor"
	"github.com/swiftbench/swiftbench/internal/export"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/progress"
	"github.com/swiftbench/swiftbench/internal/runner"
	"github.com/swiftbench/swiftbench/internal/shellcalib"
)

// ExportTarget pairs a configured Exporter with the file path (or "-" for
// standard output) it writes to.
type ExportTarget struct {
	Exporter export.Exporter
	Path     string
}

// Config carries the run-wide settings the Scheduler needs beyond what each
// job's Runner uses directly.
type Config struct {
	SetupCommand   string
	CleanupCommand string
	Shell          string
	ShellFlag      string
	NoShell        bool
	RunnerConfig   runner.Config
	Metadata       model.RunMetadata
	ExportTargets  []ExportTarget
}

// Scheduler drives a full run: one or more jobs through the Runner, in
// order, with global setup/cleanup and incremental export around them.
type Scheduler struct {
	exec       *executor.Executor
	calibrator *shellcalib.Calibrator
	cfg        Config
	renderer   *progress.Renderer
}

// New builds a Scheduler. renderer may be nil, in which case progress events
// and warnings are both silently dropped.
func New(cfg Config, renderer *progress.Renderer) *Scheduler {
	exec := executor.New()
	return &Scheduler{
		exec:       exec,
		calibrator: shellcalib.New(exec),
		cfg:        cfg,
		renderer:   renderer,
	}
}

// Run executes every job in order and returns the accumulated results.
// Cleanup runs after the job loop even when a job fails or the context is
// canceled partway through. A setup failure returns at once, before any job
// and before cleanup.
func (s *Scheduler) Run(ctx context.Context, jobs []*model.BenchmarkJob) ([]*model.BenchmarkResult, error) {
	if s.cfg.SetupCommand != "" {
		if err := s.runHook(ctx, s.cfg.SetupCommand); err != nil {
			return nil, &bmerrors.BenchmarkError{Kind: bmerrors.KindSetupFailed, Err: err}
		}
	}

	results := make([]*model.BenchmarkResult, 0, len(jobs))

	overhead := shellcalib.Zero
	if !s.cfg.NoShell {
		o, err := s.calibrator.Calibrate(ctx, s.cfg.Shell, s.cfg.ShellFlag, 0)
		if err == nil {
			overhead = o
		}
		// A calibration failure is not fatal to the run: it degrades to
		// uncorrected wall times, which is strictly safer than aborting.
	}

	runnerCfg := s.cfg.RunnerConfig
	runnerCfg.Shell = s.cfg.Shell
	runnerCfg.ShellFlag = s.cfg.ShellFlag
	runnerCfg.NoShell = s.cfg.NoShell

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		r := runner.New(s.exec, overhead, runnerCfg)
		sink := s.progressSink(job, len(jobs))

		res, err := r.Run(ctx, job, sink)
		if err != nil {
			res = &model.BenchmarkResult{Job: job, Failed: true, FailureReason: err.Error()}
			if s.renderer != nil {
				s.renderer.Warn(job.DisplayName, err.Error())
			}
		}
		results = append(results, res)

		if s.renderer != nil {
			for _, w := range res.Warnings {
				s.renderer.Warn(job.DisplayName, w)
			}
		}

		if err := s.exportIncremental(results); err != nil {
			cleanupErr := s.runCleanup(ctx)
			return results, fmt.Errorf("incremental export: %w: %v", err, cleanupErr)
		}
	}

	if err := s.runCleanup(ctx); err != nil {
		return results, err
	}

	return results, nil
}

func (s *Scheduler) runCleanup(ctx context.Context) error {
	if s.cfg.CleanupCommand == "" {
		return nil
	}
	// Detached from cancellation: a canceled context would refuse to start
	// the cleanup command.
	if err := s.runHook(context.WithoutCancel(ctx), s.cfg.CleanupCommand); err != nil {
		return &bmerrors.BenchmarkError{Kind: bmerrors.KindCleanupFailed, Err: err}
	}
	return nil
}

func (s *Scheduler) runHook(ctx context.Context, command string) error {
	spec := executor.Spec{
		Input:  model.InputPolicy{Kind: model.InputInherit},
		Output: model.OutputPolicy{Kind: model.OutputInherit},
	}
	if s.cfg.NoShell {
		spec.NoShell = true
		spec.Argv = []string{command}
	} else {
		spec.Shell = s.cfg.Shell
		spec.ShellFlag = s.cfg.ShellFlag
		spec.Command = command
	}

	res, err := s.exec.Execute(ctx, spec)
	if err != nil {
		return err
	}
	if !res.Exit.Success() {
		return fmt.Errorf("hook command %q exited with code %d", command, res.Exit.Code)
	}
	return nil
}

func (s *Scheduler) progressSink(job *model.BenchmarkJob, totalJobs int) func(model.ProgressEvent) {
	if s.renderer == nil {
		return nil
	}
	return func(e model.ProgressEvent) {
		e.TotalJobs = totalJobs
		s.renderer.Render(e)
	}
}

// exportIncremental rewrites every configured export target after each
// completed benchmark, so a partial run leaves usable output (spec §4.5).
// Spec §4.5 permits (but does not require) the CSV format to append rows
// instead; this Scheduler always does a full rewrite, which every format
// tolerates and keeps the flush logic uniform.
func (s *Scheduler) exportIncremental(results []*model.BenchmarkResult) error {
	for _, target := range s.cfg.ExportTargets {
		if err := writeExport(target, results, s.cfg.Metadata); err != nil {
			return fmt.Errorf("writing %s export: %w", target.Path, err)
		}
	}
	return nil
}

func writeExport(target ExportTarget, results []*model.BenchmarkResult, meta model.RunMetadata) error {
	if target.Path == "-" {
		// Standard output is suppressed for intermediate flushes to avoid
		// interleaving; only the final call (the Scheduler's caller, after
		// Run returns) writes to "-".
		return nil
	}

	f, err := os.OpenFile(target.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return target.Exporter.Write(results, meta, f)
}
