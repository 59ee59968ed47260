package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/swiftbench/swiftbench/internal/export"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/runner"
)

func newJob(index int, command string) *model.BenchmarkJob {
	return &model.BenchmarkJob{
		Index:       index,
		Command:     command,
		DisplayName: command,
		Input:       model.InputPolicy{Kind: model.InputNull},
		Output:      model.OutputPolicy{Kind: model.OutputDiscard},
	}
}

func TestScheduler_RunsJobsInOrder(t *testing.T) {
	cfg := Config{
		Shell:     "/bin/sh",
		ShellFlag: "-c",
		RunnerConfig: runner.Config{
			ExactRuns: 2,
		},
	}
	s := New(cfg, nil)

	jobs := []*model.BenchmarkJob{newJob(0, "true"), newJob(1, "true")}
	results, err := s.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Job.Index != i {
			t.Errorf("expected job order preserved, result %d has job index %d", i, r.Job.Index)
		}
	}
}

func TestScheduler_FailingJobDoesNotStopSubsequentJobs(t *testing.T) {
	cfg := Config{
		Shell:     "/bin/sh",
		ShellFlag: "-c",
		RunnerConfig: runner.Config{
			ExactRuns: 2,
		},
	}
	s := New(cfg, nil)

	jobs := []*model.BenchmarkJob{newJob(0, "exit 9"), newJob(1, "true")}
	results, err := s.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results even though the first job failed, got %d", len(results))
	}
	if !results[0].Failed {
		t.Error("expected the first job to be marked failed")
	}
	if results[1].Failed {
		t.Error("expected the second job to still succeed")
	}
}

func TestScheduler_SetupFailure_AbortsRun(t *testing.T) {
	cfg := Config{
		Shell:        "/bin/sh",
		ShellFlag:    "-c",
		SetupCommand: "exit 1",
		RunnerConfig: runner.Config{ExactRuns: 1},
	}
	s := New(cfg, nil)

	_, err := s.Run(context.Background(), []*model.BenchmarkJob{newJob(0, "true")})
	if err == nil {
		t.Fatal("expected SetupFailed error to abort the run")
	}
}

func TestScheduler_CleanupRunsEvenAfterJobFailure(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "cleaned")

	cfg := Config{
		Shell:          "/bin/sh",
		ShellFlag:      "-c",
		CleanupCommand: "touch " + marker,
		RunnerConfig:   runner.Config{ExactRuns: 1},
	}
	s := New(cfg, nil)

	_, err := s.Run(context.Background(), []*model.BenchmarkJob{newJob(0, "exit 3")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Errorf("expected cleanup command to have run, marker file missing: %v", statErr)
	}
}

func TestScheduler_IncrementalExport_WritesAfterEachJob(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")

	cfg := Config{
		Shell:     "/bin/sh",
		ShellFlag: "-c",
		RunnerConfig: runner.Config{
			ExactRuns: 1,
		},
		ExportTargets: []ExportTarget{
			{Exporter: export.JSONExporter{}, Path: jsonPath},
		},
	}
	s := New(cfg, nil)

	jobs := []*model.BenchmarkJob{newJob(0, "true"), newJob(1, "true")}
	if _, err := s.Run(context.Background(), jobs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("expected export file to exist: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty export file")
	}
}

func TestScheduler_ContextCancellation_StopsBeforeRemainingJobs(t *testing.T) {
	cfg := Config{
		Shell:     "/bin/sh",
		ShellFlag: "-c",
		RunnerConfig: runner.Config{
			ExactRuns: 1,
		},
	}
	s := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []*model.BenchmarkJob{newJob(0, "true"), newJob(1, "true")}
	results, err := s.Run(ctx, jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no jobs to run with an already-canceled context, got %d", len(results))
	}
}
