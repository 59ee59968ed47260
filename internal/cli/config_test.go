package cli

import (
	"testing"

	"github.com/swiftbench/swiftbench/internal/model"
)

func TestBuildPlan_RequiresAtLeastOneCommand(t *testing.T) {
	_, err := buildPlan(flags{}, nil)
	if err == nil {
		t.Fatal("expected a ConfigError with no commands")
	}
}

func TestBuildPlan_RejectsNegativeRunCounts(t *testing.T) {
	fl := flags{runs: -1}
	_, err := buildPlan(fl, []string{"true"})
	if err == nil {
		t.Fatal("expected a ConfigError for negative --runs")
	}
}

func TestBuildPlan_RejectsMinRunsAboveMaxRuns(t *testing.T) {
	fl := flags{minRuns: 20, maxRuns: 10}
	_, err := buildPlan(fl, []string{"true"})
	if err == nil {
		t.Fatal("expected a ConfigError when --min-runs exceeds --max-runs")
	}
}

func TestBuildPlan_OneJobPerCommandWithNoParameters(t *testing.T) {
	fl := flags{minRuns: 10}
	plan, err := buildPlan(fl, []string{"true", "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(plan.Jobs))
	}
}

func TestBuildPlan_ParameterListExpandsJobs(t *testing.T) {
	fl := flags{minRuns: 10, parameterList: []string{"n 1,2,3"}}
	plan, err := buildPlan(fl, []string{"echo {n}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Jobs) != 3 {
		t.Fatalf("expected 3 jobs from a 3-value parameter list, got %d", len(plan.Jobs))
	}
}

func TestBuildPlan_ParameterScanRequiresThreeFields(t *testing.T) {
	fl := flags{minRuns: 10, parameterScan: []string{"n 1"}}
	_, err := buildPlan(fl, []string{"echo {n}"})
	if err == nil {
		t.Fatal("expected a ConfigError for a malformed parameter scan")
	}
}

func TestBuildPlan_ParameterScanWithStepSize(t *testing.T) {
	fl := flags{minRuns: 10, parameterScan: []string{"n 0 1"}, parameterStep: []float64{0.5}}
	plan, err := buildPlan(fl, []string{"echo {n}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Jobs) != 3 {
		t.Fatalf("expected 3 jobs (0, 0.5, 1), got %d", len(plan.Jobs))
	}
}

func TestBuildPlan_PrepareCountMustMatchCommandsOrBeOne(t *testing.T) {
	fl := flags{minRuns: 10, prepare: []string{"a", "b"}}
	_, err := buildPlan(fl, []string{"true", "false", "echo hi"})
	if err == nil {
		t.Fatal("expected a ConfigError when --prepare count matches neither 1 nor the command count")
	}
}

func TestBuildPlan_PrepareBroadcastToAllCommands(t *testing.T) {
	fl := flags{minRuns: 10, prepare: []string{"warm-cache"}}
	plan, err := buildPlan(fl, []string{"true", "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, j := range plan.Jobs {
		if j.Prepare != "warm-cache" {
			t.Errorf("expected every job to inherit the single --prepare command, got %q", j.Prepare)
		}
	}
}

func TestBuildPlan_PrepareOnePerCommand(t *testing.T) {
	fl := flags{minRuns: 10, prepare: []string{"a", "b"}}
	plan, err := buildPlan(fl, []string{"true", "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Jobs[0].Prepare != "a" || plan.Jobs[1].Prepare != "b" {
		t.Errorf("expected per-command prepare commands in order, got %q, %q", plan.Jobs[0].Prepare, plan.Jobs[1].Prepare)
	}
}

func TestBuildPlan_OutputDefaultsToDiscard(t *testing.T) {
	fl := flags{minRuns: 10}
	plan, err := buildPlan(fl, []string{"true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Jobs[0].Output.Kind != model.OutputDiscard {
		t.Errorf("expected default output policy to discard, got %v", plan.Jobs[0].Output.Kind)
	}
}

func TestBuildPlan_InputDefaultsToNull(t *testing.T) {
	fl := flags{minRuns: 10}
	plan, err := buildPlan(fl, []string{"true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Jobs[0].Input.Kind != model.InputNull {
		t.Errorf("expected default input policy to be null, got %v", plan.Jobs[0].Input.Kind)
	}
}

func TestBuildPlan_RejectsUnknownTimeUnit(t *testing.T) {
	fl := flags{minRuns: 10, timeUnit: "nanofortnight"}
	_, err := buildPlan(fl, []string{"true"})
	if err == nil {
		t.Fatal("expected a ConfigError for an unrecognized --time-unit")
	}
}

func TestBuildPlan_ShellNoneEnablesNoShellMode(t *testing.T) {
	fl := flags{minRuns: 10, shell: "none"}
	plan, err := buildPlan(fl, []string{"true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.SchedulerCfg.NoShell {
		t.Error("expected --shell none to enable no-shell mode")
	}
}

func TestBuildPlan_StdoutExportsSeparatedFromFileExports(t *testing.T) {
	fl := flags{minRuns: 10, exportJSON: "-", exportCSV: "out.csv"}
	plan, err := buildPlan(fl, []string{"true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.StdoutExports) != 1 {
		t.Fatalf("expected 1 stdout export target, got %d", len(plan.StdoutExports))
	}
	if len(plan.SchedulerCfg.ExportTargets) != 1 {
		t.Fatalf("expected 1 file export target, got %d", len(plan.SchedulerCfg.ExportTargets))
	}
}
