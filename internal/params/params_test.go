package params

import (
	"testing"

	"github.com/swiftbench/swiftbench/internal/model"
)

func TestListSource_SplitsAndTrims(t *testing.T) {
	src := ListSource("shell", "bash, zsh,fish")
	want := []string{"bash", "zsh", "fish"}
	if len(src.Values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(src.Values))
	}
	for i, v := range want {
		if src.Values[i] != v {
			t.Errorf("value %d: expected %q, got %q", i, v, src.Values[i])
		}
	}
}

func TestScanSource_IntegerStep(t *testing.T) {
	src, err := ScanSource("n", 1, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "2", "3", "4", "5"}
	if len(src.Values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), src.Values)
	}
	for i, v := range want {
		if src.Values[i] != v {
			t.Errorf("value %d: expected %q, got %q", i, v, src.Values[i])
		}
	}
}

func TestScanSource_DecimalStep(t *testing.T) {
	src, err := ScanSource("x", 0, 1, 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0.00", "0.25", "0.50", "0.75", "1.00"}
	if len(src.Values) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), src.Values)
	}
	for i, v := range want {
		if src.Values[i] != v {
			t.Errorf("value %d: expected %q, got %q", i, v, src.Values[i])
		}
	}
}

func TestScanSource_RejectsZeroStep(t *testing.T) {
	if _, err := ScanSource("n", 0, 10, 0); err == nil {
		t.Fatal("expected error for zero step")
	}
}

func TestScanSource_RejectsMaxBelowMin(t *testing.T) {
	if _, err := ScanSource("n", 10, 1, 1); err == nil {
		t.Fatal("expected error for max < min")
	}
}

func TestExpand_NoSources_OneJobPerCommand(t *testing.T) {
	commands := []model.CommandTemplate{{Raw: "echo a"}, {Raw: "echo b"}}
	jobs := Expand(commands, nil, "")
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].DisplayName != "echo a" || jobs[1].DisplayName != "echo b" {
		t.Errorf("expected display names to fall back to substituted command, got %q %q", jobs[0].DisplayName, jobs[1].DisplayName)
	}
}

func TestExpand_CartesianProduct_CommandIndexOutermost(t *testing.T) {
	commands := []model.CommandTemplate{{Raw: "cmdA {n}"}, {Raw: "cmdB {n}"}}
	sources := []Source{{Name: "n", Values: []string{"1", "2"}}}

	jobs := Expand(commands, sources, "")
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs (2 commands x 2 values), got %d", len(jobs))
	}

	want := []string{"cmdA 1", "cmdA 2", "cmdB 1", "cmdB 2"}
	for i, w := range want {
		if jobs[i].Command != w {
			t.Errorf("job %d: expected command %q, got %q", i, w, jobs[i].Command)
		}
	}
	if jobs[0].CommandIndex != 0 || jobs[2].CommandIndex != 1 {
		t.Errorf("expected command index grouping, got %+v", jobs)
	}
}

func TestExpand_MultiSourceProduct(t *testing.T) {
	commands := []model.CommandTemplate{{Raw: "cmd {a} {b}"}}
	sources := []Source{
		{Name: "a", Values: []string{"x", "y"}},
		{Name: "b", Values: []string{"1", "2"}},
	}
	jobs := Expand(commands, sources, "")
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}
	want := []string{"cmd x 1", "cmd x 2", "cmd y 1", "cmd y 2"}
	for i, w := range want {
		if jobs[i].Command != w {
			t.Errorf("job %d: expected %q, got %q", i, w, jobs[i].Command)
		}
	}
}

func TestExpand_CommandNameTemplate(t *testing.T) {
	commands := []model.CommandTemplate{{Raw: "sleep {n}"}}
	sources := []Source{{Name: "n", Values: []string{"1"}}}
	jobs := Expand(commands, sources, "sleeping for {n}s")
	if jobs[0].DisplayName != "sleeping for 1s" {
		t.Errorf("expected custom display name, got %q", jobs[0].DisplayName)
	}
}

func TestValidateUniqueNames_RejectsDuplicates(t *testing.T) {
	sources := []Source{{Name: "n"}, {Name: "n"}}
	if err := ValidateUniqueNames(sources); err == nil {
		t.Fatal("expected error for duplicate parameter names")
	}
}

func TestValidateUniqueNames_AllowsDistinct(t *testing.T) {
	sources := []Source{{Name: "a"}, {Name: "b"}}
	if err := ValidateUniqueNames(sources); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
