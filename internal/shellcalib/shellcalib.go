// Package shellcalib is the Shell-Calibrator leaf (spec §4.2): it estimates
// the mean and standard deviation of an empty-command run through the
// configured shell, once per shell configuration, and hands back a constant
// overhead subtracted from subsequent measurements. Subtracting a constant
// estimate rather than a per-sample one avoids coupling noise between
// calibration and the benchmark, per spec's design rationale.
package shellcalib

import (
	"context"
	"fmt"

	"github.com/swiftbench/swiftbench/internal/executor"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/stats"
)

// Overhead is the calibrated shell-startup cost for one shell configuration.
type Overhead struct {
	MeanWall   float64 // seconds
	StdDevWall float64 // seconds
}

// Calibrator runs and caches shell overhead estimates.
type Calibrator struct {
	exec  *executor.Executor
	cache map[string]Overhead
}

// New creates a Calibrator backed by the given Executor.
func New(exec *executor.Executor) *Calibrator {
	return &Calibrator{exec: exec, cache: make(map[string]Overhead)}
}

// Calibrate estimates the overhead of invoking shell with an empty command,
// running it `samples` times. Results are cached per shell for the lifetime
// of the Calibrator (i.e. for the lifetime of one run).
func (c *Calibrator) Calibrate(ctx context.Context, shell, shellFlag string, samples int) (Overhead, error) {
	if o, ok := c.cache[shell]; ok {
		return o, nil
	}

	if samples <= 0 {
		samples = 50
	}

	walls := make([]float64, 0, samples)
	for i := 0; i < samples; i++ {
		res, err := c.exec.Execute(ctx, executor.Spec{
			Shell:     shell,
			ShellFlag: shellFlag,
			Command:   "",
			Input:     model.InputPolicy{Kind: model.InputInherit},
			Output:    model.OutputPolicy{Kind: model.OutputDiscard},
		})
		if err != nil {
			return Overhead{}, fmt.Errorf("calibrating shell %q: %w", shell, err)
		}
		walls = append(walls, float64(res.Wall)/1e9)
	}

	desc := stats.Describe(walls)
	o := Overhead{MeanWall: desc.Mean, StdDevWall: desc.StdDev}
	c.cache[shell] = o
	return o, nil
}

// Zero is the overhead value used in no-shell mode, where calibration is
// skipped entirely.
var Zero = Overhead{}
