// Package bmerrors defines the tagged error variants the engine can raise,
// following the concrete-struct-implementing-error shape of
// internal/parser.ParseError in the teacher repo, generalized to the full
// kind list the benchmarking engine needs.
package bmerrors

import "fmt"

// Kind identifies which of spec §7's error kinds a BenchmarkError carries.
type Kind int

const (
	KindSpawnFailed Kind = iota
	KindNonZeroExit
	KindSignalTerminated
	KindPrepareFailed
	KindConcludeFailed
	KindSetupFailed
	KindCleanupFailed
	KindExportFailed
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindSpawnFailed:
		return "spawn failed"
	case KindNonZeroExit:
		return "non-zero exit"
	case KindSignalTerminated:
		return "signal terminated"
	case KindPrepareFailed:
		return "prepare failed"
	case KindConcludeFailed:
		return "conclude failed"
	case KindSetupFailed:
		return "setup failed"
	case KindCleanupFailed:
		return "cleanup failed"
	case KindExportFailed:
		return "export failed"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// BenchmarkError is raised by the Runner or Scheduler. It names the
// benchmark (display name) and, when relevant, the iteration on which the
// failure occurred; run-level errors such as SetupFailed and CleanupFailed
// carry no benchmark name.
type BenchmarkError struct {
	Kind      Kind
	Benchmark string
	Iteration int // 0 when not applicable (e.g. SetupFailed, CleanupFailed)
	Code      int
	Signal    string
	Err       error
}

func (e *BenchmarkError) Error() string {
	switch {
	case e.Iteration > 0:
		return fmt.Sprintf("%s: benchmark %q failed on iteration %d: %s", e.Kind, e.Benchmark, e.Iteration, e.detail())
	case e.Benchmark != "":
		return fmt.Sprintf("%s: benchmark %q: %s", e.Kind, e.Benchmark, e.detail())
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.detail())
	}
}

func (e *BenchmarkError) detail() string {
	switch e.Kind {
	case KindNonZeroExit:
		return fmt.Sprintf("exit code %d", e.Code)
	case KindSignalTerminated:
		return fmt.Sprintf("terminated by signal %s", e.Signal)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "no further detail"
	}
}

func (e *BenchmarkError) Unwrap() error { return e.Err }

// ConfigError reports invalid flag combinations, discovered before any
// benchmark runs (spec §7: ConfigError is reported before any benchmarks run
// and exits non-zero).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "invalid configuration: " + e.Msg }

// NewConfigError builds a ConfigError from a format string, mirroring the
// fmt.Errorf convention used everywhere else in this module.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
