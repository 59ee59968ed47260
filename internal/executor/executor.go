// Package executor is the Command Executor leaf (spec §4.1): it spawns a
// child, optionally through an intermediate shell, wires its standard
// streams, waits for exit, and returns wall/user/system time plus exit
// status. Concurrent pipe draining follows the worker-pool style of the
// teacher's internal/executor.DefaultExecutor, narrowed to the single
// in-flight child this engine's single-threaded scheduling model requires
// (spec §5: benchmarks and samples run strictly in order).
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/timing"
)

// Spec describes one child invocation.
type Spec struct {
	// Shell is the shell binary to invoke Command through. Ignored when
	// NoShell is true.
	Shell     string
	ShellFlag string // "-c" on POSIX shells, "/C" on cmd.exe

	// Command is the shell command-line string (shell mode).
	Command string

	// Argv is used directly when NoShell is true; Argv[0] is the program.
	Argv    []string
	NoShell bool

	Input  model.InputPolicy
	Output model.OutputPolicy

	// Env holds additional environment variables merged over the
	// inherited environment; later entries win on key collision.
	Env map[string]string
}

// Result is the Executor's output for one completed child run.
type Result struct {
	Wall, User, System int64 // nanoseconds
	Exit               model.ExitStatus
}

// Executor spawns children per Spec and measures their execution.
type Executor struct{}

// New creates a new Executor.
func New() *Executor {
	return &Executor{}
}

// Execute runs one child to completion and returns its timing sample.
func (e *Executor) Execute(ctx context.Context, spec Spec) (*Result, error) {
	cmd := e.build(ctx, spec)

	stdin, closeStdin, err := openInput(spec.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer closeStdin()
	cmd.Stdin = stdin

	stdoutSink, closeStdout, drain, err := openOutput(spec.Output)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	defer closeStdout()

	var pipeWriter *io.PipeWriter
	var wg sync.WaitGroup
	if drain {
		pr, pw := io.Pipe()
		pipeWriter = pw
		cmd.Stdout = pw
		cmd.Stderr = pw
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = io.Copy(io.Discard, pr)
			_ = pr.Close()
		}()
	} else {
		cmd.Stdout = stdoutSink
		cmd.Stderr = stdoutSink
	}

	start := timing.Now()
	if startErr := cmd.Start(); startErr != nil {
		if pipeWriter != nil {
			_ = pipeWriter.Close()
			wg.Wait()
		}
		return nil, &bmerrors.BenchmarkError{Kind: bmerrors.KindSpawnFailed, Err: startErr}
	}

	waitErr := cmd.Wait()

	// The drain goroutine must finish before we record the wall-time
	// instant (spec §4.1: "the wall-time instant is captured only after
	// both join, to avoid blocking on buffers").
	if pipeWriter != nil {
		_ = pipeWriter.Close()
		wg.Wait()
	}
	end := timing.Now()

	cpu := timing.FromProcessState(cmd.ProcessState)
	res := &Result{
		Wall:   end.Sub(start).Nanoseconds(),
		User:   cpu.User.Nanoseconds(),
		System: cpu.System.Nanoseconds(),
		Exit:   classifyExit(cmd.ProcessState),
	}

	if waitErr != nil {
		if _, isExitErr := waitErr.(*exec.ExitError); !isExitErr {
			return res, &bmerrors.BenchmarkError{Kind: bmerrors.KindSpawnFailed, Err: waitErr}
		}
	}

	return res, nil
}

func (e *Executor) build(ctx context.Context, spec Spec) *exec.Cmd {
	var cmd *exec.Cmd
	if spec.NoShell {
		cmd = exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	} else {
		cmd = exec.CommandContext(ctx, spec.Shell, spec.ShellFlag, spec.Command)
	}

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	return cmd
}

// openInput resolves an InputPolicy into a reader for cmd.Stdin.
func openInput(p model.InputPolicy) (io.Reader, func(), error) {
	switch p.Kind {
	case model.InputNull:
		f, err := os.Open(os.DevNull)
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() { _ = f.Close() }, nil
	case model.InputFile:
		f, err := os.Open(p.Path)
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() { _ = f.Close() }, nil
	default: // InputInherit
		return os.Stdin, func() {}, nil
	}
}

// openOutput resolves an OutputPolicy into a writer for cmd.Stdout/Stderr.
// The third return value indicates pipe-and-drain mode, which the caller
// wires up itself because it needs concurrent draining before the wait
// completes.
func openOutput(p model.OutputPolicy) (io.Writer, func(), bool, error) {
	switch p.Kind {
	case model.OutputInherit:
		return os.Stdout, func() {}, false, nil
	case model.OutputFile:
		f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, func() {}, false, err
		}
		return f, func() { _ = f.Close() }, false, nil
	case model.OutputPipe:
		return nil, func() {}, true, nil
	default: // OutputDiscard
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, func() {}, false, err
		}
		return f, func() { _ = f.Close() }, false, nil
	}
}

func classifyExit(state *os.ProcessState) model.ExitStatus {
	if state == nil {
		return model.ExitStatus{Code: -1}
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return model.ExitStatus{Signaled: true, Signal: status.Signal().String(), Code: -1}
	}
	return model.ExitStatus{Code: state.ExitCode()}
}
