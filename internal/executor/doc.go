// Package executor spawns and times a single child process per spec §4.1.
//
// A Spec is either a shell invocation (Shell + ShellFlag + Command, e.g.
// "/bin/sh -c '<command>'") or a directly-spawned argv vector (NoShell).
// Execute records a monotonic instant immediately before Start and
// immediately after Wait (and, in pipe-and-drain output mode, after the
// drain goroutine has joined), then reads the child's accumulated user/system
// CPU time from the OS via os.ProcessState.
package executor
