// Package timing is the Clock & Timer leaf: monotonic wall-clock instants and
// per-child CPU time retrieval after process reap.
//
// Child user/system CPU time comes straight from os.ProcessState, which
// already surfaces the OS rusage values this engine needs — no repo in the
// retrieval pack wraps that in a third-party library, so this corner of the
// engine is stdlib by necessity rather than by default.
package timing

import (
	"os"
	"time"
)

// Now returns a monotonic instant suitable for wall-clock measurement.
// time.Now() on Go already carries a monotonic reading alongside the wall
// clock; Sub between two such instants uses it automatically.
func Now() time.Time {
	return time.Now()
}

// CPUTimes holds a child process's accumulated user/system time as reported
// by the OS at reap time. A child that forks grandchildren contributes only
// its own CPU time — that is the OS default and this package does not alter it.
type CPUTimes struct {
	User   time.Duration
	System time.Duration
}

// FromProcessState extracts CPU times from a waited-on process. Safe to call
// with a nil state (returns the zero value), which happens when the process
// never started.
func FromProcessState(state *os.ProcessState) CPUTimes {
	if state == nil {
		return CPUTimes{}
	}
	return CPUTimes{
		User:   state.UserTime(),
		System: state.SystemTime(),
	}
}
