// Package scheduler drives one full benchmarking run: global setup,
// per-job dispatch to internal/runner, incremental export, and global
// cleanup, with graceful teardown on context cancellation.
package scheduler
