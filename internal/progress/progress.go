// Package progress is the thin rendering adapter spec §1 calls for:
// "colorized progress rendering... is a thin adapter" over the engine's
// progress events. The Runner never imports this package or any color
// library; it only calls a func(model.ProgressEvent). The Scheduler holds a
// *Renderer and forwards events and warnings to it, without importing a
// color library itself.
package progress

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/swiftbench/swiftbench/internal/model"
)

// Style selects how progress is rendered.
type Style string

const (
	StyleAuto  Style = "auto"
	StyleBasic Style = "basic"
	StyleFull  Style = "full"
	StyleColor Style = "color"
	StyleNone  Style = "none"
)

var (
	benchmarkColor = color.New(color.FgCyan, color.Bold)
	meanColor      = color.New(color.FgGreen)
	etaColor       = color.New(color.FgYellow)
	warnColor      = color.New(color.FgRed)
)

// Renderer turns progress events and warnings into text on w. It holds no
// state that outlives a single run.
type Renderer struct {
	w     io.Writer
	style Style
}

// New builds a Renderer. StyleAuto behaves like StyleFull. Whether color
// codes are emitted is decided by fatih/color's global color.NoColor
// setting, which the library derives from standard output (not from w).
func New(w io.Writer, style Style) *Renderer {
	return &Renderer{w: w, style: style}
}

// Render handles one progress event per the configured style.
func (r *Renderer) Render(e model.ProgressEvent) {
	switch r.style {
	case StyleNone:
		return
	case StyleBasic:
		r.renderBasic(e)
	case StyleColor:
		r.renderFull(e, true)
	default: // StyleAuto, StyleFull
		r.renderFull(e, r.style == StyleFull || r.style == StyleAuto)
	}
}

func (r *Renderer) renderBasic(e model.ProgressEvent) {
	fmt.Fprintf(r.w, "%s: %d/%d\n", e.Benchmark, e.Iteration, e.TotalRuns)
}

func (r *Renderer) renderFull(e model.ProgressEvent, colorize bool) {
	if !colorize {
		prev := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = prev }()
	}
	benchmarkColor.Fprintf(r.w, "%s", e.Benchmark)
	fmt.Fprintf(r.w, "  [%d/%d]  ", e.Iteration, e.TotalRuns)
	meanColor.Fprintf(r.w, "mean %s ± %s", e.RunningMean, e.RunningStdDev)
	if e.ETA > 0 {
		fmt.Fprint(r.w, "  ")
		etaColor.Fprintf(r.w, "ETA %s", e.ETA)
	}
	fmt.Fprintln(r.w)
}

// Warn prints an advisory warning line (outlier flags, ignored failures).
// Warnings are never suppressed by StyleNone for the same reason hyperfine
// itself keeps warnings visible regardless of --style: they flag results
// the user should distrust.
func (r *Renderer) Warn(benchmark, message string) {
	warnColor.Fprintf(r.w, "Warning: %s: %s\n", benchmark, message)
}
