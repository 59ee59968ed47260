package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/swiftbench/swiftbench/internal/model"
)

// RenderConsoleSummary prints a plain-text comparison table, the console
// counterpart of the Markdown/AsciiDoc/org-mode exporters. It is not itself
// an Exporter (it is not configured via --export-*) — the CLI calls it
// directly after a run completes.
func RenderConsoleSummary(results []*model.BenchmarkResult, meta model.RunMetadata, w io.Writer) {
	rows := buildTable(results, meta)
	if len(rows) == 0 {
		return
	}

	widths := []int{len("Command"), len("Mean"), len("Min"), len("Max"), len("Relative"), len("Significance")}
	for _, r := range rows {
		widths[0] = max(widths[0], len(r.Command))
		widths[1] = max(widths[1], len(r.MeanText))
		widths[2] = max(widths[2], len(r.Min))
		widths[3] = max(widths[3], len(r.Max))
		widths[4] = max(widths[4], len(r.Relative))
		widths[5] = max(widths[5], len(r.Significance))
	}

	fmt.Fprintln(w)
	printRow(w, widths, "Command", "Mean", "Min", "Max", "Relative", "Significance")
	fmt.Fprintln(w, strings.Repeat("-", sum(widths)+3*len(widths)))
	for _, r := range rows {
		if r.Failed {
			printRow(w, widths, r.Command, r.MeanText, "", "", "", "")
			continue
		}
		printRow(w, widths, r.Command, r.MeanText, r.Min, r.Max, r.Relative, r.Significance)
	}
	fmt.Fprintln(w)
}

func printRow(w io.Writer, widths []int, cols ...string) {
	for i, c := range cols {
		fmt.Fprintf(w, "%-*s   ", widths[i], c)
	}
	fmt.Fprintln(w)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sum(xs []int) int {
	var s int
	for _, x := range xs {
		s += x
	}
	return s
}
