package export

import (
	"fmt"

	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/stats"
)

// tableRow is the shared rendering of one benchmark across the
// text-table exporters (Markdown, AsciiDoc, org-mode, console).
type tableRow struct {
	Command      string
	MeanText     string // "123.4 ms ± 5.6 ms" or "123.4 ms" when stddev is undefined
	Min          string
	Max          string
	Relative     string // "1.00" for the reference, "2.34 ± 0.12" otherwise
	Significance string // "reference", "likely noise", or "likely real"
	IsReference  bool
	Failed       bool
}

// buildTable reduces results into display rows, applying the configured
// sort order and time unit and attaching the pairwise comparison column.
func buildTable(results []*model.BenchmarkResult, meta model.RunMetadata) []tableRow {
	unit := SelectUnit(results, meta.TimeUnit)
	label := unitLabel(unit)

	ok := make([]*model.BenchmarkResult, 0, len(results))
	for _, r := range results {
		if !r.Failed {
			ok = append(ok, r)
		}
	}

	summaries := stats.SummarizeResults(ok)
	comparisons := stats.Compare(summaries, meta.ReferenceName)
	order := stats.SortSummaries(summaries, meta.SortOrder)
	refIdx := stats.SelectReference(summaries, meta.ReferenceName)

	rows := make([]tableRow, 0, len(results))
	for _, idx := range order {
		r := ok[idx]
		c := comparisons[idx]

		mean := scaled(r.Stats.Mean, unit)
		meanText := fmt.Sprintf("%.1f %s", mean, label)
		if r.Stats.HasStdDev {
			meanText = fmt.Sprintf("%.1f %s ± %.1f %s", mean, label, scaled(r.Stats.StdDev, unit), label)
		}

		relative := "1.00"
		significance := "reference"
		if !c.IsReference {
			relative = fmt.Sprintf("%.2f ± %.2f", c.Ratio, c.RatioStdDev)
			significance = "likely noise"
			if stats.Significance(summaries[refIdx], summaries[idx]) <= stats.SignificanceThreshold {
				significance = "likely real"
			}
		}

		rows = append(rows, tableRow{
			Command:      r.Job.DisplayName,
			MeanText:     meanText,
			Min:          fmt.Sprintf("%.1f %s", scaled(r.Stats.Min, unit), label),
			Max:          fmt.Sprintf("%.1f %s", scaled(r.Stats.Max, unit), label),
			Relative:     relative,
			Significance: significance,
			IsReference:  c.IsReference,
		})
	}

	for _, r := range results {
		if r.Failed {
			rows = append(rows, tableRow{Command: r.Job.DisplayName, Failed: true, MeanText: "failed: " + r.FailureReason})
		}
	}

	return rows
}
