package export

import (
	"fmt"
	"io"

	"github.com/swiftbench/swiftbench/internal/model"
)

// OrgModeExporter renders the comparison table in Emacs org-mode syntax.
type OrgModeExporter struct{}

func (OrgModeExporter) Write(results []*model.BenchmarkResult, meta model.RunMetadata, w io.Writer) error {
	rows := buildTable(results, meta)

	if _, err := fmt.Fprintln(w, "| Command | Mean ± σ | Min | Max | Relative | Significance |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---+---+---+---+---+---|"); err != nil {
		return err
	}
	for _, row := range rows {
		if row.Failed {
			if _, err := fmt.Fprintf(w, "| %s | %s | | | | |\n", row.Command, row.MeanText); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n", row.Command, row.MeanText, row.Min, row.Max, row.Relative, row.Significance); err != nil {
			return err
		}
	}
	return nil
}
