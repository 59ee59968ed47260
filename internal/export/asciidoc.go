package export

import (
	"fmt"
	"io"

	"github.com/swiftbench/swiftbench/internal/model"
)

// AsciiDocExporter renders the comparison table in AsciiDoc table syntax.
type AsciiDocExporter struct{}

func (AsciiDocExporter) Write(results []*model.BenchmarkResult, meta model.RunMetadata, w io.Writer) error {
	rows := buildTable(results, meta)

	if _, err := fmt.Fprintln(w, `[cols="1,1,1,1,1,1", options="header"]`); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|==="); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|Command |Mean ± σ |Min |Max |Relative |Significance"); err != nil {
		return err
	}
	for _, row := range rows {
		if row.Failed {
			if _, err := fmt.Fprintf(w, "\n|%s\n|%s\n|\n|\n|\n|\n", row.Command, row.MeanText); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "\n|%s\n|%s\n|%s\n|%s\n|%s\n|%s\n", row.Command, row.MeanText, row.Min, row.Max, row.Relative, row.Significance); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "|===")
	return err
}
