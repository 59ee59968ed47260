package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/swiftbench/swiftbench/internal/model"
)

// CSVExporter writes one header row followed by one row per benchmark.
// Parameter columns are appended only when parameters exist and are ordered
// by first appearance across the result set, matching spec §4.7.
type CSVExporter struct{}

func (CSVExporter) Write(results []*model.BenchmarkResult, _ model.RunMetadata, w io.Writer) error {
	paramNames := firstAppearanceParamNames(results)

	cw := csv.NewWriter(w)
	header := []string{"command", "mean", "stddev", "median", "user", "system", "min", "max"}
	header = append(header, paramNames...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Job.DisplayName,
			formatFloat(r.Stats.Mean.Seconds()),
			formatOptionalFloat(r.Stats.HasStdDev, r.Stats.StdDev.Seconds()),
			formatFloat(r.Stats.Median.Seconds()),
			formatFloat(r.Stats.UserMean.Seconds()),
			formatFloat(r.Stats.SysMean.Seconds()),
			formatFloat(r.Stats.Min.Seconds()),
			formatFloat(r.Stats.Max.Seconds()),
		}
		bound := make(map[string]string, len(r.Job.Parameters))
		for _, p := range r.Job.Parameters {
			bound[p.Name] = p.Value
		}
		for _, name := range paramNames {
			row = append(row, bound[name])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func firstAppearanceParamNames(results []*model.BenchmarkResult) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range results {
		for _, p := range r.Job.Parameters {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}
	return names
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalFloat(has bool, f float64) string {
	if !has {
		return ""
	}
	return formatFloat(f)
}
