package export

import (
	"encoding/json"
	"io"

	"github.com/swiftbench/swiftbench/internal/model"
)

// JSONExporter writes the stable result model consumed by external
// plotting scripts (spec §4.7, §6). Times are always in seconds regardless
// of the configured display unit — this format is a machine interface, not
// a rendering of it.
type JSONExporter struct{}

type jsonDocument struct {
	Results []jsonResult `json:"results"`
}

type jsonResult struct {
	Command    string            `json:"command"`
	Mean       float64           `json:"mean"`
	StdDev     *float64          `json:"stddev"`
	Median     float64           `json:"median"`
	User       float64           `json:"user"`
	System     float64           `json:"system"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Times      []float64         `json:"times"`
	ExitCodes  []int             `json:"exit_codes"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

func (JSONExporter) Write(results []*model.BenchmarkResult, _ model.RunMetadata, w io.Writer) error {
	doc := jsonDocument{Results: make([]jsonResult, 0, len(results))}

	for _, r := range results {
		times := make([]float64, len(r.Samples))
		codes := make([]int, len(r.Samples))
		for i, s := range r.Samples {
			times[i] = s.Wall.Seconds()
			codes[i] = s.Exit.Code
		}

		var params map[string]string
		if len(r.Job.Parameters) > 0 {
			params = make(map[string]string, len(r.Job.Parameters))
			for _, p := range r.Job.Parameters {
				params[p.Name] = p.Value
			}
		}

		var stddev *float64
		if r.Stats.HasStdDev {
			sd := r.Stats.StdDev.Seconds()
			stddev = &sd
		}

		doc.Results = append(doc.Results, jsonResult{
			Command:    r.Job.DisplayName,
			Mean:       r.Stats.Mean.Seconds(),
			StdDev:     stddev,
			Median:     r.Stats.Median.Seconds(),
			User:       r.Stats.UserMean.Seconds(),
			System:     r.Stats.SysMean.Seconds(),
			Min:        r.Stats.Min.Seconds(),
			Max:        r.Stats.Max.Seconds(),
			Times:      times,
			ExitCodes:  codes,
			Parameters: params,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
