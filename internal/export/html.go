package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"sort"
	"time"

	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLExporter renders a single self-contained HTML document: the result
// set is embedded as a literal JSON blob, and a small inline script renders
// the summary table, box plot, per-command histograms, a time-progression
// plot with a centered moving average, an advanced-statistics panel, and a
// parameter-analysis chart when parameter bindings exist (spec §4.7).
type HTMLExporter struct{}

func (HTMLExporter) Write(results []*model.BenchmarkResult, meta model.RunMetadata, w io.Writer) error {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parsing embedded report template: %w", err)
	}

	data, err := buildReportData(results, meta)
	if err != nil {
		return fmt.Errorf("preparing report data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "report.html", data); err != nil {
		return fmt.Errorf("executing report template: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// reportData is the template's view model.
type reportData struct {
	Title         string
	GeneratedJSON template.JS
	Rows          []tableRow
	HasParams     bool
}

func buildReportData(results []*model.BenchmarkResult, meta model.RunMetadata) (reportData, error) {
	rows := buildTable(results, meta)

	payload := reportPayload{Unit: string(SelectUnit(results, meta.TimeUnit))}
	hasParams := false
	for _, r := range results {
		if len(r.Job.Parameters) > 0 {
			hasParams = true
		}

		entry := benchmarkPayload{
			Name:   r.Job.DisplayName,
			Failed: r.Failed,
		}
		if r.Failed {
			payload.Benchmarks = append(payload.Benchmarks, entry)
			continue
		}

		times := make([]float64, len(r.Samples))
		for i, s := range r.Samples {
			times[i] = s.Wall.Seconds()
		}
		entry.Times = times
		entry.Mean = r.Stats.Mean.Seconds()
		entry.Min = r.Stats.Min.Seconds()
		entry.Max = r.Stats.Max.Seconds()
		entry.Quantiles = quantilePanel(times)
		entry.MovingAverage = centeredMovingAverage(times)
		if len(r.Job.Parameters) > 0 {
			entry.Parameters = make(map[string]string, len(r.Job.Parameters))
			for _, p := range r.Job.Parameters {
				entry.Parameters[p.Name] = p.Value
			}
		}

		payload.Benchmarks = append(payload.Benchmarks, entry)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return reportData{}, err
	}

	return reportData{
		Title:         "Benchmark Report",
		GeneratedJSON: template.JS(encoded),
		Rows:          rows,
		HasParams:     hasParams,
	}, nil
}

type reportPayload struct {
	Unit       string             `json:"unit"`
	Benchmarks []benchmarkPayload `json:"benchmarks"`
}

type benchmarkPayload struct {
	Name          string            `json:"name"`
	Failed        bool              `json:"failed"`
	Times         []float64         `json:"times,omitempty"`
	Mean          float64           `json:"mean,omitempty"`
	Min           float64           `json:"min,omitempty"`
	Max           float64           `json:"max,omitempty"`
	Quantiles     quantilePanelData `json:"quantiles"`
	MovingAverage []float64         `json:"movingAverage,omitempty"`
	Parameters    map[string]string `json:"parameters,omitempty"`
}

type quantilePanelData struct {
	P05 float64 `json:"p05"`
	P25 float64 `json:"p25"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
	IQR float64 `json:"iqr"`
}

func quantilePanel(times []float64) quantilePanelData {
	if len(times) == 0 {
		return quantilePanelData{}
	}
	p25 := stats.Quantile(times, 0.25)
	p75 := stats.Quantile(times, 0.75)
	return quantilePanelData{
		P05: stats.Quantile(times, 0.05),
		P25: p25,
		P75: p75,
		P95: stats.Quantile(times, 0.95),
		IQR: p75 - p25,
	}
}

// centeredMovingAverage computes a centered moving average with window
// max(3, floor(n/5)), per spec §4.7. Edge points use a shrinking window
// rather than padding, so the series length matches the input.
func centeredMovingAverage(times []float64) []float64 {
	n := len(times)
	if n == 0 {
		return nil
	}
	window := int(math.Floor(float64(n) / 5))
	if window < 3 {
		window = 3
	}
	half := window / 2

	out := make([]float64, n)
	for i := range times {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= n {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += times[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			switch {
			case d < time.Microsecond:
				return fmt.Sprintf("%d ns", d.Nanoseconds())
			case d < time.Millisecond:
				return fmt.Sprintf("%.2f µs", float64(d.Nanoseconds())/1e3)
			case d < time.Second:
				return fmt.Sprintf("%.2f ms", float64(d.Nanoseconds())/1e6)
			default:
				return fmt.Sprintf("%.2f s", d.Seconds())
			}
		},
		"sortedKeys": func(m map[string]string) []string {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return keys
		},
	}
}
