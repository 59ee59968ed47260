package stats

import (
	"math"
	"sort"

	"github.com/swiftbench/swiftbench/internal/model"
)

// Summary is the reduced form of one completed benchmark that comparison
// and sorting operate over.
type Summary struct {
	Name      string
	Mean      float64 // seconds
	StdDev    float64 // seconds
	HasStdDev bool
}

// SummarizeResults builds a Summary per non-failed result, preserving job
// order. Failed benchmarks are excluded: a ratio against a command that
// never produced a timing sample is meaningless.
func SummarizeResults(results []*model.BenchmarkResult) []Summary {
	summaries := make([]Summary, 0, len(results))
	for _, r := range results {
		if r.Failed {
			continue
		}
		summaries = append(summaries, Summary{
			Name:      r.Job.DisplayName,
			Mean:      r.Stats.Mean.Seconds(),
			StdDev:    r.Stats.StdDev.Seconds(),
			HasStdDev: r.Stats.HasStdDev,
		})
	}
	return summaries
}

// SelectReference picks the reference index: the named benchmark if
// refName is non-empty and found, otherwise the one with the smallest mean.
func SelectReference(summaries []Summary, refName string) int {
	if refName != "" {
		for i, s := range summaries {
			if s.Name == refName {
				return i
			}
		}
	}
	best := 0
	for i, s := range summaries {
		if s.Mean < summaries[best].Mean {
			best = i
		}
	}
	return best
}

// Compare produces one model.Comparison per summary, ratioed against the
// reference selected by refName. The reference's own ratio is forced to
// exactly 1.0 with zero uncertainty.
//
// ratio = mean(s) / mean(ref)
// ratio_sd = ratio * sqrt((sd(s)/mean(s))^2 + (sd(ref)/mean(ref))^2)
//
// relative uncertainty terms contribute zero when a side's stddev is
// undefined (n < 2), since there is nothing to propagate.
func Compare(summaries []Summary, refName string) []model.Comparison {
	if len(summaries) == 0 {
		return nil
	}

	refIdx := SelectReference(summaries, refName)
	ref := summaries[refIdx]

	out := make([]model.Comparison, len(summaries))
	for i, s := range summaries {
		if i == refIdx {
			out[i] = model.Comparison{Name: s.Name, Ratio: 1.0, RatioStdDev: 0.0, IsReference: true}
			continue
		}

		ratio := s.Mean / ref.Mean
		relS := relativeStdDev(s)
		relRef := relativeStdDev(ref)
		ratioSD := ratio * math.Sqrt(relS*relS+relRef*relRef)

		out[i] = model.Comparison{Name: s.Name, Ratio: ratio, RatioStdDev: ratioSD}
	}
	return out
}

func relativeStdDev(s Summary) float64 {
	if !s.HasStdDev || s.Mean == 0 {
		return 0
	}
	return s.StdDev / s.Mean
}

// SortSummaries returns the display order for summaries as a slice of
// indices into it, which callers use to walk the originating
// results/comparisons in lockstep; summaries itself is not modified.
// SortCommand yields the identity order: job order already is command
// order. SortMeanTime sorts ascending by mean.
func SortSummaries(summaries []Summary, order model.SortOrder) []int {
	idx := make([]int, len(summaries))
	for i := range idx {
		idx[i] = i
	}
	if order != model.SortMeanTime {
		return idx
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return summaries[idx[a]].Mean < summaries[idx[b]].Mean
	})
	return idx
}

// SignificanceThreshold is the p-value below which Significance's result is
// considered a real difference rather than measurement noise. Exporters that
// render a significance column compare against this threshold.
const SignificanceThreshold = 0.05

// Significance reports an approximate two-sided p-value for the difference
// between two means given their standard deviations, treating each as a
// single pooled observation. This is an advisory annotation only — spec
// §4.6's ratio/ratio_sd pair is the number every exporter is required to
// show; the text-table exporters additionally call Significance to label
// each non-reference row "likely noise" or "likely real" (see
// internal/export/table.go's Significance column).
func Significance(a, b Summary) (pValue float64) {
	if a.Mean == 0 || b.Mean == 0 {
		return 1.0
	}

	sdA, sdB := a.StdDev, b.StdDev
	if sdA == 0 {
		sdA = a.Mean * 0.05
	}
	if sdB == 0 {
		sdB = b.Mean * 0.05
	}

	pooled := math.Sqrt((sdA*sdA + sdB*sdB) / 2)
	if pooled == 0 {
		pooled = a.Mean * 0.01
	}

	z := (b.Mean - a.Mean) / pooled
	return 2 * (1 - normalCDF(math.Abs(z)))
}

// normalCDF approximates the standard normal CDF via a rational
// approximation (Abramowitz & Stegun 26.2.17).
func normalCDF(x float64) float64 {
	const (
		b1 = 0.319381530
		b2 = -0.356563782
		b3 = 1.781477937
		b4 = -1.821255978
		b5 = 1.330274429
		p  = 0.2316419
		c  = 0.39894228
	)

	if x >= 0 {
		t := 1.0 / (1.0 + p*x)
		return 1.0 - c*math.Exp(-x*x/2.0)*t*(b1+t*(b2+t*(b3+t*(b4+t*b5))))
	}
	t := 1.0 / (1.0 - p*x)
	return c * math.Exp(-x*x/2.0) * t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
}
