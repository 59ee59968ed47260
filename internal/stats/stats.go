// Package stats is the Statistical Engine leaf (spec §4.6, §8): descriptive
// statistics, the R-7 quantile function, outlier flagging, and pairwise
// comparison with propagated uncertainty. Every function here is pure —
// no package in this tree mutates shared state, and none of it imports
// the executor or scheduler stack.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/swiftbench/swiftbench/internal/model"
)

// Descriptive holds the summary statistics of one sample set, in seconds.
type Descriptive struct {
	N         int
	Mean      float64
	StdDev    float64
	HasStdDev bool // false when N < 2: sample stddev is undefined
	Median    float64
	Min       float64
	Max       float64
}

// Describe computes Descriptive over samples. An empty slice yields the
// zero value.
func Describe(samples []float64) Descriptive {
	n := len(samples)
	if n == 0 {
		return Descriptive{}
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	mean := meanOf(samples)
	d := Descriptive{
		N:      n,
		Mean:   mean,
		Median: quantileSorted(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
	if n >= 2 {
		d.StdDev = stdDevOf(samples, mean)
		d.HasStdDev = true
	}
	return d
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDevOf computes the Bessel-corrected (n-1) sample standard deviation.
// Callers must ensure len(xs) >= 2.
func stdDevOf(xs []float64, mean float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Quantile returns the R-7 quantile (the convention used by R's default
// quantile() and by numpy's "linear" interpolation) of samples at q, a
// fraction in [0, 1]. Quantile(xs, 0) == min(xs), Quantile(xs, 1) ==
// max(xs), and Quantile is non-decreasing in q.
func Quantile(samples []float64, q float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

// quantileSorted assumes sorted is already ascending.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	idx := float64(n-1) * q
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ComputeStats reduces a job's wall/user/system samples into ComputedStats.
// Durations are converted to seconds for the arithmetic and back to
// time.Duration on the way out, matching the precision a float64 affords
// for realistic run lengths.
func ComputeStats(samples []model.TimingSample) model.ComputedStats {
	if len(samples) == 0 {
		return model.ComputedStats{}
	}

	wall := make([]float64, len(samples))
	user := make([]float64, len(samples))
	sys := make([]float64, len(samples))
	for i, s := range samples {
		wall[i] = s.Wall.Seconds()
		user[i] = s.User.Seconds()
		sys[i] = s.System.Seconds()
	}

	d := Describe(wall)
	return model.ComputedStats{
		N:         d.N,
		Mean:      secondsToDuration(d.Mean),
		StdDev:    secondsToDuration(d.StdDev),
		HasStdDev: d.HasStdDev,
		Median:    secondsToDuration(d.Median),
		Min:       secondsToDuration(d.Min),
		Max:       secondsToDuration(d.Max),
		UserMean:  secondsToDuration(meanOf(user)),
		SysMean:   secondsToDuration(meanOf(sys)),
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
