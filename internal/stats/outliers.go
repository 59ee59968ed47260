package stats

import "github.com/swiftbench/swiftbench/internal/model"

// OutlierThresholds tunes the advisory outlier rules. Neither rule affects
// any reported number; both only drive warning text (spec §4.6). The spec
// leaves the exact multipliers as an open question — these defaults match
// the span long enough to be noticeable against the run's own noise floor
// without flagging ordinary jitter.
type OutlierThresholds struct {
	// SpanStdDevMultiplier: flag WideSpread when max-min exceeds this many
	// standard deviations.
	SpanStdDevMultiplier float64

	// FirstRunStdDevMultiplier: flag SlowFirstRun/FastFirstRun when the
	// first sample deviates from the mean of the rest by this many of the
	// rest's standard deviations.
	FirstRunStdDevMultiplier float64
}

// DefaultOutlierThresholds returns the thresholds used when a run does not
// override them.
func DefaultOutlierThresholds() OutlierThresholds {
	return OutlierThresholds{
		SpanStdDevMultiplier:     5.0,
		FirstRunStdDevMultiplier: 2.0,
	}
}

// DetectOutliers flags wide-spread and first-run-deviation patterns in a
// wall-time sample set (seconds). Each rule is silently skipped when it has
// no usable stddev: the wide-spread rule needs at least 2 samples, the
// first-run rule at least 3 (two besides the first).
func DetectOutliers(samples []float64, th OutlierThresholds) model.OutlierFlags {
	var flags model.OutlierFlags

	full := Describe(samples)
	if full.HasStdDev && full.StdDev > 0 {
		span := full.Max - full.Min
		if span > th.SpanStdDevMultiplier*full.StdDev {
			flags.WideSpread = true
		}
	}

	if len(samples) >= 2 {
		rest := Describe(samples[1:])
		if rest.HasStdDev && rest.StdDev > 0 {
			diff := samples[0] - rest.Mean
			bound := th.FirstRunStdDevMultiplier * rest.StdDev
			if diff > bound {
				flags.SlowFirstRun = true
			} else if diff < -bound {
				flags.FastFirstRun = true
			}
		}
	}

	return flags
}
