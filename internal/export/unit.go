package export

import (
	"math"
	"time"

	"github.com/swiftbench/swiftbench/internal/model"
)

// SelectUnit resolves the display time unit: the configured unit if one was
// requested, otherwise the unit that makes the smallest mean among results
// fall in [1, 1000) once scaled (spec §4.7).
func SelectUnit(results []*model.BenchmarkResult, configured model.TimeUnit) model.TimeUnit {
	if configured != "" && configured != model.UnitAuto {
		return configured
	}

	smallest := math.Inf(1)
	for _, r := range results {
		if r.Failed || r.Stats.N == 0 {
			continue
		}
		if m := r.Stats.Mean.Seconds(); m > 0 && m < smallest {
			smallest = m
		}
	}
	if math.IsInf(smallest, 1) {
		return model.UnitSecond
	}

	switch {
	case smallest >= 1:
		return model.UnitSecond
	case smallest*1e3 >= 1:
		return model.UnitMillisecond
	default:
		return model.UnitMicrosecond
	}
}

// scaleFactor returns the multiplier that turns a duration-in-seconds float
// into the given unit's scale.
func scaleFactor(unit model.TimeUnit) float64 {
	switch unit {
	case model.UnitMillisecond:
		return 1e3
	case model.UnitMicrosecond:
		return 1e6
	default:
		return 1
	}
}

// unitLabel is the short suffix appended to each rendered time value.
func unitLabel(unit model.TimeUnit) string {
	switch unit {
	case model.UnitMillisecond:
		return "ms"
	case model.UnitMicrosecond:
		return "µs"
	default:
		return "s"
	}
}

// scaled converts a duration to a float in the given unit.
func scaled(d time.Duration, unit model.TimeUnit) float64 {
	return d.Seconds() * scaleFactor(unit)
}
