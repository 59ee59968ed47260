// Package params is the Parameter Expander leaf (spec §4.4): it turns one or
// more parameter sources plus a set of command templates into an ordered
// list of concrete BenchmarkJob values with resolved {name} substitutions.
package params

import (
	"math"
	"strconv"
	"strings"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/model"
)

// Source is one named axis of the Cartesian product: either an explicit
// List of string values or a numeric Scan range.
type Source struct {
	Name   string
	Values []string // populated directly for List sources, generated for Scan
}

// ListSource builds a Source from a comma-separated CLI argument.
func ListSource(name, raw string) Source {
	parts := strings.Split(raw, ",")
	values := make([]string, len(parts))
	for i, p := range parts {
		values[i] = strings.TrimSpace(p)
	}
	return Source{Name: name, Values: values}
}

// ScanSource builds a Source by iterated addition from min to max (step
// default 1). Iteration count is computed with a small epsilon to absorb
// binary-float accumulation error, and each generated value is formatted to
// the maximum significant-digit count of min, max, and step so that e.g.
// a step of 0.1 does not produce "1.2000000000000002".
func ScanSource(name string, min, max, step float64) (Source, error) {
	if step == 0 {
		return Source{}, bmerrors.NewConfigError("parameter scan %q: step must be non-zero", name)
	}
	if step < 0 {
		return Source{}, bmerrors.NewConfigError("parameter scan %q: step must be positive", name)
	}
	if max < min {
		return Source{}, bmerrors.NewConfigError("parameter scan %q: max must be >= min", name)
	}

	const epsilon = 1e-9
	count := int(math.Floor((max-min)/step+epsilon)) + 1
	digits := maxSignificantDigits(min, max, step)

	values := make([]string, count)
	for i := 0; i < count; i++ {
		v := min + float64(i)*step
		values[i] = formatSignificant(v, digits)
	}
	return Source{Name: name, Values: values}, nil
}

// maxSignificantDigits returns the largest number of digits after the
// decimal point among the three inputs' shortest round-tripping
// representation.
func maxSignificantDigits(xs ...float64) int {
	max := 0
	for _, x := range xs {
		if d := decimalDigits(x); d > max {
			max = d
		}
	}
	return max
}

func decimalDigits(x float64) int {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func formatSignificant(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// Expand computes the Cartesian product of sources (in CLI order) and
// produces one BenchmarkJob per (command template, product point) pair, with
// command-index outermost. commandNameTemplate, if non-empty, is substituted
// the same way as the command itself and used as the job's display name;
// otherwise the display name is the substituted command string.
//
// With no sources, Expand yields exactly one job per command template.
func Expand(commands []model.CommandTemplate, sources []Source, commandNameTemplate string) []model.BenchmarkJob {
	points := product(sources)

	jobs := make([]model.BenchmarkJob, 0, len(commands)*len(points))
	index := 0
	for cmdIdx, tmpl := range commands {
		for _, point := range points {
			substituted := substitute(tmpl.Raw, point)
			display := substituted
			if commandNameTemplate != "" {
				display = substitute(commandNameTemplate, point)
			}

			jobs = append(jobs, model.BenchmarkJob{
				Index:        index,
				CommandIndex: cmdIdx,
				Command:      substituted,
				DisplayName:  display,
				Parameters:   point,
			})
			index++
		}
	}
	return jobs
}

// product returns every combination of source values, in the order the
// sources were given (first source varies slowest... no: spec's "command
// index outermost" applies to commands; within the parameter product itself
// the natural nested-loop order has the LAST source varying fastest, the
// conventional odometer ordering).
func product(sources []Source) [][]model.ParameterBinding {
	if len(sources) == 0 {
		return [][]model.ParameterBinding{{}}
	}

	result := [][]model.ParameterBinding{{}}
	for _, src := range sources {
		var next [][]model.ParameterBinding
		for _, prefix := range result {
			for _, v := range src.Values {
				point := make([]model.ParameterBinding, len(prefix), len(prefix)+1)
				copy(point, prefix)
				point = append(point, model.ParameterBinding{Name: src.Name, Value: v})
				next = append(next, point)
			}
		}
		result = next
	}
	return result
}

// substitute performs textual "{name}" replacement. Unknown placeholders are
// left untouched.
func substitute(template string, bindings []model.ParameterBinding) string {
	out := template
	for _, b := range bindings {
		out = strings.ReplaceAll(out, "{"+b.Name+"}", b.Value)
	}
	return out
}

// ValidateUniqueNames returns a ConfigError if any two sources share a name.
func ValidateUniqueNames(sources []Source) error {
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if seen[s.Name] {
			return bmerrors.NewConfigError("duplicate parameter name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
