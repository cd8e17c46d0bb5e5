// Package sweep evaluates a model across a range of values for one of its
// parameters.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxValues caps how many values a range may expand to.
const maxValues = 10000

// RangeSpec defines a floating-point parameter range for sweeping.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
// Returns an error if the format is invalid or values cannot be parsed.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	if step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %f", step)
	}
	if max < min {
		return RangeSpec{}, fmt.Errorf("max %f is below min %f", max, min)
	}

	return RangeSpec{Min: min, Max: max, Step: step}, nil
}

// String renders the spec back in min:max:step form.
func (r RangeSpec) String() string {
	return fmt.Sprintf("%g:%g:%g", r.Min, r.Max, r.Step)
}

// Values expands the range. See GenerateRange.
func (r RangeSpec) Values() []float64 {
	return GenerateRange(r.Min, r.Max, r.Step)
}

// GenerateRange generates a slice of float64 values from min to max (inclusive)
// stepping by step. Returns an empty slice if min > max or the range would
// exceed maxValues entries. Values are rounded to 1e-6 so accumulated
// floating-point error does not leak into parameter values.
func GenerateRange(min, max, step float64) []float64 {
	if step <= 0 || min > max {
		return nil
	}

	expectedCount := int((max-min)/step) + 1
	if expectedCount > maxValues || expectedCount < 0 {
		return nil
	}

	result := make([]float64, 0, expectedCount)
	for i := 0; i < maxValues; i++ {
		v := math.Round((min+float64(i)*step)*1e6) / 1e6
		if v > max+step/1000 {
			break
		}
		result = append(result, math.Min(v, max))
	}
	return result
}

// ParseParamList parses a comma-separated list of floats or a range specification.
// If the string contains a colon, it is treated as "min:max:step" range spec.
// Otherwise, it is parsed as comma-separated values.
func ParseParamList(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		return spec.Values(), nil
	}

	return parseCSVFloat64s(s)
}

func parseCSVFloat64s(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
