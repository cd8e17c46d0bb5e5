package sweep

import (
	"fmt"

	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/spectral"
	"github.com/banshee-data/lineprofile/internal/units"
	"gonum.org/v1/gonum/floats"
)

// Point is one evaluation in a sweep.
type Point struct {
	Value    float64   `json:"value"`
	Params   []float64 `json:"params"`
	Spectrum []float64 `json:"spectrum"`
	// BlueRedRatio is the blue-side peak over the red-side peak, or 0 when
	// either side has no emission.
	BlueRedRatio float64 `json:"blue_red_ratio"`
}

// Run evaluates m on axis once per entry of values, substituting each value
// for the named parameter in base. It stops at the first evaluation error.
func Run(m models.Model, axis spectral.Axis, base []float64, param string, values []float64) ([]Point, error) {
	d := m.Descriptor()
	idx, ok := d.Index(param)
	if !ok {
		return nil, fmt.Errorf("model %s has no parameter %q (have %v)", m.Name(), param, d.ParNames())
	}
	if len(base) != d.NumParams() {
		return nil, fmt.Errorf("%w: base vector has %d values, model %s takes %d",
			models.ErrParameterCount, len(base), m.Name(), d.NumParams())
	}

	velocities, err := axis.AsUnit(units.KMS)
	if err != nil {
		return nil, fmt.Errorf("sweep velocity axis: %w", err)
	}

	points := make([]Point, 0, len(values))
	for _, v := range values {
		params := append([]float64(nil), base...)
		params[idx] = v

		spec, err := m.Evaluate(axis, params)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", param, v, err)
		}

		center := 0.0
		if vi, ok := d.Index("v_lsr"); ok {
			center = params[vi]
		}

		points = append(points, Point{
			Value:        v,
			Params:       params,
			Spectrum:     spec,
			BlueRedRatio: BlueRedRatio(velocities, spec, center),
		})
	}
	return points, nil
}

// BlueRedRatio compares the brightest sample blueward of center with the
// brightest sample redward of it. Infall shows up as a ratio above 1.
func BlueRedRatio(velocities, values []float64, center float64) float64 {
	var blue, red []float64
	for i, v := range velocities {
		switch {
		case v < center:
			blue = append(blue, values[i])
		case v > center:
			red = append(red, values[i])
		}
	}
	if len(blue) == 0 || len(red) == 0 {
		return 0
	}
	b, r := floats.Max(blue), floats.Max(red)
	if b <= 0 || r <= 0 {
		return 0
	}
	return b / r
}
