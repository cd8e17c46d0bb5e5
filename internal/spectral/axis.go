// Package spectral provides the independent-variable axis a line-profile
// model is evaluated on. An axis holds one set of samples and hands out
// velocity or frequency views of them on demand.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/lineprofile/internal/units"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrUnsupportedUnit is returned when an axis is asked for a unit it cannot produce.
	ErrUnsupportedUnit = errors.New("unsupported unit")
	// ErrEmptyAxis is returned when an axis is built with no samples.
	ErrEmptyAxis = errors.New("axis has no samples")
)

// Axis is the independent variable of a spectrum. Implementations must return
// views of the same physical samples regardless of the requested unit, and
// must return a slice the caller is free to modify.
type Axis interface {
	Len() int
	Unit() string
	AsUnit(unit string) ([]float64, error)
}

// DopplerAxis is an Axis whose velocity and frequency views are related by
// the radio Doppler convention around a rest frequency.
type DopplerAxis struct {
	values []float64
	unit   string
	restHz float64
}

// Ensure DopplerAxis implements Axis.
var _ Axis = (*DopplerAxis)(nil)

// NewAxis builds an axis from samples expressed in unit. restHz is the rest
// frequency of the line and must be positive.
func NewAxis(values []float64, unit string, restHz float64) (*DopplerAxis, error) {
	if len(values) == 0 {
		return nil, ErrEmptyAxis
	}
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("%w %q: must be one of %s", ErrUnsupportedUnit, unit, units.GetValidUnitsString())
	}
	if !(restHz > 0) || math.IsInf(restHz, 1) {
		return nil, fmt.Errorf("rest frequency must be positive and finite, got %g", restHz)
	}
	return &DopplerAxis{
		values: append([]float64(nil), values...),
		unit:   unit,
		restHz: restHz,
	}, nil
}

// NewVelocityRange builds a km/s axis running from min to max inclusive in
// increments of step.
func NewVelocityRange(min, max, step, restHz float64) (*DopplerAxis, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("step must be positive, got %f", step)
	}
	if max < min {
		return nil, fmt.Errorf("max (%f) must not be below min (%f)", max, min)
	}
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	values := make([]float64, n)
	if n == 1 {
		values[0] = min
	} else {
		floats.Span(values, min, min+float64(n-1)*step)
	}
	return NewAxis(values, units.KMS, restHz)
}

// Len returns the number of samples.
func (a *DopplerAxis) Len() int { return len(a.values) }

// Unit returns the unit the samples were supplied in.
func (a *DopplerAxis) Unit() string { return a.unit }

// RestFrequency returns the rest frequency in Hz.
func (a *DopplerAxis) RestFrequency() float64 { return a.restHz }

// AsUnit returns a fresh copy of the samples expressed in unit.
func (a *DopplerAxis) AsUnit(unit string) ([]float64, error) {
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("%w %q: must be one of %s", ErrUnsupportedUnit, unit, units.GetValidUnitsString())
	}

	out := make([]float64, len(a.values))
	for i, x := range a.values {
		out[i] = a.convert(x, unit)
	}
	return out, nil
}

// convert maps one native sample to the target unit, going through km/s or
// Hz as the pivot depending on which side of the Doppler relation each unit
// sits.
func (a *DopplerAxis) convert(x float64, unit string) float64 {
	switch {
	case units.IsVelocity(a.unit) && units.IsVelocity(unit):
		return units.ConvertVelocity(units.ConvertToKMS(x, a.unit), unit)
	case units.IsFrequency(a.unit) && units.IsFrequency(unit):
		return units.ConvertFrequency(units.ConvertToHz(x, a.unit), unit)
	case units.IsVelocity(a.unit):
		hz := units.FrequencyFromVelocity(units.ConvertToKMS(x, a.unit), a.restHz)
		return units.ConvertFrequency(hz, unit)
	default:
		kms := units.VelocityFromFrequency(units.ConvertToHz(x, a.unit), a.restHz)
		return units.ConvertVelocity(kms, unit)
	}
}
