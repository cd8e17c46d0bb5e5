package spectral

import (
	"fmt"

	"github.com/banshee-data/lineprofile/internal/units"
)

// Spectrum pairs an axis with brightness temperatures (K), one per sample.
type Spectrum struct {
	Label  string
	Axis   Axis
	Values []float64
}

// NewSpectrum checks that values line up with the axis.
func NewSpectrum(label string, axis Axis, values []float64) (*Spectrum, error) {
	if axis == nil {
		return nil, fmt.Errorf("spectrum %q has no axis", label)
	}
	if axis.Len() != len(values) {
		return nil, fmt.Errorf("spectrum %q: axis has %d samples but %d values", label, axis.Len(), len(values))
	}
	return &Spectrum{Label: label, Axis: axis, Values: values}, nil
}

// Velocities returns the km/s view of the spectrum's axis.
func (s *Spectrum) Velocities() ([]float64, error) {
	return s.Axis.AsUnit(units.KMS)
}
