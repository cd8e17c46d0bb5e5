// Package guess seeds model parameters from an observed spectrum using the
// hints in a model's descriptor.
package guess

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/spectral"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSignal is returned when a spectrum has no positive brightness to
// take moments of.
var ErrNoSignal = errors.New("spectrum has no positive signal")

// Moments are the line features the guess hints refer to.
type Moments struct {
	Center    float64 `json:"center"`    // brightness-weighted mean velocity, km/s
	Width     float64 `json:"width"`     // brightness-weighted standard deviation, km/s
	Amplitude float64 `json:"amplitude"` // peak brightness, K
}

// ComputeMoments takes the zeroth to second moments of a spectrum. Only
// positive samples contribute weight. The width is floored at one channel.
func ComputeMoments(velocities, values []float64) (Moments, error) {
	if len(velocities) != len(values) {
		return Moments{}, fmt.Errorf("moments: %d velocities but %d values", len(velocities), len(values))
	}
	if len(values) == 0 {
		return Moments{}, ErrNoSignal
	}

	weights := make([]float64, len(values))
	for i, v := range values {
		if v > 0 && !math.IsInf(v, 1) {
			weights[i] = v
		}
	}
	if floats.Sum(weights) == 0 {
		return Moments{}, ErrNoSignal
	}

	center, width := stat.PopMeanStdDev(velocities, weights)
	if len(velocities) > 1 {
		if channel := math.Abs(velocities[1] - velocities[0]); width < channel {
			width = channel
		}
	}

	return Moments{
		Center:    center,
		Width:     width,
		Amplitude: floats.Max(values),
	}, nil
}

// Initial builds a starting parameter vector for the model described by d,
// ordered like d.ParNames().
func Initial(d *models.Descriptor, s *spectral.Spectrum) ([]float64, error) {
	v, err := s.Velocities()
	if err != nil {
		return nil, fmt.Errorf("guess velocities: %w", err)
	}
	m, err := ComputeMoments(v, s.Values)
	if err != nil {
		return nil, err
	}
	return FromMoments(d, m)
}

// FromMoments maps each guess hint to a value.
func FromMoments(d *models.Descriptor, m Moments) ([]float64, error) {
	hints := d.GuessTypes()
	out := make([]float64, len(hints))
	for i, h := range hints {
		switch h.Kind {
		case models.GuessFixed:
			out[i] = h.Value
		case models.GuessCenter:
			out[i] = m.Center
		case models.GuessWidth:
			out[i] = m.Width
		case models.GuessAmplitude:
			out[i] = m.Amplitude
		default:
			return nil, fmt.Errorf("parameter %s: unsupported guess kind %s", d.ParNames()[i], h.Kind)
		}
	}
	return out, nil
}
