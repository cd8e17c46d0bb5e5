package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/lineprofile/internal/units"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hcoRest = 89.188525e9

func TestNewAxisValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		unit   string
		rest   float64
		want   error
	}{
		{"empty", nil, units.KMS, hcoRest, ErrEmptyAxis},
		{"bad unit", []float64{1}, "furlongs", hcoRest, ErrUnsupportedUnit},
		{"zero rest", []float64{1}, units.KMS, 0, nil},
		{"nan rest", []float64{1}, units.KMS, math.NaN(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAxis(tt.values, tt.unit, tt.rest)
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
		})
	}
}

func TestNewAxisCopiesInput(t *testing.T) {
	in := []float64{-1, 0, 1}
	a, err := NewAxis(in, units.KMS, hcoRest)
	require.NoError(t, err)

	in[0] = 99
	v, err := a.AsUnit(units.KMS)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v[0])

	// Returned views are the caller's to modify.
	v[1] = 42
	again, _ := a.AsUnit(units.KMS)
	assert.Equal(t, 0.0, again[1])
}

func TestNewVelocityRange(t *testing.T) {
	a, err := NewVelocityRange(-5, 5, 1, hcoRest)
	require.NoError(t, err)
	require.Equal(t, 11, a.Len())
	assert.Equal(t, units.KMS, a.Unit())
	assert.Equal(t, hcoRest, a.RestFrequency())

	v, err := a.AsUnit(units.KMS)
	require.NoError(t, err)
	want := []float64{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5}
	if diff := cmp.Diff(want, v, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("velocities mismatch (-want +got):\n%s", diff)
	}

	single, err := NewVelocityRange(2, 2, 0.5, hcoRest)
	require.NoError(t, err)
	assert.Equal(t, 1, single.Len())

	_, err = NewVelocityRange(0, 1, 0, hcoRest)
	assert.Error(t, err)
	_, err = NewVelocityRange(1, 0, 0.1, hcoRest)
	assert.Error(t, err)
}

func TestAsUnitSelfConsistent(t *testing.T) {
	a, err := NewVelocityRange(-10, 10, 0.5, hcoRest)
	require.NoError(t, err)

	hz, err := a.AsUnit(units.Hz)
	require.NoError(t, err)
	ghz, err := a.AsUnit(units.GHz)
	require.NoError(t, err)
	ms, err := a.AsUnit(units.MS)
	require.NoError(t, err)

	// Build a second axis from the frequency view and ask for velocities back.
	fromHz, err := NewAxis(hz, units.Hz, hcoRest)
	require.NoError(t, err)
	back, err := fromHz.AsUnit(units.KMS)
	require.NoError(t, err)

	orig, _ := a.AsUnit(units.KMS)
	if diff := cmp.Diff(orig, back, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("km/s -> Hz -> km/s mismatch (-want +got):\n%s", diff)
	}
	for i := range hz {
		assert.InDelta(t, hz[i]/1e9, ghz[i], 1e-9)
		assert.InDelta(t, orig[i]*1000, ms[i], 1e-6)
	}

	// Frequency falls as velocity rises.
	for i := 1; i < len(hz); i++ {
		assert.Less(t, hz[i], hz[i-1])
	}

	_, err = a.AsUnit("parsecs")
	assert.ErrorIs(t, err, ErrUnsupportedUnit)
}

func TestNewSpectrum(t *testing.T) {
	a, err := NewVelocityRange(-1, 1, 1, hcoRest)
	require.NoError(t, err)

	s, err := NewSpectrum("obs", a, []float64{0, 1, 0})
	require.NoError(t, err)
	v, err := s.Velocities()
	require.NoError(t, err)
	assert.Len(t, v, 3)

	_, err = NewSpectrum("short", a, []float64{1})
	assert.Error(t, err)
	_, err = NewSpectrum("noaxis", nil, nil)
	assert.Error(t, err)
}
