package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid km/s", KMS, true},
		{"valid m/s", MS, true},
		{"valid Hz", Hz, true},
		{"valid kHz", KHz, true},
		{"valid MHz", MHz, true},
		{"valid GHz", GHz, true},
		{"invalid unit", "invalid", false},
		{"empty unit", "", false},
		{"lowercase ghz", "ghz", false}, // Case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestUnitKinds(t *testing.T) {
	for _, u := range []string{KMS, MS} {
		if !IsVelocity(u) || IsFrequency(u) {
			t.Errorf("%s should be a velocity unit only", u)
		}
	}
	for _, u := range []string{Hz, KHz, MHz, GHz} {
		if !IsFrequency(u) || IsVelocity(u) {
			t.Errorf("%s should be a frequency unit only", u)
		}
	}
}

func TestGetValidUnitsString(t *testing.T) {
	result := GetValidUnitsString()
	expected := "km/s, m/s, Hz, kHz, MHz, GHz"
	if result != expected {
		t.Errorf("GetValidUnitsString() = %s, want %s", result, expected)
	}
}

func TestConvertFrequency(t *testing.T) {
	tests := []struct {
		name     string
		freqHz   float64
		unit     string
		expected float64
	}{
		{"Hz to Hz", 89.188525e9, Hz, 89.188525e9},
		{"Hz to kHz", 1500, KHz, 1.5},
		{"Hz to MHz", 1420.405751768e6, MHz, 1420.405751768},
		{"Hz to GHz", 89.188525e9, GHz, 89.188525},
		{"unknown falls back to Hz", 42, "unknown", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertFrequency(tt.freqHz, tt.unit)
			if math.Abs(result-tt.expected) > 1e-9*math.Abs(tt.expected) {
				t.Errorf("ConvertFrequency(%g, %s) = %g, want %g", tt.freqHz, tt.unit, result, tt.expected)
			}
			back := ConvertToHz(result, tt.unit)
			if math.Abs(back-tt.freqHz) > 1e-9*math.Abs(tt.freqHz) {
				t.Errorf("round trip through %s: got %g, want %g", tt.unit, back, tt.freqHz)
			}
		})
	}
}
