// Package units provides shared constants and validation for spectral axis units
package units

// Unit constants
const (
	KMS = "km/s"
	MS  = "m/s"
	Hz  = "Hz"
	KHz = "kHz"
	MHz = "MHz"
	GHz = "GHz"
)

// SpeedOfLightKMS is the speed of light in km/s.
const SpeedOfLightKMS = 299792.458

// ValidUnits contains all valid unit values
var ValidUnits = []string{KMS, MS, Hz, KHz, MHz, GHz}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// IsVelocity reports whether unit is one of the velocity units.
func IsVelocity(unit string) bool {
	return unit == KMS || unit == MS
}

// IsFrequency reports whether unit is one of the frequency units.
func IsFrequency(unit string) bool {
	switch unit {
	case Hz, KHz, MHz, GHz:
		return true
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "km/s, m/s, Hz, kHz, MHz, GHz"
}

// frequencyScale returns how many Hz one unit of the given frequency unit holds.
func frequencyScale(unit string) float64 {
	switch unit {
	case KHz:
		return 1e3
	case MHz:
		return 1e6
	case GHz:
		return 1e9
	default:
		return 1
	}
}

// ConvertFrequency converts a frequency in Hz to the target units.
// Unknown units fall back to Hz.
func ConvertFrequency(freqHz float64, targetUnits string) float64 {
	return freqHz / frequencyScale(targetUnits)
}

// ConvertToHz converts a frequency from the given units to Hz.
// Unknown units fall back to returning the input unchanged.
func ConvertToHz(freq float64, fromUnits string) float64 {
	return freq * frequencyScale(fromUnits)
}
