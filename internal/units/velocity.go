package units

// ConvertVelocity converts a velocity from km/s to the target units.
// Unknown units fall back to km/s.
func ConvertVelocity(velocityKMS float64, targetUnits string) float64 {
	switch targetUnits {
	case MS:
		return velocityKMS * 1000
	default:
		return velocityKMS
	}
}

// ConvertToKMS converts a velocity from the given units to km/s.
func ConvertToKMS(velocity float64, fromUnits string) float64 {
	switch fromUnits {
	case MS:
		return velocity / 1000
	default:
		return velocity
	}
}

// FrequencyFromVelocity maps a radio-convention velocity (km/s) to the
// observed frequency in Hz for a line with rest frequency restHz.
func FrequencyFromVelocity(velocityKMS, restHz float64) float64 {
	return restHz * (1 - velocityKMS/SpeedOfLightKMS)
}

// VelocityFromFrequency is the inverse of FrequencyFromVelocity.
func VelocityFromFrequency(freqHz, restHz float64) float64 {
	return SpeedOfLightKMS * (1 - freqHz/restHz)
}
