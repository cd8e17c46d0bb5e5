package models

import "math"

// Physical constants in cgs units.
const (
	PlanckH    = 6.6260755e-27 // erg s
	BoltzmannK = 1.380658e-16  // erg/K
)

// JFunc returns the Planck function at frequency nu (Hz) for temperature t (K),
// expressed as a brightness temperature:
//
//	J(t, nu) = (h nu / k) / (exp(h nu / (k t)) - 1)
//
// There is no bounds checking; t <= 0 gives whatever the floating-point
// arithmetic gives.
func JFunc(t, nu float64) float64 {
	to := PlanckH * nu / BoltzmannK
	return to / (math.Exp(to/t) - 1.0)
}

// JFuncSlice applies JFunc element-wise over nu and returns a new slice.
func JFuncSlice(t float64, nu []float64) []float64 {
	out := make([]float64, len(nu))
	for i, f := range nu {
		out[i] = JFunc(t, f)
	}
	return out
}
