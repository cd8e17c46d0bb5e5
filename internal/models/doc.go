// Package models contains closed-form spectral line models and the metadata
// a fitting engine needs to drive them.
//
// Each model implements Model: it names itself, publishes an immutable
// Descriptor (parameter names, limits, display symbols, guess hints), and
// evaluates a synthetic spectrum on a spectral.Axis for a parameter vector.
// Models are plain values with no state between calls, so a single instance
// may be shared by any number of goroutines.
package models
