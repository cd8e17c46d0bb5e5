package models

import (
	"errors"
	"fmt"

	"github.com/banshee-data/lineprofile/internal/spectral"
)

// ErrParameterCount is returned when a parameter vector does not match the
// model's parameter count.
var ErrParameterCount = errors.New("wrong number of parameters")

// Model is a spectral line model a fitting engine can evaluate.
type Model interface {
	// Name is the registry key of the model.
	Name() string
	// Descriptor returns the model's static parameter metadata.
	Descriptor() *Descriptor
	// Evaluate returns one predicted brightness temperature per axis sample.
	// params are ordered as Descriptor().ParNames().
	Evaluate(x spectral.Axis, params []float64) ([]float64, error)
}

// BackgroundModel is a Model with a fixed, non-fitted background
// temperature that callers may override.
type BackgroundModel interface {
	Model
	WithBackground(tbg float64) Model
}

func checkParamCount(d *Descriptor, params []float64) error {
	if len(params) != d.NumParams() {
		return fmt.Errorf("%s: %w: got %d, want %d", d.Name(), ErrParameterCount, len(params), d.NumParams())
	}
	return nil
}
