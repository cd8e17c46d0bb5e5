package models

import (
	"errors"
	"fmt"
)

// ErrComputation marks a model evaluation that produced an invalid value.
var ErrComputation = errors.New("model computation error")

// ComputationError reports the first output sample that came out as NaN.
type ComputationError struct {
	Model string
	Index int
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s model has a NAN", e.Model)
}

// Unwrap lets errors.Is match ErrComputation.
func (e *ComputationError) Unwrap() error {
	return ErrComputation
}
