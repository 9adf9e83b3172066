package weights

import (
	"errors"
	"fmt"
)

// #region constants
const (
	// Format identifies a FusionNet parameter blob in the __metadata__ header.
	Format = "hyperleaf-fusionnet"
	// Version is the parameter layout revision this build understands.
	Version = "1"
)

// #endregion constants

// #region tensor
// Tensor is a named parameter with its shape, values widened to float64.
type Tensor struct {
	Shape  []int
	Values []float64
}

// Len is the element count implied by Shape.
func (t *Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// #endregion tensor

// #region errors
// ErrIncompatible is the sentinel matched by every IncompatibleError.
var ErrIncompatible = errors.New("incompatible weights")

// IncompatibleError reports a parameter blob that does not fit the architecture.
type IncompatibleError struct {
	Name   string
	Got    []int
	Want   []int
	Reason string
}

func (e *IncompatibleError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("incompatible weights: %s", e.Reason)
	}
	if e.Want != nil {
		return fmt.Sprintf("incompatible weights: %s: %s (got %v, want %v)", e.Name, e.Reason, e.Got, e.Want)
	}
	return fmt.Sprintf("incompatible weights: %s: %s", e.Name, e.Reason)
}

func (e *IncompatibleError) Unwrap() error { return ErrIncompatible }

// #endregion errors
