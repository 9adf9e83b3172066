package tensor

import (
	"errors"
	"fmt"
)

// #region cube
// Cube is a hyperspectral image stored band-major: Data[b*Height*Width + y*Width + x].
type Cube struct {
	Bands  int
	Height int
	Width  int
	Data   []float32
}

// Shape returns the (band, height, width) dimensions.
func (c *Cube) Shape() []int {
	return []int{c.Bands, c.Height, c.Width}
}

// PlaneSize is the number of pixels in a single band.
func (c *Cube) PlaneSize() int {
	return c.Height * c.Width
}

// #endregion cube

// #region errors
// ErrShape is the sentinel matched by every ShapeError.
var ErrShape = errors.New("shape error")

// ShapeError reports a malformed or mis-shaped input tensor.
type ShapeError struct {
	Got    []int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error: %s (got %v)", e.Reason, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// #endregion errors
