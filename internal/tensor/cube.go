package tensor

import (
	"fmt"
)

// #region constructor
// NewCube wraps data as a (band, height, width) cube. The slice is not copied.
func NewCube(shape []int, data []float32) (*Cube, error) {
	if len(shape) != 3 {
		return nil, &ShapeError{Got: append([]int(nil), shape...), Reason: fmt.Sprintf("expected 3 dimensions, got %d", len(shape))}
	}
	for _, d := range shape {
		if d <= 0 {
			return nil, &ShapeError{Got: append([]int(nil), shape...), Reason: "dimensions must be positive"}
		}
	}
	want, ok := elementCount(shape)
	if !ok {
		return nil, &ShapeError{Got: append([]int(nil), shape...), Reason: "element count too large"}
	}
	if len(data) != want {
		return nil, &ShapeError{Got: append([]int(nil), shape...), Reason: fmt.Sprintf("data length %d does not match %d elements", len(data), want)}
	}
	return &Cube{Bands: shape[0], Height: shape[1], Width: shape[2], Data: data}, nil
}

// elementCount multiplies positive dimensions, failing once the product
// exceeds maxRawElements.
func elementCount(shape []int) (int, bool) {
	n := 1
	for _, d := range shape {
		if d <= 0 || d > maxRawElements/n {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// Zeros allocates a zero-filled cube.
func Zeros(bands, height, width int) *Cube {
	return &Cube{Bands: bands, Height: height, Width: width, Data: make([]float32, bands*height*width)}
}

// #endregion constructor

// #region validate
// Validate checks the cube is internally consistent and carries the expected band count.
// Height and width are free, but must survive two 2x2 poolings.
func (c *Cube) Validate(bands int) error {
	if c == nil {
		return &ShapeError{Reason: "nil cube"}
	}
	if n, ok := elementCount(c.Shape()); !ok || len(c.Data) != n {
		return &ShapeError{Got: c.Shape(), Reason: "inconsistent cube dimensions"}
	}
	if c.Bands != bands {
		return &ShapeError{Got: c.Shape(), Reason: fmt.Sprintf("band axis must be %d", bands)}
	}
	if c.Height < 4 || c.Width < 4 {
		return &ShapeError{Got: c.Shape(), Reason: "height and width must be at least 4"}
	}
	return nil
}

// #endregion validate

// #region stats
// Max returns the largest element. An empty cube returns 0.
func (c *Cube) Max() float32 {
	if len(c.Data) == 0 {
		return 0
	}
	m := c.Data[0]
	for _, v := range c.Data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Clone returns a deep copy.
func (c *Cube) Clone() *Cube {
	data := make([]float32, len(c.Data))
	copy(data, c.Data)
	return &Cube{Bands: c.Bands, Height: c.Height, Width: c.Width, Data: data}
}

// MeanSpectrum averages each band over its spatial plane.
func (c *Cube) MeanSpectrum() []float64 {
	plane := c.PlaneSize()
	out := make([]float64, c.Bands)
	for b := 0; b < c.Bands; b++ {
		var sum float64
		for _, v := range c.Data[b*plane : (b+1)*plane] {
			sum += float64(v)
		}
		out[b] = sum / float64(plane)
	}
	return out
}

// BandMeanPlane averages every pixel across bands, giving a Height*Width plane.
func (c *Cube) BandMeanPlane() []float64 {
	plane := c.PlaneSize()
	out := make([]float64, plane)
	for b := 0; b < c.Bands; b++ {
		for i, v := range c.Data[b*plane : (b+1)*plane] {
			out[i] += float64(v)
		}
	}
	inv := 1 / float64(c.Bands)
	for i := range out {
		out[i] *= inv
	}
	return out
}

// #endregion stats
