package tensor

import "fmt"

// #region policy
// RescalePolicy decides how an incoming cube is brought into [0,1] before inference.
//
// RescaleMaxAboveOne divides by the cube's own maximum when that maximum exceeds 1.
// It is a per-image heuristic, not the statistics the network was trained with:
// two images with different dynamic ranges are scaled differently.
type RescalePolicy string

const (
	RescaleMaxAboveOne RescalePolicy = "max_above_one"
	RescaleNone        RescalePolicy = "none"
)

// ParseRescalePolicy accepts the config spelling of a policy. Empty means the default.
func ParseRescalePolicy(s string) (RescalePolicy, error) {
	switch RescalePolicy(s) {
	case "", RescaleMaxAboveOne:
		return RescaleMaxAboveOne, nil
	case RescaleNone:
		return RescaleNone, nil
	}
	return "", fmt.Errorf("unknown rescale policy %q", s)
}

// Apply returns the cube to feed the network and whether it was rescaled.
// The input is never mutated; when rescaling happens a new cube is returned.
func (p RescalePolicy) Apply(c *Cube) (*Cube, bool) {
	if p != RescaleMaxAboveOne {
		return c, false
	}
	m := c.Max()
	if m <= 1 {
		return c, false
	}
	out := &Cube{Bands: c.Bands, Height: c.Height, Width: c.Width, Data: make([]float32, len(c.Data))}
	for i, v := range c.Data {
		out.Data[i] = v / m
	}
	return out, true
}

// #endregion policy
