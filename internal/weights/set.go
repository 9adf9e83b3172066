package weights

import (
	"slices"
	"sort"
	"strings"
)

// #region set
// Set is a decoded parameter blob. It is consumed once by a model loader;
// Take marks tensors as used so leftovers can be reported.
type Set struct {
	Metadata map[string]string
	tensors  map[string]*Tensor
	taken    map[string]bool
}

// NewSet returns an empty set stamped with the current format and version.
func NewSet() *Set {
	return &Set{
		Metadata: map[string]string{"format": Format, "version": Version},
		tensors:  make(map[string]*Tensor),
		taken:    make(map[string]bool),
	}
}

// Put stores a tensor, replacing any previous one with the same name.
func (s *Set) Put(name string, shape []int, values []float64) {
	s.tensors[name] = &Tensor{Shape: append([]int(nil), shape...), Values: values}
}

// Get returns a tensor without marking it used.
func (s *Set) Get(name string) (*Tensor, bool) {
	t, ok := s.tensors[name]
	return t, ok
}

// Names lists tensor names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tensors))
	for n := range s.tensors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Take returns the values of name after checking its shape.
func (s *Set) Take(name string, shape ...int) ([]float64, error) {
	t, ok := s.tensors[name]
	if !ok {
		return nil, &IncompatibleError{Name: name, Want: shape, Reason: "missing tensor"}
	}
	if !slices.Equal(t.Shape, shape) {
		return nil, &IncompatibleError{Name: name, Got: t.Shape, Want: shape, Reason: "shape mismatch"}
	}
	s.taken[name] = true
	return t.Values, nil
}

// Unused lists tensors never taken, ignoring batch-norm step counters.
func (s *Set) Unused() []string {
	var out []string
	for _, n := range s.Names() {
		if s.taken[n] || strings.HasSuffix(n, ".num_batches_tracked") {
			continue
		}
		out = append(out, n)
	}
	return out
}

// CheckMetadata verifies the blob declares this build's format and version.
// A blob with no metadata at all is accepted as a bare state dict.
func (s *Set) CheckMetadata() error {
	if len(s.Metadata) == 0 {
		return nil
	}
	if f := s.Metadata["format"]; f != "" && f != Format {
		return &IncompatibleError{Reason: "unknown format " + f}
	}
	if v := s.Metadata["version"]; v != "" && v != Version {
		return &IncompatibleError{Reason: "unsupported version " + v}
	}
	return nil
}

// NumParams sums the element counts of every tensor.
func (s *Set) NumParams() int {
	var n int
	for _, t := range s.tensors {
		n += len(t.Values)
	}
	return n
}

// #endregion set
