// Package modeltest provides a small randomly initialised FusionNet for tests
// in packages that sit above the model.
package modeltest

import (
	"math/rand"
	"testing"

	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
)

// Architecture is a shrunken FusionNet that keeps the real head sizes.
func Architecture() model.Architecture {
	return model.Architecture{
		Bands:         6,
		Hidden:        8,
		SpatialWidths: [2]int{4, 6},
		Dim:           16,
		Depth:         2,
		Heads:         4,
		MLPRatio:      2,
		Classes:       4,
		Targets:       4,
	}
}

// Load returns a model built from Init(Architecture(), seed).
func Load(t testing.TB, seed int64, opts ...model.Option) *model.Model {
	t.Helper()
	arch := Architecture()
	m, err := model.Load(model.Init(arch, seed), arch, opts...)
	if err != nil {
		t.Fatalf("load test model: %v", err)
	}
	return m
}

// Cube returns a deterministic cube with values in [0, scale).
func Cube(seed int64, bands, h, w int, scale float32) *tensor.Cube {
	rng := rand.New(rand.NewSource(seed))
	c := tensor.Zeros(bands, h, w)
	for i := range c.Data {
		c.Data[i] = rng.Float32() * scale
	}
	return c
}
