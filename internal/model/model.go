package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"golang.org/x/sync/errgroup"
)

// #region model
// Model is a loaded FusionNet. It is immutable after Load and safe for
// concurrent Forward calls; each call allocates its own activations.
type Model struct {
	arch     Architecture
	spectral *spectralBranch
	spatial  *spatialBranch
	fusion   *gatedFusion
	refine   *refinement
	heads    *heads

	// Sequential disables running the two branches on separate goroutines.
	sequential bool
}

// Option configures a Model at load time.
type Option func(*Model)

// WithSequentialBranches evaluates the spectral and spatial branches one after the other.
func WithSequentialBranches() Option {
	return func(m *Model) { m.sequential = true }
}

// #endregion model

// #region load
// Load binds a parameter set to the architecture. Every tensor the architecture
// needs must be present with the exact shape, and no unknown tensors may remain.
func Load(set *weights.Set, arch Architecture, opts ...Option) (*Model, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	if err := set.CheckMetadata(); err != nil {
		return nil, err
	}

	m := &Model{arch: arch}
	var err error
	if m.spectral, err = loadSpectral(set, arch); err != nil {
		return nil, fmt.Errorf("load spectral branch: %w", err)
	}
	if m.spatial, err = loadSpatial(set, arch); err != nil {
		return nil, fmt.Errorf("load spatial branch: %w", err)
	}
	if m.fusion, err = loadFusion(set, arch); err != nil {
		return nil, fmt.Errorf("load fusion: %w", err)
	}
	if m.refine, err = loadRefinement(set, arch); err != nil {
		return nil, fmt.Errorf("load refinement: %w", err)
	}
	if m.heads, err = loadHeads(set, arch); err != nil {
		return nil, fmt.Errorf("load heads: %w", err)
	}
	if unused := set.Unused(); len(unused) > 0 {
		return nil, &weights.IncompatibleError{Reason: "unexpected tensors: " + strings.Join(unused, ", ")}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// LoadFile reads a parameter blob from path and binds it.
func LoadFile(path string, arch Architecture, opts ...Option) (*Model, error) {
	set, err := weights.Load(path)
	if err != nil {
		return nil, err
	}
	return Load(set, arch, opts...)
}

// Architecture returns the layout the model was loaded with.
func (m *Model) Architecture() Architecture {
	return m.arch
}

// #endregion load

// #region forward
// Forward runs one cube through both branches, fusion, refinement and heads.
// The cube must already be normalized; Forward only checks its shape.
func (m *Model) Forward(ctx context.Context, c *tensor.Cube) (Output, error) {
	if err := c.Validate(m.arch.Bands); err != nil {
		return Output{}, err
	}

	var spectral, spatial []float64
	if m.sequential {
		spectral = m.spectral.forward(c)
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		spatial = m.spatial.forward(c)
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			spectral = m.spectral.forward(c)
			return gctx.Err()
		})
		g.Go(func() error {
			spatial = m.spatial.forward(c)
			return gctx.Err()
		})
		if err := g.Wait(); err != nil {
			return Output{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	fused := m.fusion.forward(spectral, spatial)
	refined := m.refine.forward(fused)
	return m.heads.forward(refined), nil
}

// #endregion forward
