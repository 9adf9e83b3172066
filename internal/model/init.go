package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hyperleaf/hyperleaf-go/internal/weights"
)

// #region params
// ParamKind selects how Init fills a tensor.
type ParamKind int

const (
	KindWeight ParamKind = iota // uniform in ±1/sqrt(fan_in)
	KindBias                    // uniform in ±1/sqrt(fan_in) of the owning layer
	KindNormScale
	KindNormShift
	KindRunningMean
	KindRunningVar
	KindPosition
)

// Param names one tensor of the architecture.
type Param struct {
	Name  string
	Shape []int
	Kind  ParamKind
	FanIn int
}

// Params enumerates every tensor Load consumes, in state-dict order.
func (a Architecture) Params() []Param {
	var ps []Param
	layer := func(prefix string, in, out int, kernel ...int) {
		fan := in
		shape := []int{out, in}
		for _, k := range kernel {
			fan *= k
			shape = append(shape, k)
		}
		ps = append(ps,
			Param{Name: prefix + ".weight", Shape: shape, Kind: KindWeight, FanIn: fan},
			Param{Name: prefix + ".bias", Shape: []int{out}, Kind: KindBias, FanIn: fan},
		)
	}
	linearNoBias := func(prefix string, in, out int) {
		ps = append(ps, Param{Name: prefix + ".weight", Shape: []int{out, in}, Kind: KindWeight, FanIn: in})
	}
	bn := func(prefix string, ch int) {
		ps = append(ps,
			Param{Name: prefix + ".weight", Shape: []int{ch}, Kind: KindNormScale},
			Param{Name: prefix + ".bias", Shape: []int{ch}, Kind: KindNormShift},
			Param{Name: prefix + ".running_mean", Shape: []int{ch}, Kind: KindRunningMean},
			Param{Name: prefix + ".running_var", Shape: []int{ch}, Kind: KindRunningVar},
		)
	}
	ln := func(prefix string, dim int) {
		ps = append(ps,
			Param{Name: prefix + ".weight", Shape: []int{dim}, Kind: KindNormScale},
			Param{Name: prefix + ".bias", Shape: []int{dim}, Kind: KindNormShift},
		)
	}

	layer("spec_enc.conv1", a.Bands, a.Hidden, spectralKernel1)
	bn("spec_enc.bn1", a.Hidden)
	layer("spec_enc.conv2", a.Hidden, a.Hidden, spectralKernel2)
	bn("spec_enc.bn2", a.Hidden)

	widths := [4]int{1, a.SpatialWidths[0], a.SpatialWidths[1], a.Hidden}
	for i := 0; i < 3; i++ {
		layer(stagePrefix("conv", i), widths[i], widths[i+1], spatialKernel, spatialKernel)
		bn(stagePrefix("bn", i), widths[i+1])
	}

	layer("gate", 2*a.Hidden, 2*a.Hidden)
	layer("fc_shared", 2*a.Hidden, a.Dim)

	ps = append(ps, Param{Name: "transformer.pos_embedding", Shape: []int{1, 1, a.Dim}, Kind: KindPosition})
	for i := 0; i < a.Depth; i++ {
		prefix := fmt.Sprintf("transformer.transformer_blocks.%d", i)
		ln(prefix+".norm1", a.Dim)
		linearNoBias(prefix+".attn.qkv", a.Dim, 3*a.Dim)
		layer(prefix+".attn.proj", a.Dim, a.Dim)
		ln(prefix+".norm2", a.Dim)
		layer(prefix+".mlp.0", a.Dim, a.Dim*a.MLPRatio)
		layer(prefix+".mlp.3", a.Dim*a.MLPRatio, a.Dim)
	}

	layer("cls_head", a.Dim, a.Classes)
	layer("reg_head", a.Dim, a.Targets)
	return ps
}

// #endregion params

// #region init
// Init builds a deterministic random parameter set for arch. It stands in for
// trained weights in smoke tests; it is not a training initializer.
func Init(arch Architecture, seed int64) *weights.Set {
	rng := rand.New(rand.NewSource(seed))
	uniform := func(lo, hi float64) float64 { return lo + (hi-lo)*rng.Float64() }

	set := weights.NewSet()
	for _, p := range arch.Params() {
		n := 1
		for _, d := range p.Shape {
			n *= d
		}
		vals := make([]float64, n)
		for i := range vals {
			switch p.Kind {
			case KindWeight, KindBias:
				bound := 1 / math.Sqrt(float64(p.FanIn))
				vals[i] = uniform(-bound, bound)
			case KindNormScale:
				vals[i] = uniform(0.8, 1.2)
			case KindNormShift, KindRunningMean:
				vals[i] = uniform(-0.1, 0.1)
			case KindRunningVar:
				vals[i] = uniform(0.5, 1.5)
			case KindPosition:
				vals[i] = rng.NormFloat64() * 0.02
			}
		}
		set.Put(p.Name, p.Shape, vals)
	}
	return set
}

// #endregion init
