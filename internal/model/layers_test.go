package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func randSlice(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// naiveConv2d is the textbook direct convolution, used as a reference.
func naiveConv2d(c *conv2d, x []float64, h, w int) []float64 {
	pad := (c.kernel - 1) / 2
	y := make([]float64, c.out*h*w)
	for o := 0; o < c.out; o++ {
		for r := 0; r < h; r++ {
			for q := 0; q < w; q++ {
				sum := c.b[o]
				for i := 0; i < c.in; i++ {
					for ky := 0; ky < c.kernel; ky++ {
						for kx := 0; kx < c.kernel; kx++ {
							ir, iq := r+ky-pad, q+kx-pad
							if ir < 0 || ir >= h || iq < 0 || iq >= w {
								continue
							}
							sum += x[i*h*w+ir*w+iq] * c.w[((o*c.in+i)*c.kernel+ky)*c.kernel+kx]
						}
					}
				}
				y[o*h*w+r*w+q] = sum
			}
		}
	}
	return y
}

func TestConv2dMatchesDirectConvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := &conv2d{in: 3, out: 4, kernel: 3, w: randSlice(rng, 4*3*9), b: randSlice(rng, 4)}
	h, w := 5, 7
	x := randSlice(rng, 3*h*w)

	got := c.forward(x, h, w)
	want := naiveConv2d(c, x, h, w)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "index %d", i)
	}
}

func TestConv1dLengthOneUsesCenterTap(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	c := &conv1d{in: 6, out: 3, kernel: 5, w: randSlice(rng, 3*6*5), b: randSlice(rng, 3)}
	x := randSlice(rng, 6)

	got := c.forward(x, 1)
	for o := 0; o < 3; o++ {
		want := c.b[o]
		for i := 0; i < 6; i++ {
			want += c.w[(o*6+i)*5+2] * x[i]
		}
		assert.InDelta(t, want, got[o], 1e-12)
	}
}

func TestConv1dSamePadding(t *testing.T) {
	c := &conv1d{in: 1, out: 1, kernel: 3, w: []float64{1, 1, 1}, b: []float64{0}}
	got := c.forward([]float64{1, 2, 3, 4}, 4)
	assert.Equal(t, []float64{3, 6, 9, 7}, got)
}

func TestMaxPool2DropsOddEdge(t *testing.T) {
	x := []float64{
		1, 5, 2, 0, 9,
		3, 4, 8, 1, 9,
		7, 7, 7, 7, 9,
	}
	y, h, w := maxPool2(x, 1, 3, 5)
	assert.Equal(t, 1, h)
	assert.Equal(t, 2, w)
	assert.Equal(t, []float64{5, 8}, y)
}

func TestBatchNormFoldsRunningStats(t *testing.T) {
	set := weights.NewSet()
	set.Put("bn.weight", []int{2}, []float64{2, 1})
	set.Put("bn.bias", []int{2}, []float64{1, 0})
	set.Put("bn.running_mean", []int{2}, []float64{1, -1})
	set.Put("bn.running_var", []int{2}, []float64{4 - batchNormEps, 1 - batchNormEps})

	bn, err := loadBatchNorm(set, "bn", 2)
	require.NoError(t, err)
	x := []float64{3, 5, 0, 1}
	bn.apply(x, 2)
	// channel 0: (x-1)/2*2+1, channel 1: (x+1)/1
	assert.InDeltaSlice(t, []float64{3, 5, 1, 2}, x, 1e-9)
}

func TestBatchNormRejectsNegativeVariance(t *testing.T) {
	set := weights.NewSet()
	set.Put("bn.weight", []int{1}, []float64{1})
	set.Put("bn.bias", []int{1}, []float64{0})
	set.Put("bn.running_mean", []int{1}, []float64{0})
	set.Put("bn.running_var", []int{1}, []float64{-1})
	_, err := loadBatchNorm(set, "bn", 1)
	assert.ErrorIs(t, err, weights.ErrIncompatible)
}

func TestLayerNormStandardizes(t *testing.T) {
	ln := &layerNorm{gamma: []float64{1, 1, 1, 1}, beta: []float64{0, 0, 0, 0}}
	y := ln.forward([]float64{1, 2, 3, 4})
	assert.InDelta(t, 0, floats.Sum(y), 1e-12)
	var sq float64
	for _, v := range y {
		sq += v * v
	}
	assert.InDelta(t, 1, sq/4, 1e-4)
}

func TestGeluAndSigmoid(t *testing.T) {
	x := []float64{-1, 0, 1}
	gelu(x)
	assert.InDelta(t, -0.158655, x[0], 1e-6)
	assert.Equal(t, 0.0, x[1])
	assert.InDelta(t, 0.841345, x[2], 1e-6)

	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 1, sigmoid(800), 1e-12)
	assert.InDelta(t, 0, sigmoid(-800), 1e-12)
}

func TestSoftmaxStable(t *testing.T) {
	p := Softmax([]float64{1000, 1000, 999, -1000})
	assert.InDelta(t, 1, floats.Sum(p), 1e-12)
	assert.InDelta(t, p[0], p[1], 1e-15)
	assert.False(t, math.IsNaN(p[3]))
	assert.Empty(t, Softmax(nil))
}

func TestSingleTokenAttentionIsValueThenProjection(t *testing.T) {
	arch := smallArch()
	set := Init(arch, 11)
	at, err := loadAttention(set, "transformer.transformer_blocks.0.attn", arch)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	x := randSlice(rng, arch.Dim)
	got := at.forward([][]float64{x})[0]

	qkv := at.qkv.forward(x)
	want := at.proj.forward(qkv[2*arch.Dim:])
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestMultiTokenAttentionMixes(t *testing.T) {
	arch := smallArch()
	set := Init(arch, 12)
	at, err := loadAttention(set, "transformer.transformer_blocks.1.attn", arch)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(6))
	a, b := randSlice(rng, arch.Dim), randSlice(rng, arch.Dim)
	alone := at.forward([][]float64{a})[0]
	paired := at.forward([][]float64{a, b})[0]
	assert.NotEqual(t, alone, paired)
}
