package model

import (
	"fmt"
	"math"

	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Buffers are flattened channel-major: a [C, H, W] activation is
// x[c*H*W + y*W + x]. Every forward call allocates its own outputs;
// loaded layers are never written after construction.

const (
	batchNormEps = 1e-5
	layerNormEps = 1e-5
)

// #region linear
// linear is y = W x + b with W stored [out, in] as in a state dict.
type linear struct {
	in, out int
	w       *mat.Dense
	b       *mat.VecDense // nil when the layer has no bias
}

func loadLinear(set *weights.Set, prefix string, in, out int, bias bool) (*linear, error) {
	w, err := set.Take(prefix+".weight", out, in)
	if err != nil {
		return nil, err
	}
	l := &linear{in: in, out: out, w: mat.NewDense(out, in, w)}
	if bias {
		b, err := set.Take(prefix+".bias", out)
		if err != nil {
			return nil, err
		}
		l.b = mat.NewVecDense(out, b)
	}
	return l, nil
}

func (l *linear) forward(x []float64) []float64 {
	y := mat.NewVecDense(l.out, nil)
	y.MulVec(l.w, mat.NewVecDense(l.in, x))
	if l.b != nil {
		y.AddVec(y, l.b)
	}
	return y.RawVector().Data
}

// #endregion linear

// #region batch-norm
// batchNorm uses frozen running statistics, folded into a per-channel affine map.
type batchNorm struct {
	scale []float64
	shift []float64
}

func loadBatchNorm(set *weights.Set, prefix string, channels int) (*batchNorm, error) {
	gamma, err := set.Take(prefix+".weight", channels)
	if err != nil {
		return nil, err
	}
	beta, err := set.Take(prefix+".bias", channels)
	if err != nil {
		return nil, err
	}
	mean, err := set.Take(prefix+".running_mean", channels)
	if err != nil {
		return nil, err
	}
	variance, err := set.Take(prefix+".running_var", channels)
	if err != nil {
		return nil, err
	}
	bn := &batchNorm{scale: make([]float64, channels), shift: make([]float64, channels)}
	for c := 0; c < channels; c++ {
		if variance[c] < 0 {
			return nil, &weights.IncompatibleError{Name: prefix + ".running_var", Reason: fmt.Sprintf("negative variance at channel %d", c)}
		}
		bn.scale[c] = gamma[c] / math.Sqrt(variance[c]+batchNormEps)
		bn.shift[c] = beta[c] - mean[c]*bn.scale[c]
	}
	return bn, nil
}

// apply normalizes x in place, where each channel spans size consecutive values.
func (bn *batchNorm) apply(x []float64, size int) {
	for c := range bn.scale {
		seg := x[c*size : (c+1)*size]
		floats.Scale(bn.scale[c], seg)
		floats.AddConst(bn.shift[c], seg)
	}
}

// #endregion batch-norm

// #region layer-norm
type layerNorm struct {
	gamma []float64
	beta  []float64
}

func loadLayerNorm(set *weights.Set, prefix string, dim int) (*layerNorm, error) {
	gamma, err := set.Take(prefix+".weight", dim)
	if err != nil {
		return nil, err
	}
	beta, err := set.Take(prefix+".bias", dim)
	if err != nil {
		return nil, err
	}
	return &layerNorm{gamma: gamma, beta: beta}, nil
}

// forward returns a normalized copy of x using the biased variance.
func (ln *layerNorm) forward(x []float64) []float64 {
	n := float64(len(x))
	mean := floats.Sum(x) / n
	var variance float64
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= n
	inv := 1 / math.Sqrt(variance+layerNormEps)

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v-mean)*inv*ln.gamma[i] + ln.beta[i]
	}
	return out
}

// #endregion layer-norm

// #region conv1d
// conv1d is a stride-1 convolution with same-length zero padding.
type conv1d struct {
	in, out, kernel int
	w               []float64 // [out, in, kernel]
	b               []float64
}

func loadConv1d(set *weights.Set, prefix string, in, out, kernel int) (*conv1d, error) {
	w, err := set.Take(prefix+".weight", out, in, kernel)
	if err != nil {
		return nil, err
	}
	b, err := set.Take(prefix+".bias", out)
	if err != nil {
		return nil, err
	}
	return &conv1d{in: in, out: out, kernel: kernel, w: w, b: b}, nil
}

// forward maps [in, length] to [out, length].
func (c *conv1d) forward(x []float64, length int) []float64 {
	pad := (c.kernel - 1) / 2
	y := make([]float64, c.out*length)
	for o := 0; o < c.out; o++ {
		row := y[o*length : (o+1)*length]
		for t := range row {
			row[t] = c.b[o]
		}
		for i := 0; i < c.in; i++ {
			src := x[i*length : (i+1)*length]
			taps := c.w[(o*c.in+i)*c.kernel : (o*c.in+i+1)*c.kernel]
			for k, wk := range taps {
				shift := k - pad
				for t := range row {
					s := t + shift
					if s >= 0 && s < length {
						row[t] += wk * src[s]
					}
				}
			}
		}
	}
	return y
}

// #endregion conv1d

// #region conv2d
// conv2d is a stride-1 square-kernel convolution with same-size zero padding.
type conv2d struct {
	in, out, kernel int
	w               []float64 // [out, in, kernel, kernel]
	b               []float64
}

func loadConv2d(set *weights.Set, prefix string, in, out, kernel int) (*conv2d, error) {
	w, err := set.Take(prefix+".weight", out, in, kernel, kernel)
	if err != nil {
		return nil, err
	}
	b, err := set.Take(prefix+".bias", out)
	if err != nil {
		return nil, err
	}
	return &conv2d{in: in, out: out, kernel: kernel, w: w, b: b}, nil
}

// forward maps [in, h, w] to [out, h, w]. Each kernel tap is applied as a
// shifted multiply-add over the whole plane so the inner loop stays contiguous.
func (c *conv2d) forward(x []float64, h, w int) []float64 {
	pad := (c.kernel - 1) / 2
	plane := h * w
	y := make([]float64, c.out*plane)
	for o := 0; o < c.out; o++ {
		dst := y[o*plane : (o+1)*plane]
		for i := range dst {
			dst[i] = c.b[o]
		}
		for i := 0; i < c.in; i++ {
			src := x[i*plane : (i+1)*plane]
			base := (o*c.in + i) * c.kernel * c.kernel
			for ky := 0; ky < c.kernel; ky++ {
				dy := ky - pad
				y0, y1 := max(0, -dy), min(h, h-dy)
				for kx := 0; kx < c.kernel; kx++ {
					wk := c.w[base+ky*c.kernel+kx]
					dx := kx - pad
					x0, x1 := max(0, -dx), min(w, w-dx)
					for row := y0; row < y1; row++ {
						d := dst[row*w+x0 : row*w+x1]
						s := src[(row+dy)*w+x0+dx : (row+dy)*w+x1+dx]
						floats.AddScaled(d, wk, s)
					}
				}
			}
		}
	}
	return y
}

// #endregion conv2d

// #region pooling
// maxPool2 applies 2x2 max pooling with stride 2, dropping an odd trailing row or column.
func maxPool2(x []float64, channels, h, w int) ([]float64, int, int) {
	oh, ow := h/2, w/2
	y := make([]float64, channels*oh*ow)
	for c := 0; c < channels; c++ {
		src := x[c*h*w:]
		dst := y[c*oh*ow:]
		for r := 0; r < oh; r++ {
			for q := 0; q < ow; q++ {
				i := 2*r*w + 2*q
				dst[r*ow+q] = max(src[i], src[i+1], src[i+w], src[i+w+1])
			}
		}
	}
	return y, oh, ow
}

// globalAvgPool reduces each channel of size values to its mean.
func globalAvgPool(x []float64, channels, size int) []float64 {
	y := make([]float64, channels)
	for c := range y {
		y[c] = floats.Sum(x[c*size:(c+1)*size]) / float64(size)
	}
	return y
}

// #endregion pooling

// #region activations
func relu(x []float64) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// gelu is the exact erf form.
func gelu(x []float64) {
	for i, v := range x {
		x[i] = 0.5 * v * (1 + math.Erf(v/math.Sqrt2))
	}
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

// Softmax returns a numerically stable softmax of logits.
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	m := floats.Max(logits)
	for i, v := range logits {
		out[i] = math.Exp(v - m)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// #endregion activations
