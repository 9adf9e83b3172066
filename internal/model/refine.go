package model

import (
	"fmt"
	"math"

	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"gonum.org/v1/gonum/floats"
)

// #region attention
// attention is multi-head scaled dot-product self-attention with a fused,
// bias-free qkv projection laid out [q | k | v], each head-major.
type attention struct {
	dim, heads, headDim int
	scale               float64
	qkv                 *linear
	proj                *linear
}

func loadAttention(set *weights.Set, prefix string, a Architecture) (*attention, error) {
	qkv, err := loadLinear(set, prefix+".qkv", a.Dim, 3*a.Dim, false)
	if err != nil {
		return nil, err
	}
	proj, err := loadLinear(set, prefix+".proj", a.Dim, a.Dim, true)
	if err != nil {
		return nil, err
	}
	return &attention{
		dim:     a.Dim,
		heads:   a.Heads,
		headDim: a.HeadDim(),
		scale:   math.Pow(float64(a.HeadDim()), -0.5),
		qkv:     qkv,
		proj:    proj,
	}, nil
}

// forward attends every token to every token. The refinement stage only ever
// passes one token, where the softmax weight is 1 but the value and output
// projections still transform the signal.
func (at *attention) forward(tokens [][]float64) [][]float64 {
	n := len(tokens)
	qkv := make([][]float64, n)
	for i, t := range tokens {
		qkv[i] = at.qkv.forward(t)
	}

	mixed := make([][]float64, n)
	for i := range mixed {
		mixed[i] = make([]float64, at.dim)
	}
	scores := make([]float64, n)
	for h := 0; h < at.heads; h++ {
		off := h * at.headDim
		for i := 0; i < n; i++ {
			q := qkv[i][off : off+at.headDim]
			for j := 0; j < n; j++ {
				k := qkv[j][at.dim+off : at.dim+off+at.headDim]
				scores[j] = floats.Dot(q, k) * at.scale
			}
			probs := Softmax(scores)
			dst := mixed[i][off : off+at.headDim]
			for j := 0; j < n; j++ {
				v := qkv[j][2*at.dim+off : 2*at.dim+off+at.headDim]
				floats.AddScaled(dst, probs[j], v)
			}
		}
	}

	out := make([][]float64, n)
	for i := range mixed {
		out[i] = at.proj.forward(mixed[i])
	}
	return out
}

// #endregion attention

// #region feed-forward
type feedForward struct {
	fc1 *linear
	fc2 *linear
}

func loadFeedForward(set *weights.Set, prefix string, a Architecture) (*feedForward, error) {
	hidden := a.Dim * a.MLPRatio
	// Indices follow the training Sequential: Linear, GELU, Dropout, Linear, Dropout.
	fc1, err := loadLinear(set, prefix+".0", a.Dim, hidden, true)
	if err != nil {
		return nil, err
	}
	fc2, err := loadLinear(set, prefix+".3", hidden, a.Dim, true)
	if err != nil {
		return nil, err
	}
	return &feedForward{fc1: fc1, fc2: fc2}, nil
}

func (ff *feedForward) forward(x []float64) []float64 {
	h := ff.fc1.forward(x)
	gelu(h)
	return ff.fc2.forward(h)
}

// #endregion feed-forward

// #region block
// block is a pre-norm transformer block: x += attn(norm1(x)); x += mlp(norm2(x)).
type block struct {
	norm1 *layerNorm
	attn  *attention
	norm2 *layerNorm
	mlp   *feedForward
}

func loadBlock(set *weights.Set, i int, a Architecture) (*block, error) {
	prefix := fmt.Sprintf("transformer.transformer_blocks.%d", i)
	var (
		b   block
		err error
	)
	if b.norm1, err = loadLayerNorm(set, prefix+".norm1", a.Dim); err != nil {
		return nil, err
	}
	if b.attn, err = loadAttention(set, prefix+".attn", a); err != nil {
		return nil, err
	}
	if b.norm2, err = loadLayerNorm(set, prefix+".norm2", a.Dim); err != nil {
		return nil, err
	}
	if b.mlp, err = loadFeedForward(set, prefix+".mlp", a); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *block) forward(tokens [][]float64) {
	normed := make([][]float64, len(tokens))
	for i, t := range tokens {
		normed[i] = b.norm1.forward(t)
	}
	for i, d := range b.attn.forward(normed) {
		floats.Add(tokens[i], d)
	}
	for _, t := range tokens {
		floats.Add(t, b.mlp.forward(b.norm2.forward(t)))
	}
}

// #endregion block

// #region refinement
// refinement treats the fused embedding as a one-token sequence, adds the
// learned positional bias, and runs the block stack.
type refinement struct {
	pos    []float64
	blocks []*block
}

func loadRefinement(set *weights.Set, a Architecture) (*refinement, error) {
	pos, err := set.Take("transformer.pos_embedding", 1, 1, a.Dim)
	if err != nil {
		return nil, err
	}
	r := &refinement{pos: pos, blocks: make([]*block, a.Depth)}
	for i := range r.blocks {
		if r.blocks[i], err = loadBlock(set, i, a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *refinement) forward(fused []float64) []float64 {
	token := make([]float64, len(fused))
	floats.AddTo(token, fused, r.pos)
	tokens := [][]float64{token}
	for _, b := range r.blocks {
		b.forward(tokens)
	}
	return tokens[0]
}

// #endregion refinement
