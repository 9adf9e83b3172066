package model

import (
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
)

// #region spectral-branch
// spectralBranch collapses the cube to its mean spectrum and runs two 1-D
// convolutions with the bands as input channels over a length-1 sequence.
type spectralBranch struct {
	conv1 *conv1d
	bn1   *batchNorm
	conv2 *conv1d
	bn2   *batchNorm
}

func loadSpectral(set *weights.Set, a Architecture) (*spectralBranch, error) {
	var (
		b   spectralBranch
		err error
	)
	if b.conv1, err = loadConv1d(set, "spec_enc.conv1", a.Bands, a.Hidden, spectralKernel1); err != nil {
		return nil, err
	}
	if b.bn1, err = loadBatchNorm(set, "spec_enc.bn1", a.Hidden); err != nil {
		return nil, err
	}
	if b.conv2, err = loadConv1d(set, "spec_enc.conv2", a.Hidden, a.Hidden, spectralKernel2); err != nil {
		return nil, err
	}
	if b.bn2, err = loadBatchNorm(set, "spec_enc.bn2", a.Hidden); err != nil {
		return nil, err
	}
	return &b, nil
}

// forward returns the Hidden-length spectral embedding.
func (b *spectralBranch) forward(c *tensor.Cube) []float64 {
	const length = 1
	x := c.MeanSpectrum()

	h := b.conv1.forward(x, length)
	b.bn1.apply(h, length)
	relu(h)

	h = b.conv2.forward(h, length)
	b.bn2.apply(h, length)
	relu(h)
	return h
}

// #endregion spectral-branch
