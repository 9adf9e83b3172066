package model

import (
	"strconv"

	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
)

// #region spatial-branch
// spatialBranch averages the bands into one plane, then runs three conv/bn/relu
// stages (max-pooling after the first two) and a global average pool.
type spatialBranch struct {
	convs [3]*conv2d
	bns   [3]*batchNorm
}

func loadSpatial(set *weights.Set, a Architecture) (*spatialBranch, error) {
	widths := [4]int{1, a.SpatialWidths[0], a.SpatialWidths[1], a.Hidden}
	var b spatialBranch
	for i := 0; i < 3; i++ {
		conv, err := loadConv2d(set, stagePrefix("conv", i), widths[i], widths[i+1], spatialKernel)
		if err != nil {
			return nil, err
		}
		bn, err := loadBatchNorm(set, stagePrefix("bn", i), widths[i+1])
		if err != nil {
			return nil, err
		}
		b.convs[i], b.bns[i] = conv, bn
	}
	return &b, nil
}

func stagePrefix(kind string, i int) string {
	return "spat_enc." + kind + strconv.Itoa(i+1)
}

// forward returns the Hidden-length spatial embedding.
func (b *spatialBranch) forward(c *tensor.Cube) []float64 {
	h, w := c.Height, c.Width
	x := c.BandMeanPlane()
	for i := 0; i < 3; i++ {
		x = b.convs[i].forward(x, h, w)
		b.bns[i].apply(x, h*w)
		relu(x)
		if i < 2 {
			x, h, w = maxPool2(x, b.convs[i].out, h, w)
		}
	}
	return globalAvgPool(x, b.convs[2].out, h*w)
}

// #endregion spatial-branch
