package model

import "github.com/hyperleaf/hyperleaf-go/internal/weights"

// #region heads
// heads projects the refined embedding to class logits and normalized regression targets.
// Neither projection has an activation.
type heads struct {
	cls *linear
	reg *linear
}

func loadHeads(set *weights.Set, a Architecture) (*heads, error) {
	cls, err := loadLinear(set, "cls_head", a.Dim, a.Classes, true)
	if err != nil {
		return nil, err
	}
	reg, err := loadLinear(set, "reg_head", a.Dim, a.Targets, true)
	if err != nil {
		return nil, err
	}
	return &heads{cls: cls, reg: reg}, nil
}

func (h *heads) forward(x []float64) Output {
	return Output{Logits: h.cls.forward(x), Regression: h.reg.forward(x)}
}

// #endregion heads
