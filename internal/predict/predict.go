package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"go.uber.org/zap"
)

// #region predictor
// Predictor is the inference boundary. It holds a read-only model shared by
// every call; a Predictor built without a model reports ErrModelNotLoaded.
type Predictor struct {
	model  *model.Model
	bands  int
	policy tensor.RescalePolicy
	logger *zap.Logger
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithRescalePolicy overrides the input rescaling heuristic.
func WithRescalePolicy(p tensor.RescalePolicy) Option {
	return func(pr *Predictor) { pr.policy = p }
}

// WithLogger attaches a logger for debug timings.
func WithLogger(l *zap.Logger) Option {
	return func(pr *Predictor) { pr.logger = l }
}

// New wraps m. A nil m is allowed; such a predictor fails every call.
func New(m *model.Model, opts ...Option) (*Predictor, error) {
	p := &Predictor{
		model:  m,
		bands:  model.DefaultArchitecture().Bands,
		policy: tensor.RescaleMaxAboveOne,
		logger: zap.NewNop(),
	}
	if m != nil {
		arch := m.Architecture()
		if arch.Classes != NumClasses || arch.Targets != agronomy.NumTargets {
			return nil, &weights.IncompatibleError{
				Reason: fmt.Sprintf("model emits %d classes and %d targets, want %d and %d",
					arch.Classes, arch.Targets, NumClasses, agronomy.NumTargets),
			}
		}
		p.bands = arch.Bands
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Loaded reports whether weights are bound.
func (p *Predictor) Loaded() bool {
	return p != nil && p.model != nil
}

// #endregion predictor

// #region infer
// Infer validates the cube, applies the rescale policy, runs the network and
// converts its outputs to probabilities and physical traits.
func (p *Predictor) Infer(ctx context.Context, cube *tensor.Cube) (Inference, error) {
	if !p.Loaded() {
		return Inference{}, ErrModelNotLoaded
	}
	if err := cube.Validate(p.bands); err != nil {
		return Inference{}, err
	}

	start := time.Now()
	input, rescaled := p.policy.Apply(cube)
	if rescaled {
		p.logger.Debug("rescaled input by its maximum", zap.Float32("max", cube.Max()))
	}

	out, err := p.model.Forward(ctx, input)
	if err != nil {
		return Inference{}, fmt.Errorf("forward: %w", err)
	}

	inf := Inference{
		MeanSpectrum: cube.MeanSpectrum(),
		Rescaled:     rescaled,
	}
	copy(inf.Logits[:], out.Logits)
	copy(inf.Probabilities[:], model.Softmax(out.Logits))
	copy(inf.RegressionRaw[:], out.Regression)

	inf.ClassIndex = argmax(inf.Probabilities[:])
	inf.Cultivar = Cultivars[inf.ClassIndex]
	inf.Confidence = inf.Probabilities[inf.ClassIndex]
	inf.Traits = agronomy.TraitsFrom(agronomy.Denormalize(inf.RegressionRaw))

	p.logger.Debug("inference complete",
		zap.String("cultivar", inf.Cultivar),
		zap.Float64("confidence", inf.Confidence),
		zap.Duration("elapsed", time.Since(start)))
	return inf, nil
}

// #endregion infer

// #region predict
// Predict runs Infer and derives farming metrics for the field.
func (p *Predictor) Predict(ctx context.Context, cube *tensor.Cube, field Field) (Result, error) {
	// Reject bad field inputs before paying for a forward pass.
	if _, err := agronomy.Compute(0, 0, field.AreaAcres, field.FertilizerRateInr); err != nil {
		return Result{}, err
	}
	inf, err := p.Infer(ctx, cube)
	if err != nil {
		return Result{}, err
	}
	metrics, err := agronomy.ComputeFor(inf.Traits, field.AreaAcres, field.FertilizerRateInr)
	if err != nil {
		return Result{}, err
	}
	return Result{Inference: inf, Field: field, Metrics: metrics}, nil
}

// #endregion predict

// #region helpers
// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// #endregion helpers
