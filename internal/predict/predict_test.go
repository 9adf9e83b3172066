package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/model"
	"github.com/hyperleaf/hyperleaf-go/internal/model/modeltest"
	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/hyperleaf/hyperleaf-go/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newPredictor(t *testing.T, opts ...Option) *Predictor {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	p, err := New(modeltest.Load(t, 7), opts...)
	require.NoError(t, err)
	return p
}

func TestInferProbabilitiesSumToOne(t *testing.T) {
	p := newPredictor(t)
	inf, err := p.Infer(context.Background(), modeltest.Cube(1, 6, 12, 10, 1))
	require.NoError(t, err)

	sum := 0.0
	for _, v := range inf.Probabilities {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, inf.Probabilities[inf.ClassIndex], inf.Confidence)
	assert.Equal(t, Cultivars[inf.ClassIndex], inf.Cultivar)
	for _, v := range inf.Probabilities {
		assert.LessOrEqual(t, v, inf.Confidence)
	}
}

func TestInferDenormalizesRegression(t *testing.T) {
	p := newPredictor(t)
	inf, err := p.Infer(context.Background(), modeltest.Cube(2, 6, 8, 8, 1))
	require.NoError(t, err)

	got := inf.Traits.Vector()
	for i := range got {
		assert.InDelta(t, inf.RegressionRaw[i]*agronomy.Std[i]+agronomy.Mean[i], got[i], 1e-9)
	}
}

func TestInferIsDeterministic(t *testing.T) {
	p := newPredictor(t)
	cube := modeltest.Cube(3, 6, 9, 11, 1)
	a, err := p.Infer(context.Background(), cube)
	require.NoError(t, err)
	b, err := p.Infer(context.Background(), cube)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInferRescalesLargeInputs(t *testing.T) {
	p := newPredictor(t)
	unit := modeltest.Cube(4, 6, 8, 8, 1)
	unit.Data[0] = 1
	doubled := unit.Clone()
	for i := range doubled.Data {
		doubled.Data[i] *= 2
	}

	a, err := p.Infer(context.Background(), unit)
	require.NoError(t, err)
	b, err := p.Infer(context.Background(), doubled)
	require.NoError(t, err)

	assert.False(t, a.Rescaled)
	assert.True(t, b.Rescaled)
	assert.Equal(t, a.Probabilities, b.Probabilities)
	assert.Equal(t, a.RegressionRaw, b.RegressionRaw)
	// Mean spectrum reports the caller's values, not the rescaled ones.
	assert.InDelta(t, 2*a.MeanSpectrum[0], b.MeanSpectrum[0], 1e-6)
	assert.Equal(t, float32(2), doubled.Max())
}

func TestInferWithoutRescale(t *testing.T) {
	p := newPredictor(t, WithRescalePolicy(tensor.RescaleNone))
	cube := modeltest.Cube(4, 6, 8, 8, 5)
	inf, err := p.Infer(context.Background(), cube)
	require.NoError(t, err)
	assert.False(t, inf.Rescaled)
}

func TestInferRejectsWrongShape(t *testing.T) {
	p := newPredictor(t)
	_, err := p.Infer(context.Background(), tensor.Zeros(3, 48, 352))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShape))

	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []int{3, 48, 352}, se.Got)
}

func TestInferRejectsWrappingDimensions(t *testing.T) {
	p := newPredictor(t)
	c := &tensor.Cube{Bands: 6, Height: 2147549185, Width: 2147418113, Data: make([]float32, 6)}
	_, err := p.Infer(context.Background(), c)
	assert.ErrorIs(t, err, tensor.ErrShape)
}

func TestInferWithoutModel(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	assert.False(t, p.Loaded())

	_, err = p.Infer(context.Background(), modeltest.Cube(1, 204, 8, 8, 1))
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	_, err = p.Predict(context.Background(), modeltest.Cube(1, 204, 8, 8, 1), Field{AreaAcres: 1, FertilizerRateInr: 1})
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestNewRejectsWrongHeads(t *testing.T) {
	arch := modeltest.Architecture()
	arch.Classes = 3
	m, err := model.Load(model.Init(arch, 1), arch)
	require.NoError(t, err)

	_, err = New(m)
	assert.ErrorIs(t, err, weights.ErrIncompatible)
}

func TestPredictComputesMetrics(t *testing.T) {
	p := newPredictor(t)
	cube := modeltest.Cube(5, 6, 10, 10, 1)
	field := Field{AreaAcres: 2.5, FertilizerRateInr: 6.5}

	res, err := p.Predict(context.Background(), cube, field)
	require.NoError(t, err)

	want, err := agronomy.ComputeFor(res.Traits, field.AreaAcres, field.FertilizerRateInr)
	require.NoError(t, err)
	assert.Equal(t, want, res.Metrics)
	assert.Equal(t, field, res.Field)
	assert.Len(t, res.MeanSpectrum, 6)
}

func TestPredictRejectsNegativeArea(t *testing.T) {
	p := newPredictor(t)
	_, err := p.Predict(context.Background(), modeltest.Cube(5, 6, 10, 10, 1), Field{AreaAcres: -1})
	assert.ErrorIs(t, err, agronomy.ErrInvalidArgument)
}

func TestPredictHonoursCancellation(t *testing.T) {
	p := newPredictor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Predict(ctx, modeltest.Cube(5, 6, 10, 10, 1), Field{AreaAcres: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArgmaxPrefersFirst(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.1, 0.4, 0.4, 0.1}))
	assert.Equal(t, 0, argmax([]float64{0.25, 0.25, 0.25, 0.25}))
}
