package estimator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerTransform(t *testing.T) {
	s := Scaler{Mean: []float64{10, 0}, Scale: []float64{2, 5}}

	out, err := s.Transform([]float64{14, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, out)
}

func TestScalerZeroScaleTreatedAsIdentity(t *testing.T) {
	s := Scaler{Mean: []float64{3}, Scale: []float64{0}}

	out, err := s.Transform([]float64{8})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, out)
}

func TestScalerLengthMismatch(t *testing.T) {
	s := Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}

	_, err := s.Transform([]float64{1})
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Want)
	assert.Equal(t, 1, mismatch.Got)
}

func TestNewLinearRejectsInconsistentArtifacts(t *testing.T) {
	_, err := NewLinear([]float64{1, 2}, 0, Scaler{Mean: []float64{0}, Scale: []float64{1}})
	assert.Error(t, err)
}

func TestLinearPredict(t *testing.T) {
	est, err := NewLinear(
		[]float64{2, -1},
		10,
		Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
	)
	require.NoError(t, err)

	// 10 + 2*3 + (-1)*4 = 12
	got, err := est.Predict([]float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, got, 1e-9)
}

func TestLinearPredictAppliesScaler(t *testing.T) {
	est, err := NewLinear(
		[]float64{1},
		0,
		Scaler{Mean: []float64{100}, Scale: []float64{10}},
	)
	require.NoError(t, err)

	got, err := est.Predict([]float64{130})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestLinearPredictSchemaMismatch(t *testing.T) {
	est, err := NewLinear(
		[]float64{1, 1, 1},
		0,
		Scaler{Mean: make([]float64, 3), Scale: []float64{1, 1, 1}},
	)
	require.NoError(t, err)

	_, err = est.Predict([]float64{1, 2})
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 3, mismatch.Want)
	assert.Equal(t, 2, mismatch.Got)
}
