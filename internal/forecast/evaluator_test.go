package forecast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/covidtrend/internal/contracts"
)

func TestEvaluate_LinearSeriesIsExact(t *testing.T) {
	values := make([]int64, 20)
	for i := range values {
		values[i] = int64(7*i + 3)
	}
	f := newForecaster(t, DefaultConfig())

	eval, err := f.Evaluate(makeSeries("Delhi", values...), 5)
	require.NoError(t, err)

	assert.Equal(t, "Delhi", eval.Region)
	assert.Equal(t, 5, eval.HoldoutDays)
	assert.Len(t, eval.Dates, 5)
	assert.Equal(t, []float64{108, 115, 122, 129, 136}, eval.Actual)
	assert.InDelta(t, 0, eval.RMSE, 1e-6)
	assert.InDelta(t, 0, eval.MAE, 1e-6)
	assert.InDelta(t, 1, eval.R2, 1e-9)
}

func TestEvaluate_NoisySeries(t *testing.T) {
	f := newForecaster(t, DefaultConfig())

	eval, err := f.Evaluate(noisyQuadratic(40), 7)
	require.NoError(t, err)

	assert.Len(t, eval.Actual, 7)
	assert.Len(t, eval.Predicted, 7)
	assert.InDelta(t, eval.MSE, eval.RMSE*eval.RMSE, 1e-6)
	assert.GreaterOrEqual(t, eval.Coverage, 0.0)
	assert.LessOrEqual(t, eval.Coverage, 1.0)
	assert.Greater(t, eval.R2, 0.5)
	assert.Equal(t, "2020-04-03", eval.Dates[0])
}

func TestEvaluate_NotEnoughTrainingData(t *testing.T) {
	f := newForecaster(t, DefaultConfig())

	_, err := f.Evaluate(noisyQuadratic(9), 5)

	var insufficient *contracts.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 12, insufficient.Required)
}

func TestEvaluate_InvalidHoldout(t *testing.T) {
	f := newForecaster(t, DefaultConfig())

	_, err := f.Evaluate(noisyQuadratic(20), 0)

	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}

func TestRSquared_ConstantActuals(t *testing.T) {
	assert.Equal(t, 1.0, rSquared([]float64{5, 5}, []float64{5, 5}, 0))
	assert.Equal(t, 0.0, rSquared([]float64{4, 6}, []float64{5, 5}, 1))
}
