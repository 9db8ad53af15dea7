package evaluation_test

import (
	"math"
	"testing"

	"github.com/alejandrodnm/wattcast/internal/evaluation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMAE(t *testing.T) {
	got, err := evaluation.MAE([]float64{1, 2, 3}, []float64{2, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12) // (1 + 0 + 2) / 3
}

func TestRMSE(t *testing.T) {
	got, err := evaluation.RMSE([]float64{1, 2, 3}, []float64{2, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5.0/3.0), got, 1e-12)
}

func TestMAPE_SkipsZeroActuals(t *testing.T) {
	got, err := evaluation.MAPE([]float64{0, 10}, []float64{5, 9})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, got, 1e-12)
}

func TestMetrics_EmptyInput(t *testing.T) {
	_, err := evaluation.MAE(nil, nil)
	assert.ErrorIs(t, err, evaluation.ErrInsufficientData)

	_, err = evaluation.RMSE([]float64{}, []float64{})
	assert.ErrorIs(t, err, evaluation.ErrInsufficientData)

	_, err = evaluation.MAPE(nil, nil)
	assert.ErrorIs(t, err, evaluation.ErrInsufficientData)
}

func TestMAPE_AllZeroActuals(t *testing.T) {
	_, err := evaluation.MAPE([]float64{0, 0, 0}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, evaluation.ErrInsufficientData)
}

func TestMetrics_UnequalLengthsUseShortest(t *testing.T) {
	got, err := evaluation.MAE([]float64{1, 1, 100}, []float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-12)
}

func TestMetrics_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n").(int)
		actual := rapid.SliceOfN(rapid.Float64Range(-1e3, 1e3), n, n).Draw(t, "actual").([]float64)
		predicted := rapid.SliceOfN(rapid.Float64Range(-1e3, 1e3), n, n).Draw(t, "predicted").([]float64)

		mae, err := evaluation.MAE(actual, predicted)
		if err != nil {
			t.Fatalf("MAE: %v", err)
		}
		rmse, err := evaluation.RMSE(actual, predicted)
		if err != nil {
			t.Fatalf("RMSE: %v", err)
		}
		if mae < 0 || rmse < 0 {
			t.Fatalf("negative metric mae=%v rmse=%v", mae, rmse)
		}
		if rmse < mae-1e-9*math.Max(1, mae) {
			t.Fatalf("rmse=%v < mae=%v", rmse, mae)
		}
	})
}

func TestMetrics_EqualMagnitudeErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n").(int)
		c := float64(rapid.IntRange(0, 100).Draw(t, "c").(int))

		actual := make([]float64, n)
		predicted := make([]float64, n)
		for i := 0; i < n; i++ {
			actual[i] = float64(rapid.IntRange(-1000, 1000).Draw(t, "a").(int))
			if rapid.Bool().Draw(t, "sign").(bool) {
				predicted[i] = actual[i] + c
			} else {
				predicted[i] = actual[i] - c
			}
		}

		mae, _ := evaluation.MAE(actual, predicted)
		rmse, _ := evaluation.RMSE(actual, predicted)
		if math.Abs(mae-rmse) > 1e-9 {
			t.Fatalf("mae=%v rmse=%v differ for constant |error|=%v", mae, rmse, c)
		}
	})
}
