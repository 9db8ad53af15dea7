package evaluation

// metrics.go: métricas de error entre valores reales y predichos.
//
// Los slices se recorren índice a índice hasta el más corto de los dos.
// Ninguna función modifica sus argumentos.

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientData = domain.ErrInsufficientData
	ErrInvalidParameter = domain.ErrInvalidParameter
)

// MAE devuelve el error absoluto medio.
func MAE(actual, predicted []float64) (float64, error) {
	errs := pairwise(actual, predicted, func(a, p float64) float64 { return math.Abs(a - p) })
	if len(errs) == 0 {
		return 0, fmt.Errorf("evaluation.MAE: %w", ErrInsufficientData)
	}
	return stat.Mean(errs, nil), nil
}

// RMSE devuelve la raíz del error cuadrático medio.
func RMSE(actual, predicted []float64) (float64, error) {
	errs := pairwise(actual, predicted, func(a, p float64) float64 { return (a - p) * (a - p) })
	if len(errs) == 0 {
		return 0, fmt.Errorf("evaluation.RMSE: %w", ErrInsufficientData)
	}
	return math.Sqrt(stat.Mean(errs, nil)), nil
}

// MAPE devuelve el error porcentual absoluto medio como fracción (0.1 = 10%).
// Los índices con valor real 0 se ignoran.
func MAPE(actual, predicted []float64) (float64, error) {
	n := min(len(actual), len(predicted))
	ratios := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		ratios = append(ratios, math.Abs((actual[i]-predicted[i])/actual[i]))
	}
	if len(ratios) == 0 {
		return 0, fmt.Errorf("evaluation.MAPE: no non-zero actual values: %w", ErrInsufficientData)
	}
	return stat.Mean(ratios, nil), nil
}

func pairwise(actual, predicted []float64, f func(a, p float64) float64) []float64 {
	n := min(len(actual), len(predicted))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = f(actual[i], predicted[i])
	}
	return out
}
