package domain

import (
	"errors"
	"time"
)

// Errores del núcleo de evaluación. Los paquetes de evaluación y baselines los
// envuelven; los llamadores comparan con errors.Is.
var (
	// ErrInsufficientData: no hay datos para calcular (métrica vacía, train vacío).
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidParameter: longitud de ventana/chunk no positiva.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// BaselineResult es la salida de una estrategia horaria sobre un corte de serie.
// Actual y Predicted están alineados por índice y tienen la misma longitud.
type BaselineResult struct {
	Name      string
	Actual    []float64
	Predicted []float64
	Coverage  float64 // fracción [0,1] de instantes de test con predicción
}

// HasPredictions devuelve true si la estrategia produjo al menos una predicción.
func (r BaselineResult) HasPredictions() bool {
	return len(r.Actual) > 0
}

// MonthlyForecast es una predicción puntual de consumo mensual.
type MonthlyForecast struct {
	Model         string
	ForecastMonth time.Time
	Value         float64 // kWh
	Horizon       int     // meses por delante del último mes observado (>= 1)
}

// Score agrupa las métricas de error de un BaselineResult.
type Score struct {
	Name     string
	Coverage float64
	MAE      float64
	RMSE     float64
	MAPE     float64
	HasMAPE  bool // false si todos los valores reales eran 0
}
