package baseline

// hourly.go: baselines horarias evaluadas contra un instante de corte.
//
// Todas reciben la serie completa del corte y testStart. Un punto es de train si
// t < testStart y de test si t >= testStart; la partición se hace comparando al
// recorrer, nunca con slices separados.

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	NameNaive = "naive"
	NameMean  = "mean"
)

// HourlyConfig controla qué estaciones usa RunHourly.
type HourlyConfig struct {
	SeasonHours []int
}

// DefaultHourlyConfig devuelve las dos estaciones canónicas: diaria y semanal.
func DefaultHourlyConfig() HourlyConfig {
	return HourlyConfig{SeasonHours: []int{24, 168}}
}

// SeasonalName devuelve el nombre estable de la baseline estacional.
func SeasonalName(seasonHours int) string {
	return fmt.Sprintf("seasonal_naive_%dh", seasonHours)
}

// NaiveLastValue predice cada punto de test con la observación inmediatamente
// anterior en la serie. El último valor se actualiza con el valor real también
// dentro del test: es persistencia a un paso, no un origen congelado en testStart.
func NaiveLastValue(series domain.Series, testStart time.Time) domain.BaselineResult {
	var actual, predicted []float64
	var last float64
	hasLast := false
	total := 0

	for _, p := range series {
		if p.Time.Before(testStart) {
			last, hasLast = p.Value, true
			continue
		}
		total++
		if hasLast {
			actual = append(actual, p.Value)
			predicted = append(predicted, last)
		}
		last, hasLast = p.Value, true
	}

	return domain.BaselineResult{
		Name:      NameNaive,
		Actual:    actual,
		Predicted: predicted,
		Coverage:  coverage(len(actual), total),
	}
}

// SeasonalNaive predice t con el valor observado en t - seasonHours.
// Si ese instante no está en la serie el punto se salta y baja la cobertura.
func SeasonalNaive(series domain.Series, testStart time.Time, seasonHours int) domain.BaselineResult {
	lag := time.Duration(seasonHours) * time.Hour
	index := make(map[int64]float64, len(series))
	for _, p := range series {
		index[p.Time.UnixNano()] = p.Value
	}

	var actual, predicted []float64
	total := 0
	for _, p := range series {
		if p.Time.Before(testStart) {
			continue
		}
		total++
		v, ok := index[p.Time.Add(-lag).UnixNano()]
		if !ok {
			continue
		}
		actual = append(actual, p.Value)
		predicted = append(predicted, v)
	}

	return domain.BaselineResult{
		Name:      SeasonalName(seasonHours),
		Actual:    actual,
		Predicted: predicted,
		Coverage:  coverage(len(actual), total),
	}
}

// Mean predice todo el test con la media aritmética del train.
// Devuelve ErrInsufficientData si no hay puntos anteriores a testStart.
func Mean(series domain.Series, testStart time.Time) (domain.BaselineResult, error) {
	var train, actual []float64
	for _, p := range series {
		if p.Time.Before(testStart) {
			train = append(train, p.Value)
		} else {
			actual = append(actual, p.Value)
		}
	}
	if len(train) == 0 {
		return domain.BaselineResult{}, fmt.Errorf("baseline.Mean: no training data before %s: %w",
			testStart.Format(time.RFC3339), domain.ErrInsufficientData)
	}

	mean := stat.Mean(train, nil)
	predicted := make([]float64, len(actual))
	for i := range predicted {
		predicted[i] = mean
	}

	cov := 0.0
	if len(actual) > 0 {
		cov = 1.0
	}
	return domain.BaselineResult{
		Name:      NameMean,
		Actual:    actual,
		Predicted: predicted,
		Coverage:  cov,
	}, nil
}

// RunAll ejecuta las cuatro baselines canónicas en orden fijo:
// naive, seasonal_naive_24h, seasonal_naive_168h, mean.
func RunAll(series domain.Series, testStart time.Time) ([]domain.BaselineResult, error) {
	return RunHourly(series, testStart, DefaultHourlyConfig())
}

// RunHourly ejecuta naive, una estacional por cada cfg.SeasonHours y mean.
// Las estaciones no positivas se rechazan con ErrInvalidParameter.
func RunHourly(series domain.Series, testStart time.Time, cfg HourlyConfig) ([]domain.BaselineResult, error) {
	results := make([]domain.BaselineResult, 0, len(cfg.SeasonHours)+2)
	results = append(results, NaiveLastValue(series, testStart))

	for _, h := range cfg.SeasonHours {
		if h <= 0 {
			return nil, fmt.Errorf("baseline.RunHourly: season %dh: %w", h, domain.ErrInvalidParameter)
		}
		results = append(results, SeasonalNaive(series, testStart, h))
	}

	mean, err := Mean(series, testStart)
	if err != nil {
		return nil, err
	}
	return append(results, mean), nil
}

func coverage(predicted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(predicted) / float64(total)
}
