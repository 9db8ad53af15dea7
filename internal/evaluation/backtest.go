package evaluation

// backtest.go: runner de validación cruzada sobre ventanas deslizantes.
//
// Por cada ventana se corta la serie a [TrainStart, TestEnd) y se ejecutan las
// baselines horarias con testStart = TestStart. Si una estrategia falla en una
// ventana (p.ej. train vacío tras un hueco largo) el error se entrega junto a la
// ventana y el llamador decide si la salta o aborta.

import (
	"fmt"
	"iter"

	"github.com/alejandrodnm/wattcast/internal/baseline"
	"github.com/alejandrodnm/wattcast/internal/domain"
)

// BacktestConfig agrupa ventanas y estaciones.
type BacktestConfig struct {
	Windows WindowConfig
	Hourly  baseline.HourlyConfig
}

// DefaultBacktestConfig devuelve ventanas 60/7/7 y estaciones 24h/168h.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		Windows: DefaultWindowConfig(),
		Hourly:  baseline.DefaultHourlyConfig(),
	}
}

// Backtest recorre las ventanas de series en orden y produce un WindowResult por
// ventana. Las duraciones inválidas fallan antes de empezar.
func Backtest(series domain.Series, cfg BacktestConfig) (iter.Seq2[domain.WindowResult, error], error) {
	windows, err := Windows(series.Times(), cfg.Windows)
	if err != nil {
		return nil, fmt.Errorf("evaluation.Backtest: %w", err)
	}
	hourly := cfg.Hourly
	if len(hourly.SeasonHours) == 0 {
		hourly = baseline.DefaultHourlyConfig()
	}

	return func(yield func(domain.WindowResult, error) bool) {
		for w := range windows {
			slice := series.Between(w.TrainStart, w.TestEnd)
			results, err := baseline.RunHourly(slice, w.TestStart, hourly)
			if err != nil {
				err = fmt.Errorf("evaluation.Backtest: window %s: %w", w.Label(), err)
			}
			if !yield(domain.WindowResult{Window: w, Results: results}, err) {
				return
			}
		}
	}, nil
}
