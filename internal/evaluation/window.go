package evaluation

import (
	"fmt"
	"iter"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

const day = 24 * time.Hour

// WindowConfig define el esquema de validación cruzada.
type WindowConfig struct {
	TrainDays int
	TestDays  int
	StepDays  int
	// Expanding mantiene TrainStart fijo en el primer instante y solo avanza
	// TrainEnd. Por defecto la ventana de train se desliza con el paso.
	Expanding bool
}

// DefaultWindowConfig: 60 días de train, 7 de test, avance semanal.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{TrainDays: 60, TestDays: 7, StepDays: 7}
}

// Validate comprueba que todas las duraciones sean positivas.
func (c WindowConfig) Validate() error {
	if c.TrainDays <= 0 || c.TestDays <= 0 || c.StepDays <= 0 {
		return fmt.Errorf("train=%d test=%d step=%d days must be positive: %w",
			c.TrainDays, c.TestDays, c.StepDays, ErrInvalidParameter)
	}
	return nil
}

// Windows genera las ventanas train/test sobre el rango [min(times), max(times)].
// Solo se emiten ventanas cuyo test completo cabe en los datos observados.
//
// La secuencia es perezosa y reiniciable: cada recorrido parte de los mismos
// límites, sin cursor compartido.
func Windows(times []time.Time, cfg WindowConfig) (iter.Seq[domain.BacktestWindow], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("evaluation.Windows: %w", err)
	}
	start, end, ok := bounds(times)
	if !ok {
		return func(func(domain.BacktestWindow) bool) {}, nil
	}

	train := time.Duration(cfg.TrainDays) * day
	test := time.Duration(cfg.TestDays) * day
	step := time.Duration(cfg.StepDays) * day

	return func(yield func(domain.BacktestWindow) bool) {
		trainStart := start
		trainEnd := start.Add(train)
		for !trainEnd.Add(test).After(end) {
			w := domain.BacktestWindow{
				TrainStart: trainStart,
				TrainEnd:   trainEnd,
				TestStart:  trainEnd,
				TestEnd:    trainEnd.Add(test),
			}
			if !yield(w) {
				return
			}
			trainEnd = trainEnd.Add(step)
			if !cfg.Expanding {
				trainStart = trainStart.Add(step)
			}
		}
	}, nil
}

func bounds(times []time.Time) (first, last time.Time, ok bool) {
	if len(times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last, true
}
