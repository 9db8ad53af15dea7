package evaluation

import (
	"errors"
	"fmt"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Score calcula MAE, RMSE y MAPE de un resultado. Un resultado sin predicciones
// devuelve ErrInsufficientData; si solo falla MAPE (todos los reales a 0) el
// score se devuelve con HasMAPE=false.
func Score(r domain.BaselineResult) (domain.Score, error) {
	s := domain.Score{Name: r.Name, Coverage: r.Coverage}

	var err error
	if s.MAE, err = MAE(r.Actual, r.Predicted); err != nil {
		return s, fmt.Errorf("evaluation.Score %s: %w", r.Name, err)
	}
	if s.RMSE, err = RMSE(r.Actual, r.Predicted); err != nil {
		return s, fmt.Errorf("evaluation.Score %s: %w", r.Name, err)
	}
	s.MAPE, err = MAPE(r.Actual, r.Predicted)
	switch {
	case err == nil:
		s.HasMAPE = true
	case !errors.Is(err, ErrInsufficientData):
		return s, fmt.Errorf("evaluation.Score %s: %w", r.Name, err)
	}
	return s, nil
}

// Summary acumula scores por modelo a lo largo de varias ventanas.
// Los modelos se reportan en el orden en que aparecieron por primera vez.
type Summary struct {
	order  []string
	byName map[string]*modelScores
}

type modelScores struct {
	mae, rmse, mape []float64
}

// NewSummary crea un acumulador vacío.
func NewSummary() *Summary {
	return &Summary{byName: make(map[string]*modelScores)}
}

// Add registra un score.
func (s *Summary) Add(score domain.Score) {
	m, ok := s.byName[score.Name]
	if !ok {
		m = &modelScores{}
		s.byName[score.Name] = m
		s.order = append(s.order, score.Name)
	}
	m.mae = append(m.mae, score.MAE)
	m.rmse = append(m.rmse, score.RMSE)
	if score.HasMAPE {
		m.mape = append(m.mape, score.MAPE)
	}
}

// Averages devuelve un Score medio por modelo. Coverage queda a 0: no se promedia.
func (s *Summary) Averages() []domain.Score {
	out := make([]domain.Score, 0, len(s.order))
	for _, name := range s.order {
		m := s.byName[name]
		avg := domain.Score{
			Name: name,
			MAE:  stat.Mean(m.mae, nil),
			RMSE: stat.Mean(m.rmse, nil),
		}
		if len(m.mape) > 0 {
			avg.MAPE = stat.Mean(m.mape, nil)
			avg.HasMAPE = true
		}
		out = append(out, avg)
	}
	return out
}

// Count devuelve cuántos scores se han acumulado para name.
func (s *Summary) Count(name string) int {
	if m, ok := s.byName[name]; ok {
		return len(m.mae)
	}
	return 0
}
