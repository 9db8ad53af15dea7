package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

// SaveMonthlyForecasts inserta un lote de previsiones con el mismo created_at.
// No hay upsert: cada ejecución deja su propio histórico.
func (s *Store) SaveMonthlyForecasts(ctx context.Context, forecasts []domain.MonthlyForecast, createdAt time.Time) error {
	if len(forecasts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveMonthlyForecasts: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, s.q(`
		INSERT INTO %s (model, forecast_month, created_at, value_kwh, horizon_months)
		VALUES (?, ?, ?, ?, ?)
	`, s.table("monthly_forecasts")))
	if err != nil {
		return fmt.Errorf("storage.SaveMonthlyForecasts: prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range forecasts {
		if _, err := stmt.ExecContext(ctx,
			f.Model,
			f.ForecastMonth.Format(time.DateOnly),
			createdAt.Unix(),
			f.Value,
			f.Horizon,
		); err != nil {
			return fmt.Errorf("storage.SaveMonthlyForecasts: insert %s %s: %w",
				f.Model, f.ForecastMonth.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveMonthlyForecasts: commit: %w", err)
	}
	return nil
}

// MonthlyForecasts devuelve las previsiones guardadas, más recientes primero.
func (s *Store) MonthlyForecasts(ctx context.Context, limit int) ([]domain.MonthlyForecast, error) {
	var rows []struct {
		Model   string  `db:"model"`
		Month   string  `db:"forecast_month"`
		Value   float64 `db:"value_kwh"`
		Horizon int     `db:"horizon_months"`
	}
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT model, forecast_month, value_kwh, horizon_months
		FROM %s
		ORDER BY created_at DESC, id
		LIMIT ?
	`, s.table("monthly_forecasts")), limit)
	if err != nil {
		return nil, fmt.Errorf("storage.MonthlyForecasts: %w", err)
	}

	out := make([]domain.MonthlyForecast, 0, len(rows))
	for _, r := range rows {
		month, err := time.Parse(time.DateOnly, r.Month)
		if err != nil {
			return nil, fmt.Errorf("storage.MonthlyForecasts: parse month %q: %w", r.Month, err)
		}
		out = append(out, domain.MonthlyForecast{
			Model:         r.Model,
			ForecastMonth: month,
			Value:         r.Value,
			Horizon:       r.Horizon,
		})
	}
	return out, nil
}
