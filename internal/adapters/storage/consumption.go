package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

type consumptionRow struct {
	HomeID      string          `db:"home_id"`
	FromTime    int64           `db:"from_time"`
	ToTime      sql.NullInt64   `db:"to_time"`
	Consumption sql.NullFloat64 `db:"consumption"`
	Cost        sql.NullFloat64 `db:"cost"`
	UnitPrice   sql.NullFloat64 `db:"unit_price"`
	Currency    sql.NullString  `db:"currency"`
}

func toConsumptionRow(r domain.Reading) consumptionRow {
	row := consumptionRow{
		HomeID:      r.HomeID,
		FromTime:    r.From.Unix(),
		Consumption: nullFloat(r.Consumption),
		Cost:        nullFloat(r.Cost),
		UnitPrice:   nullFloat(r.UnitPrice),
		Currency:    sql.NullString{String: r.Currency, Valid: r.Currency != ""},
	}
	if !r.To.IsZero() {
		row.ToTime = sql.NullInt64{Int64: r.To.Unix(), Valid: true}
	}
	return row
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// UpsertConsumption hace merge por (home_id, from_time) en una sola transacción.
func (s *Store) UpsertConsumption(ctx context.Context, readings []domain.Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertConsumption: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
			(home_id, from_time, to_time, consumption, cost, unit_price, currency)
		VALUES (:home_id, :from_time, :to_time, :consumption, :cost, :unit_price, :currency)
		ON CONFLICT (home_id, from_time) DO UPDATE SET
			to_time     = excluded.to_time,
			consumption = excluded.consumption,
			cost        = excluded.cost,
			unit_price  = excluded.unit_price,
			currency    = excluded.currency
	`, s.table("consumption")))
	if err != nil {
		return 0, fmt.Errorf("storage.UpsertConsumption: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, toConsumptionRow(r)); err != nil {
			return 0, fmt.Errorf("storage.UpsertConsumption: upsert %s: %w", r.From.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.UpsertConsumption: commit: %w", err)
	}
	return len(readings), nil
}

// LastLoaded devuelve el from_time más reciente del hogar.
func (s *Store) LastLoaded(ctx context.Context, homeID string) (time.Time, bool, error) {
	var last sql.NullInt64
	err := s.db.GetContext(ctx, &last,
		s.q(`SELECT MAX(from_time) FROM %s WHERE home_id = ?`, s.table("consumption")),
		homeID,
	)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("storage.LastLoaded: %w", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return unixUTC(last.Int64), true, nil
}

// CountGaps cuenta los saltos de más de una hora entre lecturas consecutivas en [from, to).
func (s *Store) CountGaps(ctx context.Context, homeID string, from, to time.Time) (int, error) {
	var gaps int
	err := s.db.GetContext(ctx, &gaps, s.q(`
		SELECT COUNT(*) FROM (
			SELECT from_time - LAG(from_time) OVER (ORDER BY from_time) AS delta
			FROM %s
			WHERE home_id = ? AND from_time >= ? AND from_time < ?
		) ordered
		WHERE delta > 3600
	`, s.table("consumption")), homeID, from.Unix(), to.Unix())
	if err != nil {
		return 0, fmt.Errorf("storage.CountGaps: %w", err)
	}
	return gaps, nil
}

// HourlySeries devuelve la serie ordenada con from_time >= since.
// Las horas con consumo nulo no forman parte de la serie.
func (s *Store) HourlySeries(ctx context.Context, homeID string, since time.Time) (domain.Series, error) {
	var rows []struct {
		FromTime    int64   `db:"from_time"`
		Consumption float64 `db:"consumption"`
	}
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT from_time, consumption
		FROM %s
		WHERE home_id = ? AND from_time >= ? AND consumption IS NOT NULL
		ORDER BY from_time
	`, s.table("consumption")), homeID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("storage.HourlySeries: %w", err)
	}

	series := make(domain.Series, len(rows))
	for i, r := range rows {
		series[i] = domain.TimePoint{Time: unixUTC(r.FromTime), Value: r.Consumption}
	}
	return series, nil
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
