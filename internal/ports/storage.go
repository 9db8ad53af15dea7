package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

// ConsumptionStorage persiste y lee lecturas horarias.
type ConsumptionStorage interface {
	// UpsertConsumption hace merge por (home_id, from_time). Devuelve filas escritas.
	UpsertConsumption(ctx context.Context, readings []domain.Reading) (int, error)

	// LastLoaded devuelve el from_time más reciente. ok=false si no hay filas.
	LastLoaded(ctx context.Context, homeID string) (last time.Time, ok bool, err error)

	// CountGaps cuenta saltos de más de una hora entre lecturas en [from, to).
	CountGaps(ctx context.Context, homeID string, from, to time.Time) (int, error)

	// HourlySeries devuelve la serie con from_time >= since, sin consumos nulos.
	HourlySeries(ctx context.Context, homeID string, since time.Time) (domain.Series, error)
}

// ForecastStorage persiste previsiones mensuales.
type ForecastStorage interface {
	SaveMonthlyForecasts(ctx context.Context, forecasts []domain.MonthlyForecast, createdAt time.Time) error
}

// StatusStorage registra el resultado de cada ejecución de un pipeline.
type StatusStorage interface {
	WriteStatus(ctx context.Context, status domain.PipelineStatus) error
}
