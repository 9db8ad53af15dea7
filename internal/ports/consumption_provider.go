package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

// ConsumptionProvider obtiene lecturas horarias de consumo de la API del proveedor.
type ConsumptionProvider interface {
	// FetchLast devuelve las últimas lastHours lecturas horarias.
	FetchLast(ctx context.Context, homeID string, lastHours int) ([]domain.Reading, error)

	// FetchChunked devuelve las lecturas en [start, end), troceando la petición
	// en bloques de chunkHours horas.
	FetchChunked(ctx context.Context, homeID string, start, end time.Time, chunkHours int) ([]domain.Reading, error)
}
