package tibber

// consumption.go: consultas de consumo horario.
//
// FetchChunked trocea rangos largos y lanza los chunks en paralelo (máx
// chunkWorkers). El limiter de doWithRetry marca el ritmo real; el límite de
// goroutines solo acota memoria y conexiones abiertas.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	resolutionHourly = "HOURLY"
	chunkWorkers     = 4
)

const consumptionLastQuery = `
query Consumption($homeId: ID!, $resolution: EnergyResolution!, $last: Int!) {
  viewer {
    home(id: $homeId) {
      consumption(resolution: $resolution, last: $last) {
        nodes { from to consumption cost unitPrice currency }
      }
    }
  }
}`

const consumptionRangeQuery = `
query ConsumptionRange($homeId: ID!, $resolution: EnergyResolution!, $after: String!, $first: Int!) {
  viewer {
    home(id: $homeId) {
      consumption(resolution: $resolution, after: $after, first: $first) {
        nodes { from to consumption cost unitPrice currency }
      }
    }
  }
}`

// FetchLast devuelve las últimas lastHours horas de consumo.
func (c *Client) FetchLast(ctx context.Context, homeID string, lastHours int) ([]domain.Reading, error) {
	if lastHours <= 0 {
		return nil, fmt.Errorf("tibber.FetchLast: last=%d: %w", lastHours, domain.ErrInvalidParameter)
	}
	vars := map[string]any{
		"homeId":     homeID,
		"resolution": resolutionHourly,
		"last":       lastHours,
	}
	var resp consumptionResponse
	if err := c.query(ctx, consumptionLastQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("tibber.FetchLast: %w", err)
	}
	readings := mapNodes(homeID, resp.Data.Viewer.Home.Consumption.Nodes)
	slog.Debug("fetched consumption", "home", homeID, "last", lastHours, "rows", len(readings))
	return readings, nil
}

// FetchRange devuelve las horas en [start, end) a partir de un cursor "after".
// Un rango de menos de una hora no genera petición.
func (c *Client) FetchRange(ctx context.Context, homeID string, start, end time.Time) ([]domain.Reading, error) {
	first := int(end.Sub(start) / time.Hour)
	if first <= 0 {
		return nil, nil
	}
	vars := map[string]any{
		"homeId":     homeID,
		"resolution": resolutionHourly,
		"after":      encodeAfterCursor(start),
		"first":      first,
	}
	var resp consumptionResponse
	if err := c.query(ctx, consumptionRangeQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("tibber.FetchRange %s..%s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), err)
	}
	return mapNodes(homeID, resp.Data.Viewer.Home.Consumption.Nodes), nil
}

// FetchChunked descarga [start, end) en chunks de chunkHours y devuelve las
// lecturas en orden de chunk.
func (c *Client) FetchChunked(ctx context.Context, homeID string, start, end time.Time, chunkHours int) ([]domain.Reading, error) {
	chunks, err := splitRange(start, end, chunkHours)
	if err != nil {
		return nil, fmt.Errorf("tibber.FetchChunked: %w", err)
	}

	results := make([][]domain.Reading, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkWorkers)
	for i, ch := range chunks {
		g.Go(func() error {
			rows, err := c.FetchRange(gctx, homeID, ch.start, ch.end)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			results[i] = rows
			slog.Debug("fetched consumption chunk",
				"n", fmt.Sprintf("%d/%d", i+1, len(chunks)),
				"start", ch.start,
				"rows", len(rows),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tibber.FetchChunked: %w", err)
	}

	var all []domain.Reading
	for _, rows := range results {
		all = append(all, rows...)
	}
	slog.Info("consumption range fetched", "home", homeID, "chunks", len(chunks), "rows", len(all))
	return all, nil
}

type timeRange struct {
	start, end time.Time
}

// splitRange parte [start, end) en tramos consecutivos de como mucho chunkHours.
func splitRange(start, end time.Time, chunkHours int) ([]timeRange, error) {
	if chunkHours <= 0 {
		return nil, fmt.Errorf("chunk_hours=%d must be positive: %w", chunkHours, domain.ErrInvalidParameter)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must be before end %s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), domain.ErrInvalidParameter)
	}
	step := time.Duration(chunkHours) * time.Hour
	var out []timeRange
	for cur := start; cur.Before(end); {
		next := cur.Add(step)
		if next.After(end) {
			next = end
		}
		out = append(out, timeRange{start: cur, end: next})
		cur = next
	}
	return out, nil
}
