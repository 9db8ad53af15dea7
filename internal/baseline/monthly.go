package baseline

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const NameSeasonalLastYear = "seasonal_last_year"

// RollingMeanName devuelve el nombre estable de la media móvil de n meses.
func RollingMeanName(windowMonths int) string {
	return fmt.Sprintf("rolling_mean_%dm", windowMonths)
}

type monthKey struct {
	year  int
	month time.Month
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

// lastMonth devuelve el mes más reciente de la serie.
func lastMonth(points []domain.MonthPoint) (time.Time, bool) {
	if len(points) == 0 {
		return time.Time{}, false
	}
	last := points[0].Month
	for _, p := range points[1:] {
		if p.Month.After(last) {
			last = p.Month
		}
	}
	return domain.MonthStart(last), true
}

// SeasonalLastYear predice cada mes futuro con el valor del mismo mes un año antes.
// Los pasos cuyo mes de referencia no existe en la serie se omiten.
func SeasonalLastYear(points []domain.MonthPoint, horizon int) []domain.MonthlyForecast {
	last, ok := lastMonth(points)
	if !ok {
		return nil
	}

	index := make(map[monthKey]float64, len(points))
	for _, p := range points {
		index[keyOf(p.Month)] = p.Value
	}

	var out []domain.MonthlyForecast
	for step := 1; step <= horizon; step++ {
		target := domain.AddMonths(last, step)
		v, ok := index[keyOf(domain.AddMonths(target, -12))]
		if !ok {
			continue
		}
		out = append(out, domain.MonthlyForecast{
			Model:         NameSeasonalLastYear,
			ForecastMonth: target,
			Value:         v,
			Horizon:       step,
		})
	}
	return out
}

// RollingMean repite la media de los últimos windowMonths valores para cada paso.
// Sin ventana válida o sin historia suficiente no hay previsiones; no es un error.
// Los puntos deben venir ordenados por mes.
func RollingMean(points []domain.MonthPoint, horizon, windowMonths int) []domain.MonthlyForecast {
	if windowMonths <= 0 || len(points) < windowMonths {
		return nil
	}
	last, _ := lastMonth(points)

	tail := points[len(points)-windowMonths:]
	values := make([]float64, len(tail))
	for i, p := range tail {
		values[i] = p.Value
	}
	mean := stat.Mean(values, nil)

	out := make([]domain.MonthlyForecast, 0, max(horizon, 0))
	for step := 1; step <= horizon; step++ {
		out = append(out, domain.MonthlyForecast{
			Model:         RollingMeanName(windowMonths),
			ForecastMonth: domain.AddMonths(last, step),
			Value:         mean,
			Horizon:       step,
		})
	}
	return out
}

// RunMonthly concatena SeasonalLastYear y RollingMean.
func RunMonthly(points []domain.MonthPoint, horizon, windowMonths int) []domain.MonthlyForecast {
	out := SeasonalLastYear(points, horizon)
	return append(out, RollingMean(points, horizon, windowMonths)...)
}

// MonthlyTotals suma los valores horarios por mes natural en loc.
// El resultado sale ordenado por mes.
func MonthlyTotals(series domain.Series, loc *time.Location) []domain.MonthPoint {
	if loc == nil {
		loc = time.UTC
	}
	var out []domain.MonthPoint
	for _, p := range series {
		m := domain.MonthStart(p.Time.In(loc))
		if n := len(out); n > 0 && out[n-1].Month.Equal(m) {
			out[n-1].Value += p.Value
			continue
		}
		out = append(out, domain.MonthPoint{Month: m, Value: p.Value})
	}
	return out
}
