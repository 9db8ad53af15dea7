package baseline_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/wattcast/internal/baseline"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// months genera n meses consecutivos desde (y, m) con valores 100, 101, ...
func months(y int, m time.Month, n int) []domain.MonthPoint {
	out := make([]domain.MonthPoint, n)
	for i := range out {
		out[i] = domain.MonthPoint{Month: domain.AddMonths(month(y, m), i), Value: float64(100 + i)}
	}
	return out
}

func TestSeasonalLastYear_ThirteenMonths(t *testing.T) {
	points := months(2024, time.January, 13) // ene 2024 .. ene 2025

	got := baseline.SeasonalLastYear(points, 1)

	require.Len(t, got, 1)
	assert.Equal(t, "seasonal_last_year", got[0].Model)
	assert.Equal(t, month(2025, time.February), got[0].ForecastMonth)
	assert.Equal(t, 101.0, got[0].Value) // feb 2024
	assert.Equal(t, 1, got[0].Horizon)
}

func TestSeasonalLastYear_YearRollover(t *testing.T) {
	points := months(2023, time.November, 13) // nov 2023 .. nov 2024

	got := baseline.SeasonalLastYear(points, 3)

	require.Len(t, got, 3)
	assert.Equal(t, month(2024, time.December), got[0].ForecastMonth)
	assert.Equal(t, month(2025, time.January), got[1].ForecastMonth)
	assert.Equal(t, month(2025, time.February), got[2].ForecastMonth)
	assert.Equal(t, []float64{101, 102, 103}, []float64{got[0].Value, got[1].Value, got[2].Value})
}

func TestSeasonalLastYear_SkipsMissingReference(t *testing.T) {
	points := months(2024, time.January, 13)
	points = append(points[:2], points[3:]...) // sin marzo 2024

	got := baseline.SeasonalLastYear(points, 3)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Horizon)
	assert.Equal(t, 3, got[1].Horizon)
	assert.Equal(t, month(2025, time.April), got[1].ForecastMonth)
}

func TestSeasonalLastYear_Empty(t *testing.T) {
	assert.Empty(t, baseline.SeasonalLastYear(nil, 3))
}

func TestRollingMean(t *testing.T) {
	points := months(2024, time.January, 8) // 100..107

	got := baseline.RollingMean(points, 3, 4)

	require.Len(t, got, 3)
	for i, f := range got {
		assert.Equal(t, "rolling_mean_4m", f.Model)
		assert.InDelta(t, 105.5, f.Value, 1e-12)
		assert.Equal(t, i+1, f.Horizon)
		assert.Equal(t, domain.AddMonths(month(2024, time.August), i+1), f.ForecastMonth)
	}
}

func TestRollingMean_InsufficientHistory(t *testing.T) {
	got := baseline.RollingMean(months(2024, time.January, 4), 3, 6)
	assert.Empty(t, got)
}

func TestRollingMean_NonPositiveWindow(t *testing.T) {
	assert.Empty(t, baseline.RollingMean(months(2024, time.January, 12), 3, 0))
	assert.Empty(t, baseline.RollingMean(months(2024, time.January, 12), 3, -2))
}

func TestRunMonthly_ConcatenatesInOrder(t *testing.T) {
	got := baseline.RunMonthly(months(2024, time.January, 13), 2, 6)

	require.Len(t, got, 4)
	assert.Equal(t, "seasonal_last_year", got[0].Model)
	assert.Equal(t, "seasonal_last_year", got[1].Model)
	assert.Equal(t, "rolling_mean_6m", got[2].Model)
	assert.Equal(t, "rolling_mean_6m", got[3].Model)
}

func TestMonthlyTotals(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	series := domain.Series{
		{Time: time.Date(2025, 1, 31, 22, 0, 0, 0, time.UTC), Value: 1}, // 23:00 CET, enero
		{Time: time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), Value: 2}, // 00:00 CET, febrero
		{Time: time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC), Value: 3},
		{Time: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), Value: 4},
	}

	got := baseline.MonthlyTotals(series, cet)

	require.Len(t, got, 3)
	assert.True(t, got[0].Month.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, cet)))
	assert.Equal(t, 1.0, got[0].Value)
	assert.Equal(t, 5.0, got[1].Value)
	assert.Equal(t, 4.0, got[2].Value)
}
