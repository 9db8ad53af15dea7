package domain_test

import (
	"testing"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

func series(n int) domain.Series {
	s := make(domain.Series, n)
	for i := range s {
		s[i] = domain.TimePoint{Time: base.Add(time.Duration(i) * time.Hour), Value: float64(i)}
	}
	return s
}

func TestSeries_BetweenHalfOpen(t *testing.T) {
	s := series(10)

	got := s.Between(base.Add(2*time.Hour), base.Add(5*time.Hour))

	assert.Equal(t, []float64{2, 3, 4}, got.Values())
}

func TestSeries_BetweenOutOfRange(t *testing.T) {
	s := series(3)
	assert.Empty(t, s.Between(base.Add(10*time.Hour), base.Add(20*time.Hour)))
	assert.Empty(t, s.Between(base.Add(2*time.Hour), base.Add(time.Hour)))
}

func TestSeries_Bounds(t *testing.T) {
	_, _, ok := domain.Series(nil).Bounds()
	assert.False(t, ok)

	first, last, ok := series(4).Bounds()
	require.True(t, ok)
	assert.Equal(t, base, first)
	assert.Equal(t, base.Add(3*time.Hour), last)
}

func TestAddMonths(t *testing.T) {
	nov := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), domain.AddMonths(nov, 3))
	assert.Equal(t, time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), domain.AddMonths(nov, -12))
}

func TestMonthStart(t *testing.T) {
	got := domain.MonthStart(time.Date(2025, 2, 17, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestBacktestWindow_Label(t *testing.T) {
	w := domain.BacktestWindow{TestStart: base, TestEnd: base.Add(7 * 24 * time.Hour)}
	assert.Equal(t, "2025-10-01 -> 2025-10-08", w.Label())
}
