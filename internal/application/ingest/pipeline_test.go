package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/wattcast/internal/application/ingest"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fetchCall struct {
	last       int
	start, end time.Time
	chunkHours int
}

type mockProvider struct {
	calls []fetchCall
	rows  []domain.Reading
	err   error
}

func (m *mockProvider) FetchLast(_ context.Context, _ string, lastHours int) ([]domain.Reading, error) {
	m.calls = append(m.calls, fetchCall{last: lastHours})
	return m.rows, m.err
}

func (m *mockProvider) FetchChunked(_ context.Context, _ string, start, end time.Time, chunkHours int) ([]domain.Reading, error) {
	m.calls = append(m.calls, fetchCall{start: start, end: end, chunkHours: chunkHours})
	return m.rows, m.err
}

type mockStore struct {
	upserts  int
	last     time.Time
	hasLast  bool
	gaps     []int // respuestas sucesivas de CountGaps
	statuses []domain.PipelineStatus
	stErr    error
}

func (m *mockStore) UpsertConsumption(_ context.Context, readings []domain.Reading) (int, error) {
	m.upserts++
	return len(readings), nil
}

func (m *mockStore) LastLoaded(context.Context, string) (time.Time, bool, error) {
	return m.last, m.hasLast, nil
}

func (m *mockStore) CountGaps(context.Context, string, time.Time, time.Time) (int, error) {
	if len(m.gaps) == 0 {
		return 0, nil
	}
	g := m.gaps[0]
	m.gaps = m.gaps[1:]
	return g, nil
}

func (m *mockStore) HourlySeries(context.Context, string, time.Time) (domain.Series, error) {
	return nil, nil
}

func (m *mockStore) WriteStatus(_ context.Context, st domain.PipelineStatus) error {
	m.statuses = append(m.statuses, st)
	return m.stErr
}

// --- helpers ---

var (
	stockholm = time.FixedZone("CET", 3600)
	now       = time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
)

func newPipeline(p *mockProvider, s *mockStore) *ingest.Pipeline {
	pl := ingest.New(p, s, s, nil, stockholm)
	pl.SetClock(func() time.Time { return now })
	return pl
}

func twoRows() []domain.Reading {
	return []domain.Reading{{HomeID: "h", From: now}, {HomeID: "h", From: now.Add(time.Hour)}}
}

func TestRun_LastHoursWithoutRange(t *testing.T) {
	p := &mockProvider{rows: twoRows()}
	s := &mockStore{}

	res, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{LastHours: 720})
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 720, p.calls[0].last)
	assert.False(t, res.HasRange)
	assert.Equal(t, 2, res.Rows)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, s.statuses, 1)
	st := s.statuses[0]
	assert.Equal(t, ingest.PipelineName, st.PipelineName)
	assert.Equal(t, domain.StatusSuccess, st.Status)
	assert.Equal(t, res.RunID, st.RunID)
	require.NotNil(t, st.RowsLoaded)
	assert.Equal(t, 2, *st.RowsLoaded)
}

func TestRun_DateOnlyStartIsLocalMidnight(t *testing.T) {
	p := &mockProvider{}
	s := &mockStore{}

	_, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{Start: "2025-03-01", ChunkHours: 168})
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	c := p.calls[0]
	assert.True(t, c.start.Equal(time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)))
	assert.True(t, c.end.Equal(now), "end defaults to now")
	assert.Equal(t, 168, c.chunkHours)
}

func TestRun_LatestHoursOverridesStart(t *testing.T) {
	p := &mockProvider{}
	s := &mockStore{}

	opts := ingest.Options{Start: "2020-01-01", LatestHours: 24, OffsetHours: 2, ChunkHours: 24}
	res, err := newPipeline(p, s).Run(context.Background(), "h", opts)
	require.NoError(t, err)

	wantEnd := now.Add(-2 * time.Hour)
	assert.True(t, res.End.Equal(wantEnd))
	assert.True(t, res.Start.Equal(wantEnd.Add(-24*time.Hour)))
}

func TestRun_NegativeOffsetIgnored(t *testing.T) {
	p := &mockProvider{}
	res, err := newPipeline(p, &mockStore{}).Run(context.Background(), "h",
		ingest.Options{LatestHours: 6, OffsetHours: -3, ChunkHours: 24})
	require.NoError(t, err)
	assert.True(t, res.End.Equal(now))
}

func TestRun_ResumeFromLastLoaded(t *testing.T) {
	p := &mockProvider{}
	s := &mockStore{last: now.Add(-48 * time.Hour), hasLast: true}

	res, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{Resume: true, ChunkHours: 24})
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	assert.True(t, p.calls[0].start.Equal(now.Add(-48*time.Hour)))
	assert.True(t, res.HasRange)
}

func TestRun_ResumeWithoutDataFallsBackToLastHours(t *testing.T) {
	p := &mockProvider{}
	_, err := newPipeline(p, &mockStore{}).Run(context.Background(), "h", ingest.Options{Resume: true, LastHours: 24})
	require.NoError(t, err)
	require.Len(t, p.calls, 1)
	assert.Equal(t, 24, p.calls[0].last)
}

func TestRun_EmptyRangeSkipsFetch(t *testing.T) {
	p := &mockProvider{}
	s := &mockStore{last: now.Add(time.Hour), hasLast: true}

	res, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{Resume: true, ChunkHours: 24})
	require.NoError(t, err)
	assert.Empty(t, p.calls)
	assert.Zero(t, res.Rows)
	require.Len(t, s.statuses, 1)
	assert.Equal(t, domain.StatusSuccess, s.statuses[0].Status)
}

func TestRun_SelfHealRefetchesOnce(t *testing.T) {
	p := &mockProvider{rows: twoRows()}
	s := &mockStore{gaps: []int{3, 3}}

	opts := ingest.Options{Start: "2025-03-01", End: "2025-03-08", SelfHeal: true, ChunkHours: 168}
	res, err := newPipeline(p, s).Run(context.Background(), "h", opts)
	require.NoError(t, err)

	assert.Len(t, p.calls, 2)
	assert.Equal(t, 2, s.upserts)
	assert.Equal(t, 3, res.Gaps)
	assert.True(t, res.Healed)
	assert.Equal(t, 4, res.Rows)
	assert.Contains(t, s.statuses[0].Message, "refetched")
}

func TestRun_SelfHealWithoutGaps(t *testing.T) {
	p := &mockProvider{rows: twoRows()}
	s := &mockStore{}

	opts := ingest.Options{Start: "2025-03-01", End: "2025-03-08", SelfHeal: true, ChunkHours: 168}
	res, err := newPipeline(p, s).Run(context.Background(), "h", opts)
	require.NoError(t, err)
	assert.Len(t, p.calls, 1)
	assert.False(t, res.Healed)
}

func TestRun_SelfHealNeedsRange(t *testing.T) {
	p := &mockProvider{}
	s := &mockStore{gaps: []int{5}}

	_, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{LastHours: 24, SelfHeal: true})
	require.NoError(t, err)
	assert.Len(t, p.calls, 1)
}

func TestRun_FetchErrorWritesFailedStatus(t *testing.T) {
	boom := errors.New("tibber down")
	p := &mockProvider{err: boom}
	s := &mockStore{}

	_, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{LastHours: 24})
	require.ErrorIs(t, err, boom)

	require.Len(t, s.statuses, 1)
	assert.Equal(t, domain.StatusFailed, s.statuses[0].Status)
	assert.Contains(t, s.statuses[0].Message, "tibber down")
	assert.Nil(t, s.statuses[0].RowsLoaded)
}

func TestRun_StatusFailureDoesNotMaskResult(t *testing.T) {
	p := &mockProvider{rows: twoRows()}
	s := &mockStore{stErr: errors.New("db gone")}

	res, err := newPipeline(p, s).Run(context.Background(), "h", ingest.Options{LastHours: 24})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
}

func TestRun_InvalidStart(t *testing.T) {
	p := &mockProvider{}
	_, err := newPipeline(p, &mockStore{}).Run(context.Background(), "h", ingest.Options{Start: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Empty(t, p.calls)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-15", time.Date(2025, 1, 14, 23, 0, 0, 0, time.UTC)},
		{"2025-01-15T06:00:00Z", time.Date(2025, 1, 15, 6, 0, 0, 0, time.UTC)},
		{"2025-01-15T06:00:00+02:00", time.Date(2025, 1, 15, 4, 0, 0, 0, time.UTC)},
		{"2025-01-15T06:00:00", time.Date(2025, 1, 15, 5, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ingest.ParseTime(tt.in, stockholm)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}

	_, err := ingest.ParseTime("15/01/2025", stockholm)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
