package main

import (
	"log/slog"
	"testing"

	"github.com/alejandrodnm/wattcast/internal/adapters/notify"
	"github.com/alejandrodnm/wattcast/internal/application/ingest"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewReporter(t *testing.T) {
	r, err := newReporter("table")
	require.NoError(t, err)
	assert.IsType(t, &notify.Console{}, r)

	r, err = newReporter("json")
	require.NoError(t, err)
	assert.IsType(t, &notify.JSON{}, r)

	_, err = newReporter("csv")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestApplyIngestEnv(t *testing.T) {
	t.Setenv("TIBBER_LATEST_HOURS", "24")
	t.Setenv("TIBBER_OFFSET_HOURS", "2")
	t.Setenv("TIBBER_SELF_HEAL", "yes")
	t.Setenv("TIBBER_START", "2025-01-01")

	cmd := &cobra.Command{}
	cmd.Flags().String("start", "", "")
	require.NoError(t, cmd.Flags().Set("start", "2024-06-01"))

	opts := ingest.Options{Start: "2024-06-01"}
	applyIngestEnv(cmd, &opts)

	assert.Equal(t, 24, opts.LatestHours)
	assert.Equal(t, 2, opts.OffsetHours)
	assert.True(t, opts.SelfHeal)
	assert.False(t, opts.Resume)
	assert.Equal(t, "2024-06-01", opts.Start, "explicit flag wins over env")
}
