package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/wattcast/internal/baseline"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/spf13/cobra"
)

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Evaluate hourly baselines on a single train/test split",
	Long: `Load the last baseline_window_days of consumption, hold out the final
baseline_test_days as test and score every hourly baseline on it.`,
	RunE: runBaselines,
}

func init() {
	rootCmd.AddCommand(baselinesCmd)
}

func runBaselines(cmd *cobra.Command, args []string) error {
	bc := a.cfg.Backtest
	series, err := loadSeries(cmd.Context(), bc.BaselineWindowDays)
	if err != nil {
		return err
	}

	_, last, _ := series.Bounds()
	testStart := last.Add(-days(bc.BaselineTestDays))
	slog.Info("evaluating baselines",
		"window_days", bc.BaselineWindowDays,
		"points", len(series),
		"test_start", testStart.UTC().Format(time.RFC3339),
	)

	results, err := baseline.RunHourly(series, testStart, baseline.HourlyConfig{SeasonHours: bc.SeasonHours})
	if err != nil {
		return err
	}
	a.report.Baselines(results)
	return nil
}

// loadSeries lee la serie horaria de los últimos windowDays días.
func loadSeries(ctx context.Context, windowDays int) (domain.Series, error) {
	homeID, err := requireHomeID()
	if err != nil {
		return nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	since := time.Now().UTC().Add(-days(windowDays))
	series, err := store.HourlySeries(ctx, homeID, since)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no consumption stored since %s for home %s: %w",
			since.Format(time.DateOnly), homeID, domain.ErrInsufficientData)
	}
	return series, nil
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
