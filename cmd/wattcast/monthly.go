package main

import (
	"log/slog"
	"time"

	"github.com/alejandrodnm/wattcast/internal/baseline"
	"github.com/spf13/cobra"
)

var monthlyNoSave bool

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Forecast monthly consumption and store the forecasts",
	Long: `Aggregate all stored hours into calendar months (in tibber.timezone), run the
monthly baselines for monthly.horizon months ahead and save the result to
the monthly_forecasts table.`,
	RunE: runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
	monthlyCmd.Flags().BoolVar(&monthlyNoSave, "no-save", false, "print forecasts without storing them")
}

func runMonthly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	homeID, err := requireHomeID()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	series, err := store.HourlySeries(ctx, homeID, time.Time{})
	if err != nil {
		return err
	}
	months := baseline.MonthlyTotals(series, a.loc)

	mc := a.cfg.Monthly
	forecasts := baseline.RunMonthly(months, mc.Horizon, mc.RollingWindow)
	slog.Info("monthly forecasts computed",
		"months", len(months),
		"horizon", mc.Horizon,
		"rolling_window", mc.RollingWindow,
		"forecasts", len(forecasts),
	)
	a.report.MonthlyForecasts(forecasts)

	if monthlyNoSave || len(forecasts) == 0 {
		return nil
	}
	if err := store.SaveMonthlyForecasts(ctx, forecasts, time.Now().UTC()); err != nil {
		return err
	}
	for _, f := range forecasts {
		a.metrics.Forecast(f.Model)
	}
	slog.Info("monthly forecasts saved", "rows", len(forecasts))
	return nil
}
