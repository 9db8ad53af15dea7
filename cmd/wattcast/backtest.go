package main

import (
	"errors"
	"log/slog"

	"github.com/alejandrodnm/wattcast/internal/baseline"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/alejandrodnm/wattcast/internal/evaluation"
	"github.com/spf13/cobra"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Rolling-window backtest of the hourly baselines",
	Long: `Walk train/test windows over the last backtest.window_days of consumption,
score every hourly baseline per window and print the mean across windows.

Windows slide by default (train start moves with the step); set
backtest.expanding to keep the train start fixed.`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	bc := a.cfg.Backtest
	series, err := loadSeries(cmd.Context(), bc.WindowDays)
	if err != nil {
		return err
	}

	cfg := evaluation.BacktestConfig{
		Windows: evaluation.WindowConfig{
			TrainDays: bc.TrainDays,
			TestDays:  bc.TestDays,
			StepDays:  bc.StepDays,
			Expanding: bc.Expanding,
		},
		Hourly: baseline.HourlyConfig{SeasonHours: bc.SeasonHours},
	}
	results, err := evaluation.Backtest(series, cfg)
	if err != nil {
		return err
	}

	slog.Info("backtest starting",
		"points", len(series),
		"train_days", bc.TrainDays,
		"test_days", bc.TestDays,
		"step_days", bc.StepDays,
		"expanding", bc.Expanding,
	)

	summary := evaluation.NewSummary()
	windows, skipped := 0, 0
	for wr, err := range results {
		if err != nil {
			if !errors.Is(err, domain.ErrInsufficientData) {
				return err
			}
			slog.Warn("skipping window", "window", wr.Window.Label(), "err", err)
			skipped++
			continue
		}

		windows++
		a.metrics.Window()
		a.report.Window(wr)
		for _, r := range wr.Results {
			if s, err := evaluation.Score(r); err == nil {
				summary.Add(s)
			}
		}
	}

	a.report.Summary(summary.Averages())
	slog.Info("backtest complete", "windows", windows, "skipped", skipped)
	return nil
}
