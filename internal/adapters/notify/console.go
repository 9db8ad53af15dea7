package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/alejandrodnm/wattcast/internal/evaluation"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Reporter con tablas de texto.
type Console struct {
	out io.Writer
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Baselines imprime las métricas de un único corte train/test.
func (c *Console) Baselines(results []domain.BaselineResult) {
	fmt.Fprintln(c.out, "\n=== BASELINES ===")
	c.printResults(results)
}

// Window imprime las métricas de una ventana del backtest.
func (c *Console) Window(w domain.WindowResult) {
	fmt.Fprintf(c.out, "\nWindow %s (train from %s)\n",
		w.Window.Label(), w.Window.TrainStart.UTC().Format("2006-01-02"))
	c.printResults(w.Results)
}

// Summary imprime las medias por modelo de todas las ventanas.
func (c *Console) Summary(avgs []domain.Score) {
	fmt.Fprintln(c.out, "\n=== BACKTEST SUMMARY (mean across windows) ===")
	if len(avgs) == 0 {
		fmt.Fprintln(c.out, "  no windows evaluated")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Model", "MAE", "RMSE", "MAPE")
	for _, s := range avgs {
		table.Append(s.Name, fmtMetric(s.MAE), fmtMetric(s.RMSE), fmtMAPE(s))
	}
	table.Render()
}

// MonthlyForecasts imprime las previsiones mensuales.
func (c *Console) MonthlyForecasts(forecasts []domain.MonthlyForecast) {
	fmt.Fprintln(c.out, "\n=== MONTHLY FORECASTS ===")
	if len(forecasts) == 0 {
		fmt.Fprintln(c.out, "  no forecasts (not enough monthly history)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Model", "Month", "Horizon", "kWh")
	for _, f := range forecasts {
		table.Append(
			f.Model,
			f.ForecastMonth.Format("2006-01"),
			fmt.Sprintf("%d", f.Horizon),
			fmt.Sprintf("%.1f", f.Value),
		)
	}
	table.Render()
}

// printResults imprime una tabla con un modelo por fila. Los modelos sin
// predicciones se listan aparte.
func (c *Console) printResults(results []domain.BaselineResult) {
	var empty []string

	table := tablewriter.NewWriter(c.out)
	table.Header("Model", "Coverage", "MAE", "RMSE", "MAPE")
	rows := 0
	for _, r := range results {
		s, err := evaluation.Score(r)
		if err != nil {
			empty = append(empty, r.Name)
			continue
		}
		table.Append(
			s.Name,
			fmt.Sprintf("%.0f%%", s.Coverage*100),
			fmtMetric(s.MAE),
			fmtMetric(s.RMSE),
			fmtMAPE(s),
		)
		rows++
	}
	if rows > 0 {
		table.Render()
	}

	for _, name := range empty {
		fmt.Fprintf(c.out, "  %s: no predictions\n", name)
	}
}

func fmtMetric(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func fmtMAPE(s domain.Score) string {
	if !s.HasMAPE {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", s.MAPE*100)
}
