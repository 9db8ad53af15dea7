package ports

import "github.com/alejandrodnm/wattcast/internal/domain"

// Reporter presenta resultados de evaluación al usuario.
type Reporter interface {
	// Baselines muestra las métricas de un único corte train/test.
	Baselines(results []domain.BaselineResult)

	// Window muestra las métricas de una ventana del backtest.
	Window(w domain.WindowResult)

	// Summary muestra las medias por modelo a lo largo de todas las ventanas.
	Summary(avgs []domain.Score)

	// MonthlyForecasts muestra las previsiones mensuales.
	MonthlyForecasts(forecasts []domain.MonthlyForecast)
}
