package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/alejandrodnm/wattcast/internal/evaluation"
)

// JSON implementa ports.Reporter escribiendo un objeto JSON por línea,
// pensado para encadenar con jq o guardar en ficheros.
type JSON struct {
	enc *json.Encoder
}

// NewJSON crea un reporter JSON sobre stdout.
func NewJSON() *JSON {
	return NewJSONWriter(os.Stdout)
}

// NewJSONWriter crea un reporter JSON sobre w.
func NewJSONWriter(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

type scoreJSON struct {
	Model    string   `json:"model"`
	Coverage *float64 `json:"coverage,omitempty"`
	MAE      *float64 `json:"mae"`
	RMSE     *float64 `json:"rmse"`
	MAPE     *float64 `json:"mape"`
}

type windowJSON struct {
	Type       string      `json:"type"`
	TrainStart *time.Time  `json:"train_start,omitempty"`
	TestStart  *time.Time  `json:"test_start,omitempty"`
	TestEnd    *time.Time  `json:"test_end,omitempty"`
	Scores     []scoreJSON `json:"scores"`
}

type forecastJSON struct {
	Model   string  `json:"model"`
	Month   string  `json:"month"`
	Horizon int     `json:"horizon"`
	Value   float64 `json:"value_kwh"`
}

func (j *JSON) Baselines(results []domain.BaselineResult) {
	j.emit(windowJSON{Type: "baselines", Scores: scoresJSON(results)})
}

func (j *JSON) Window(w domain.WindowResult) {
	j.emit(windowJSON{
		Type:       "window",
		TrainStart: &w.Window.TrainStart,
		TestStart:  &w.Window.TestStart,
		TestEnd:    &w.Window.TestEnd,
		Scores:     scoresJSON(w.Results),
	})
}

func (j *JSON) Summary(avgs []domain.Score) {
	out := windowJSON{Type: "summary", Scores: make([]scoreJSON, 0, len(avgs))}
	for _, s := range avgs {
		sj := scoreJSON{Model: s.Name, MAE: ptr(s.MAE), RMSE: ptr(s.RMSE)}
		if s.HasMAPE {
			sj.MAPE = ptr(s.MAPE)
		}
		out.Scores = append(out.Scores, sj)
	}
	j.emit(out)
}

func (j *JSON) MonthlyForecasts(forecasts []domain.MonthlyForecast) {
	rows := make([]forecastJSON, 0, len(forecasts))
	for _, f := range forecasts {
		rows = append(rows, forecastJSON{
			Model:   f.Model,
			Month:   f.ForecastMonth.Format("2006-01"),
			Horizon: f.Horizon,
			Value:   f.Value,
		})
	}
	j.emit(struct {
		Type      string         `json:"type"`
		Forecasts []forecastJSON `json:"forecasts"`
	}{"monthly_forecasts", rows})
}

// scoresJSON convierte resultados a scores; sin predicciones, las métricas van a null.
func scoresJSON(results []domain.BaselineResult) []scoreJSON {
	out := make([]scoreJSON, 0, len(results))
	for _, r := range results {
		sj := scoreJSON{Model: r.Name, Coverage: ptr(r.Coverage)}
		if s, err := evaluation.Score(r); err == nil {
			sj.MAE, sj.RMSE = ptr(s.MAE), ptr(s.RMSE)
			if s.HasMAPE {
				sj.MAPE = ptr(s.MAPE)
			}
		}
		out = append(out, sj)
	}
	return out
}

func (j *JSON) emit(v any) {
	if err := j.enc.Encode(v); err != nil {
		slog.Warn("json report write failed", "err", err)
	}
}

func ptr(v float64) *float64 { return &v }
