package telemetry

// metrics.go: contadores Prometheus de ingestión y evaluación.
//
// wattcast es una herramienta de ejecución corta, así que no expone /metrics:
// al terminar vuelca el registro en formato textfile para el collector de
// node_exporter. Todos los métodos aceptan un receptor nil (métricas desactivadas).

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wattcast"

// Metrics agrupa los collectors de una ejecución.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	retries    prometheus.Counter
	rowsLoaded prometheus.Counter
	gaps       prometheus.Gauge
	windows    prometheus.Counter
	forecasts  *prometheus.CounterVec
}

// New registra los collectors en un registro propio.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "GraphQL requests to the metering API by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "Retried metering API requests.",
		}),
		rowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_total",
			Help:      "Consumption rows upserted.",
		}),
		gaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_gaps",
			Help:      "Gaps larger than one hour found in the last ingested range.",
		}),
		windows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtest_windows_total",
			Help:      "Backtest windows evaluated.",
		}),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_forecasts_total",
			Help:      "Monthly forecasts produced by model.",
		}, []string{"model"}),
	}
	m.registry.MustRegister(m.requests, m.retries, m.rowsLoaded, m.gaps, m.windows, m.forecasts)
	return m
}

// Registry expone el registro (tests y exportadores).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Request(outcome string) {
	if m != nil {
		m.requests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Retry() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) RowsLoaded(n int) {
	if m != nil {
		m.rowsLoaded.Add(float64(n))
	}
}

func (m *Metrics) Gaps(n int) {
	if m != nil {
		m.gaps.Set(float64(n))
	}
}

func (m *Metrics) Window() {
	if m != nil {
		m.windows.Inc()
	}
}

func (m *Metrics) Forecast(model string) {
	if m != nil {
		m.forecasts.WithLabelValues(model).Inc()
	}
}

// WriteTextfile vuelca el registro en path (escritura atómica vía rename).
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("telemetry.WriteTextfile %q: %w", path, err)
	}
	return nil
}
