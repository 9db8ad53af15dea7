package domain

import "time"

// Reading es una fila de consumo tal como llega de la API de Tibber.
// Los punteros nil representan valores ausentes en la respuesta.
type Reading struct {
	HomeID      string
	From        time.Time
	To          time.Time
	Consumption *float64 // kWh
	Cost        *float64
	UnitPrice   *float64
	Currency    string
}

// PipelineStatus es el registro de la última ejecución de un pipeline.
type PipelineStatus struct {
	PipelineName string
	RunID        string
	LastRunAt    time.Time
	Status       string // success | failed
	Message      string
	RowsLoaded   *int
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
