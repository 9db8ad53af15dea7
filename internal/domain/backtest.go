package domain

import "time"

// BacktestWindow delimita un corte train/test.
// TrainStart <= TrainEnd == TestStart <= TestEnd.
type BacktestWindow struct {
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// Label devuelve "YYYY-MM-DD -> YYYY-MM-DD" del rango de test en UTC.
func (w BacktestWindow) Label() string {
	return w.TestStart.UTC().Format(time.DateOnly) + " -> " + w.TestEnd.UTC().Format(time.DateOnly)
}

// WindowResult es lo que produce el runner por cada ventana: las cuatro
// estrategias horarias en orden fijo.
type WindowResult struct {
	Window  BacktestWindow
	Results []BaselineResult
}
