package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/alejandrodnm/wattcast/internal/ports"
	"github.com/alejandrodnm/wattcast/internal/telemetry"
	"github.com/google/uuid"
)

// PipelineName identifica la ingesta de Tibber en pipeline_status.
const PipelineName = "tibber"

// Options controla qué horas se descargan en una ejecución.
//
// Prioridad del rango: LatestHours > Start/End; Resume sustituye el inicio por
// la última hora cargada si existe. Sin rango se piden las últimas LastHours.
type Options struct {
	LastHours   int
	LatestHours int
	OffsetHours int
	Resume      bool
	SelfHeal    bool
	Start       string // YYYY-MM-DD o RFC3339
	End         string
	ChunkHours  int
}

// Result resume una ejecución.
type Result struct {
	RunID    string
	HasRange bool
	Start    time.Time
	End      time.Time
	Rows     int
	Gaps     int
	Healed   bool
}

// Pipeline descarga consumo del proveedor y lo guarda con merge.
type Pipeline struct {
	provider ports.ConsumptionProvider
	store    ports.ConsumptionStorage
	status   ports.StatusStorage
	metrics  *telemetry.Metrics
	loc      *time.Location
	now      func() time.Time
}

// New crea un Pipeline. status y metrics pueden ser nil.
func New(
	provider ports.ConsumptionProvider,
	store ports.ConsumptionStorage,
	status ports.StatusStorage,
	metrics *telemetry.Metrics,
	loc *time.Location,
) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		provider: provider,
		store:    store,
		status:   status,
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Run ejecuta una ingesta completa y registra su estado.
// Un fallo al escribir el estado se loguea pero nunca oculta el error de la ingesta.
func (p *Pipeline) Run(ctx context.Context, homeID string, opts Options) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	started := p.now()

	err := p.run(ctx, homeID, opts, &res)

	st := domain.PipelineStatus{
		PipelineName: PipelineName,
		RunID:        res.RunID,
		LastRunAt:    p.now(),
		Status:       domain.StatusSuccess,
		Message:      res.summary(),
		RowsLoaded:   &res.Rows,
	}
	if err != nil {
		st.Status = domain.StatusFailed
		st.Message = err.Error()
		st.RowsLoaded = nil
	}
	p.writeStatus(ctx, st)

	if err != nil {
		return res, err
	}
	slog.Info("ingest complete",
		"run_id", res.RunID,
		"rows", res.Rows,
		"gaps", res.Gaps,
		"healed", res.Healed,
		"duration", p.now().Sub(started).Round(time.Millisecond),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, homeID string, opts Options, res *Result) error {
	start, end, hasRange, err := p.resolveRange(ctx, homeID, opts)
	if err != nil {
		return err
	}
	res.HasRange, res.Start, res.End = hasRange, start, end

	if hasRange && !start.Before(end) {
		slog.Info("nothing to ingest", "start", start, "end", end)
		return nil
	}

	n, err := p.load(ctx, homeID, opts, res)
	if err != nil {
		return err
	}
	res.Rows = n

	if !opts.SelfHeal || !hasRange {
		return nil
	}

	gaps, err := p.store.CountGaps(ctx, homeID, start, end)
	if err != nil {
		return fmt.Errorf("ingest.Run: count gaps: %w", err)
	}
	res.Gaps = gaps
	p.metrics.Gaps(gaps)
	if gaps == 0 {
		return nil
	}

	// Un solo reintento: si Tibber no tiene las horas, volver a pedirlas no ayuda.
	slog.Warn("gaps found after load, refetching window", "gaps", gaps, "start", start, "end", end)
	n, err = p.load(ctx, homeID, opts, res)
	if err != nil {
		return fmt.Errorf("ingest.Run: self-heal: %w", err)
	}
	res.Rows += n
	res.Healed = true
	return nil
}

// load descarga según el rango resuelto (o las últimas horas) y hace upsert.
func (p *Pipeline) load(ctx context.Context, homeID string, opts Options, res *Result) (int, error) {
	var (
		readings []domain.Reading
		err      error
	)
	if res.HasRange {
		readings, err = p.provider.FetchChunked(ctx, homeID, res.Start, res.End, opts.ChunkHours)
	} else {
		readings, err = p.provider.FetchLast(ctx, homeID, opts.LastHours)
	}
	if err != nil {
		return 0, fmt.Errorf("ingest.Run: fetch: %w", err)
	}

	n, err := p.store.UpsertConsumption(ctx, readings)
	if err != nil {
		return 0, fmt.Errorf("ingest.Run: upsert: %w", err)
	}
	p.metrics.RowsLoaded(n)
	return n, nil
}

// resolveRange decide el rango [start, end) de la ejecución. hasRange=false
// significa "pedir las últimas LastHours".
func (p *Pipeline) resolveRange(ctx context.Context, homeID string, opts Options) (start, end time.Time, hasRange bool, err error) {
	if opts.Start != "" {
		if start, err = ParseTime(opts.Start, p.loc); err != nil {
			return start, end, false, fmt.Errorf("ingest.Run: start: %w", err)
		}
	}
	if opts.End != "" {
		if end, err = ParseTime(opts.End, p.loc); err != nil {
			return start, end, false, fmt.Errorf("ingest.Run: end: %w", err)
		}
	}

	if opts.LatestHours > 0 {
		end = p.now().In(p.loc).Add(-time.Duration(max(opts.OffsetHours, 0)) * time.Hour)
		start = end.Add(-time.Duration(opts.LatestHours) * time.Hour)
	}

	if opts.Resume {
		last, ok, err := p.store.LastLoaded(ctx, homeID)
		if err != nil {
			return start, end, false, fmt.Errorf("ingest.Run: last loaded: %w", err)
		}
		if ok {
			start = last.In(p.loc)
			slog.Info("resuming from last loaded hour", "start", start)
		}
	}

	if start.IsZero() {
		return start, end, false, nil
	}
	if end.IsZero() {
		end = p.now().In(p.loc)
	}
	return start, end, true, nil
}

func (p *Pipeline) writeStatus(ctx context.Context, st domain.PipelineStatus) {
	if p.status == nil {
		return
	}
	if err := p.status.WriteStatus(ctx, st); err != nil {
		slog.Warn("status write failed", "pipeline", st.PipelineName, "err", err)
	}
}

func (r Result) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d rows", r.RunID, r.Rows)
	if r.HasRange {
		fmt.Fprintf(&b, " in %s..%s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	if r.Gaps > 0 {
		fmt.Fprintf(&b, ", %d gaps", r.Gaps)
	}
	if r.Healed {
		b.WriteString(", refetched")
	}
	return b.String()
}

// ParseTime acepta una fecha YYYY-MM-DD (medianoche en loc) o un instante RFC3339.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if !strings.Contains(s, "T") {
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q: %w", s, domain.ErrInvalidParameter)
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	// Sin zona: hora local de loc
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, domain.ErrInvalidParameter)
	}
	return t, nil
}
