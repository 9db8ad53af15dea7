package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alejandrodnm/wattcast/internal/domain"
)

// WriteStatus guarda el resultado de la última ejecución de un pipeline.
// Una fila por pipeline; el mensaje se corta a 1000 caracteres.
func (s *Store) WriteStatus(ctx context.Context, st domain.PipelineStatus) error {
	var msg sql.NullString
	if st.Message != "" {
		msg = sql.NullString{String: truncate(st.Message, maxStatusMessage), Valid: true}
	}
	var rows sql.NullInt64
	if st.RowsLoaded != nil {
		rows = sql.NullInt64{Int64: int64(*st.RowsLoaded), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO %s (pipeline_name, run_id, last_run_at, status, message, rows_loaded)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (pipeline_name) DO UPDATE SET
			run_id      = excluded.run_id,
			last_run_at = excluded.last_run_at,
			status      = excluded.status,
			message     = excluded.message,
			rows_loaded = excluded.rows_loaded
	`, s.table("pipeline_status")),
		st.PipelineName, st.RunID, st.LastRunAt.Unix(), st.Status, msg, rows,
	)
	if err != nil {
		return fmt.Errorf("storage.WriteStatus %s: %w", st.PipelineName, err)
	}
	return nil
}

// Status lee el último estado registrado de un pipeline. ok=false si nunca se ejecutó.
func (s *Store) Status(ctx context.Context, pipelineName string) (domain.PipelineStatus, bool, error) {
	var row struct {
		Name      string         `db:"pipeline_name"`
		RunID     string         `db:"run_id"`
		LastRunAt int64          `db:"last_run_at"`
		Status    string         `db:"status"`
		Message   sql.NullString `db:"message"`
		Rows      sql.NullInt64  `db:"rows_loaded"`
	}
	err := s.db.GetContext(ctx, &row, s.q(`
		SELECT pipeline_name, run_id, last_run_at, status, message, rows_loaded
		FROM %s WHERE pipeline_name = ?
	`, s.table("pipeline_status")), pipelineName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PipelineStatus{}, false, nil
	}
	if err != nil {
		return domain.PipelineStatus{}, false, fmt.Errorf("storage.Status %s: %w", pipelineName, err)
	}

	st := domain.PipelineStatus{
		PipelineName: row.Name,
		RunID:        row.RunID,
		LastRunAt:    unixUTC(row.LastRunAt),
		Status:       row.Status,
		Message:      row.Message.String,
	}
	if row.Rows.Valid {
		n := int(row.Rows.Int64)
		st.RowsLoaded = &n
	}
	return st, true, nil
}

// truncate corta s a como mucho n runas.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
