package storage

// store.go: persistencia de lecturas, previsiones y estado del pipeline.
//
// Un único Store sirve SQLite (local, pure Go) y Postgres (Supabase). Las
// consultas se escriben con "?" y se pasan por Rebind; los instantes se guardan
// como segundos unix para que el SQL sea igual en los dos dialectos.
// En Postgres las tablas viven en el schema del dataset ("raw" por defecto).

import (
	"context"
	"fmt"
	"regexp"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	maxStatusMessage = 1000
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS consumption (
    home_id     TEXT    NOT NULL,
    from_time   INTEGER NOT NULL,
    to_time     INTEGER,
    consumption REAL,
    cost        REAL,
    unit_price  REAL,
    currency    TEXT,
    PRIMARY KEY (home_id, from_time)
);

CREATE TABLE IF NOT EXISTS monthly_forecasts (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    model          TEXT    NOT NULL,
    forecast_month TEXT    NOT NULL,
    created_at     INTEGER NOT NULL,
    value_kwh      REAL    NOT NULL,
    horizon_months INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_status (
    pipeline_name TEXT PRIMARY KEY,
    run_id        TEXT    NOT NULL,
    last_run_at   INTEGER NOT NULL,
    status        TEXT    NOT NULL,
    message       TEXT,
    rows_loaded   INTEGER
);

CREATE INDEX IF NOT EXISTS idx_forecasts_month ON monthly_forecasts(forecast_month);
`

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.consumption (
    home_id     TEXT             NOT NULL,
    from_time   BIGINT           NOT NULL,
    to_time     BIGINT,
    consumption DOUBLE PRECISION,
    cost        DOUBLE PRECISION,
    unit_price  DOUBLE PRECISION,
    currency    TEXT,
    PRIMARY KEY (home_id, from_time)
);

CREATE TABLE IF NOT EXISTS %[1]s.monthly_forecasts (
    id             BIGSERIAL PRIMARY KEY,
    model          TEXT             NOT NULL,
    forecast_month TEXT             NOT NULL,
    created_at     BIGINT           NOT NULL,
    value_kwh      DOUBLE PRECISION NOT NULL,
    horizon_months INTEGER          NOT NULL
);

CREATE TABLE IF NOT EXISTS %[1]s.pipeline_status (
    pipeline_name TEXT PRIMARY KEY,
    run_id        TEXT   NOT NULL,
    last_run_at   BIGINT NOT NULL,
    status        TEXT   NOT NULL,
    message       TEXT,
    rows_loaded   INTEGER
);

CREATE INDEX IF NOT EXISTS idx_forecasts_month ON %[1]s.monthly_forecasts(forecast_month);
`

// Store implementa ports.ConsumptionStorage, ports.ForecastStorage y ports.StatusStorage.
type Store struct {
	db     *sqlx.DB
	prefix string // "raw." en Postgres, vacío en SQLite
}

// Open abre la base de datos, aplica el schema y devuelve el Store.
// driver es "sqlite" o "postgres"; dataset solo se usa en Postgres.
func Open(driver, dsn, dataset string) (*Store, error) {
	var ddl string
	switch driver {
	case DriverSQLite:
		ddl = sqliteSchema
	case DriverPostgres:
		if !identRe.MatchString(dataset) {
			return nil, fmt.Errorf("storage.Open: dataset %q: %w", dataset, domain.ErrInvalidParameter)
		}
		ddl = fmt.Sprintf(postgresSchema, dataset)
	default:
		return nil, fmt.Errorf("storage.Open: driver %q: %w", driver, domain.ErrInvalidParameter)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite es single-writer
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: apply schema: %w", err)
	}
	return New(db, dataset), nil
}

// New envuelve una conexión ya abierta sin tocar el schema.
func New(db *sqlx.DB, dataset string) *Store {
	s := &Store{db: db}
	if db.DriverName() == DriverPostgres && dataset != "" {
		s.prefix = dataset + "."
	}
	return s
}

// Close cierra la conexión a la base de datos.
func (s *Store) Close() error {
	return s.db.Close()
}

// table devuelve el nombre cualificado de una tabla.
func (s *Store) table(name string) string {
	return s.prefix + name
}

// q reescribe los placeholders "?" al dialecto del driver.
func (s *Store) q(format string, args ...any) string {
	return s.db.Rebind(fmt.Sprintf(format, args...))
}

// Ping comprueba la conexión.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
