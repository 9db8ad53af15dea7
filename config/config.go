package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de wattcast.
type Config struct {
	Tibber   TibberConfig   `yaml:"tibber"`
	Storage  StorageConfig  `yaml:"storage"`
	Backtest BacktestConfig `yaml:"backtest"`
	Monthly  MonthlyConfig  `yaml:"monthly"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// TibberConfig controla el acceso a la API de Tibber.
type TibberConfig struct {
	APIURL            string  `yaml:"api_url"`
	Token             string  `yaml:"token"` // mejor por TIBBER_TOKEN que en el YAML
	HomeID            string  `yaml:"home_id"`
	Timezone          string  `yaml:"timezone"`    // zona de las fechas YYYY-MM-DD y de los meses
	ChunkHours        int     `yaml:"chunk_hours"` // tamaño de cada petición por rango
	LastHours         int     `yaml:"last_hours"`  // horas recientes cuando no hay rango
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	Driver  string `yaml:"driver"`  // sqlite | postgres
	DSN     string `yaml:"dsn"`     // ruta SQLite o URL postgres://
	Dataset string `yaml:"dataset"` // schema de Postgres
}

// BacktestConfig controla el corte simple de baselines y el backtest rolling.
type BacktestConfig struct {
	WindowDays         int   `yaml:"window_days"` // historia usada por el backtest
	TrainDays          int   `yaml:"train_days"`
	TestDays           int   `yaml:"test_days"`
	StepDays           int   `yaml:"step_days"`
	Expanding          bool  `yaml:"expanding"` // train_start fijo en vez de deslizante
	SeasonHours        []int `yaml:"season_hours"`
	BaselineWindowDays int   `yaml:"baseline_window_days"`
	BaselineTestDays   int   `yaml:"baseline_test_days"`
}

// MonthlyConfig controla las previsiones mensuales.
type MonthlyConfig struct {
	Horizon       int `yaml:"horizon"`
	RollingWindow int `yaml:"rolling_window"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// MetricsConfig controla la exportación de métricas Prometheus.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // vacío = no exportar
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// El YAML es opcional: sin archivo, todo sale de variables de entorno y defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Validate comprueba rangos. Los ceros ya se han sustituido por defaults,
// así que aquí solo llegan valores negativos o mal escritos.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"tibber.chunk_hours", c.Tibber.ChunkHours},
		{"tibber.last_hours", c.Tibber.LastHours},
		{"backtest.window_days", c.Backtest.WindowDays},
		{"backtest.train_days", c.Backtest.TrainDays},
		{"backtest.test_days", c.Backtest.TestDays},
		{"backtest.step_days", c.Backtest.StepDays},
		{"backtest.baseline_window_days", c.Backtest.BaselineWindowDays},
		{"backtest.baseline_test_days", c.Backtest.BaselineTestDays},
		{"monthly.horizon", c.Monthly.Horizon},
		{"monthly.rolling_window", c.Monthly.RollingWindow},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("config: %s=%d must be positive: %w", p.name, p.v, domain.ErrInvalidParameter)
		}
	}
	for _, h := range c.Backtest.SeasonHours {
		if h <= 0 {
			return fmt.Errorf("config: backtest.season_hours contains %d: %w", h, domain.ErrInvalidParameter)
		}
	}
	if c.Tibber.MaxRetries < 0 {
		return fmt.Errorf("config: tibber.max_retries=%d: %w", c.Tibber.MaxRetries, domain.ErrInvalidParameter)
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: storage.driver %q: %w", c.Storage.Driver, domain.ErrInvalidParameter)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location devuelve la zona horaria configurada.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Tibber.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: tibber.timezone %q: %w", c.Tibber.Timezone, domain.ErrInvalidParameter)
	}
	return loc, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"TIBBER_TOKEN", &cfg.Tibber.Token},
		{"TIBBER_HOME_ID", &cfg.Tibber.HomeID},
		{"TIBBER_API_URL", &cfg.Tibber.APIURL},
		{"TIBBER_TIMEZONE", &cfg.Tibber.Timezone},
		{"SUPABASE_DATABASE_URL", &cfg.Storage.DSN},
		{"DATABASE_URL", &cfg.Storage.DSN}, // gana sobre SUPABASE_DATABASE_URL
		{"STORAGE_DRIVER", &cfg.Storage.Driver},
		{"DLT_DATASET", &cfg.Storage.Dataset},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
		{"METRICS_TEXTFILE", &cfg.Metrics.Textfile},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"TIBBER_CHUNK_HOURS", &cfg.Tibber.ChunkHours},
		{"TIBBER_LAST_HOURS", &cfg.Tibber.LastHours},
		{"BACKTEST_WINDOW_DAYS", &cfg.Backtest.WindowDays},
		{"BACKTEST_TRAIN_DAYS", &cfg.Backtest.TrainDays},
		{"BACKTEST_TEST_DAYS", &cfg.Backtest.TestDays},
		{"BACKTEST_STEP_DAYS", &cfg.Backtest.StepDays},
		{"BASELINE_WINDOW_DAYS", &cfg.Backtest.BaselineWindowDays},
		{"BASELINE_TEST_DAYS", &cfg.Backtest.BaselineTestDays},
		{"MONTHLY_FORECAST_HORIZON", &cfg.Monthly.Horizon},
		{"MONTHLY_ROLLING_WINDOW", &cfg.Monthly.RollingWindow},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s=%q: %w", i.env, v, domain.ErrInvalidParameter)
		}
		*i.dst = n
	}

	// Si llega una URL de Postgres por entorno sin driver explícito, usarlo.
	if cfg.Storage.Driver == "" && strings.HasPrefix(cfg.Storage.DSN, "postgres") {
		cfg.Storage.Driver = "postgres"
	}
	return nil
}

// setDefaults rellena los valores no configurados.
func setDefaults(cfg *Config) {
	if cfg.Tibber.Timezone == "" {
		cfg.Tibber.Timezone = "Europe/Stockholm"
	}
	if cfg.Tibber.ChunkHours == 0 {
		cfg.Tibber.ChunkHours = 168
	}
	if cfg.Tibber.LastHours == 0 {
		cfg.Tibber.LastHours = 720
	}
	if cfg.Tibber.RequestsPerSecond <= 0 {
		cfg.Tibber.RequestsPerSecond = 2
	}
	if cfg.Tibber.MaxRetries == 0 {
		cfg.Tibber.MaxRetries = 6
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "wattcast.db"
	}
	if cfg.Storage.Dataset == "" {
		cfg.Storage.Dataset = "raw"
	}
	if cfg.Backtest.WindowDays == 0 {
		cfg.Backtest.WindowDays = 120
	}
	if cfg.Backtest.TrainDays == 0 {
		cfg.Backtest.TrainDays = 60
	}
	if cfg.Backtest.TestDays == 0 {
		cfg.Backtest.TestDays = 7
	}
	if cfg.Backtest.StepDays == 0 {
		cfg.Backtest.StepDays = 7
	}
	if len(cfg.Backtest.SeasonHours) == 0 {
		cfg.Backtest.SeasonHours = []int{24, 168}
	}
	if cfg.Backtest.BaselineWindowDays == 0 {
		cfg.Backtest.BaselineWindowDays = 90
	}
	if cfg.Backtest.BaselineTestDays == 0 {
		cfg.Backtest.BaselineTestDays = 7
	}
	if cfg.Monthly.Horizon == 0 {
		cfg.Monthly.Horizon = 3
	}
	if cfg.Monthly.RollingWindow == 0 {
		cfg.Monthly.RollingWindow = 6
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
