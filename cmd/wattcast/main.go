package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // Europe/Stockholm en contenedores sin zoneinfo

	"github.com/alejandrodnm/wattcast/config"
	"github.com/alejandrodnm/wattcast/internal/adapters/notify"
	"github.com/alejandrodnm/wattcast/internal/adapters/storage"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/alejandrodnm/wattcast/internal/ports"
	"github.com/alejandrodnm/wattcast/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	format     string
	logFormat  string
)

// app agrupa lo que comparten todos los subcomandos. Se construye en
// PersistentPreRunE, después de parsear flags.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	metrics *telemetry.Metrics
	report  ports.Reporter
}

var a app

var rootCmd = &cobra.Command{
	Use:   "wattcast",
	Short: "Household electricity ingestion, baselines and backtesting",
	Long: `wattcast pulls hourly consumption from Tibber into SQLite or Postgres and
evaluates simple forecasting baselines on it: a single train/test split,
rolling-window backtests and monthly consumption forecasts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if a.cfg == nil || a.cfg.Metrics.Textfile == "" {
			return nil
		}
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			return err
		}
		slog.Debug("metrics written", "path", a.cfg.Metrics.Textfile)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	pf.BoolVar(&verbose, "verbose", false, "set log level to debug")
	pf.StringVar(&format, "format", "table", "report format: table|json")
	pf.StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("wattcast failed", "err", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	report, err := newReporter(format)
	if err != nil {
		return err
	}

	a = app{cfg: cfg, loc: loc, metrics: telemetry.New(), report: report}
	slog.Debug("config loaded", "path", configPath, "driver", cfg.Storage.Driver, "timezone", cfg.Tibber.Timezone)
	return nil
}

func newReporter(format string) (ports.Reporter, error) {
	switch format {
	case "table", "":
		return notify.NewConsole(), nil
	case "json":
		return notify.NewJSON(), nil
	default:
		return nil, fmt.Errorf("--format %q: %w", format, domain.ErrInvalidParameter)
	}
}

func openStore() (*storage.Store, error) {
	st := a.cfg.Storage
	store, err := storage.Open(st.Driver, st.DSN, st.Dataset)
	if err != nil {
		return nil, err
	}
	slog.Debug("storage opened", "driver", st.Driver, "dataset", st.Dataset)
	return store, nil
}

func requireHomeID() (string, error) {
	if a.cfg.Tibber.HomeID == "" {
		return "", fmt.Errorf("missing home id: set TIBBER_HOME_ID or tibber.home_id")
	}
	return a.cfg.Tibber.HomeID, nil
}

// setupLogger manda los logs a stderr: stdout queda para los reportes.
func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
