package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alejandrodnm/wattcast/internal/adapters/tibber"
	"github.com/alejandrodnm/wattcast/internal/application/ingest"
	"github.com/spf13/cobra"
)

var ingestOpts ingest.Options

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load hourly consumption from Tibber into storage",
	Long: `Fetch hourly consumption from the Tibber GraphQL API and merge it into the
consumption table, keyed by (home_id, from_time).

Examples:
  wattcast ingest                              # last 720 hours
  wattcast ingest --start 2024-01-01           # range until now, in 168h chunks
  wattcast ingest --latest-hours 24 --offset-hours 2 --self-heal
  wattcast ingest --resume                     # continue from the last stored hour`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	f := ingestCmd.Flags()
	f.IntVar(&ingestOpts.LastHours, "last-hours", 0, "recent hours to pull when no range is given (default from config)")
	f.IntVar(&ingestOpts.LatestHours, "latest-hours", 0, "rolling window of the latest N hours (env TIBBER_LATEST_HOURS)")
	f.IntVar(&ingestOpts.OffsetHours, "offset-hours", 0, "move the end back N hours to skip partial data (env TIBBER_OFFSET_HOURS)")
	f.BoolVar(&ingestOpts.Resume, "resume", false, "start from the last loaded hour (env TIBBER_RESUME)")
	f.BoolVar(&ingestOpts.SelfHeal, "self-heal", false, "refetch the window once if gaps remain (env TIBBER_SELF_HEAL)")
	f.StringVar(&ingestOpts.Start, "start", "", "range start, YYYY-MM-DD or RFC3339 (env TIBBER_START)")
	f.StringVar(&ingestOpts.End, "end", "", "range end, defaults to now when --start is set (env TIBBER_END)")
	f.IntVar(&ingestOpts.ChunkHours, "chunk-hours", 0, "hours per range request (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	homeID, err := requireHomeID()
	if err != nil {
		return err
	}
	if a.cfg.Tibber.Token == "" {
		return fmt.Errorf("missing Tibber token: set TIBBER_TOKEN")
	}

	opts := ingestOpts
	applyIngestEnv(cmd, &opts)
	if opts.LastHours == 0 {
		opts.LastHours = a.cfg.Tibber.LastHours
	}
	if opts.ChunkHours == 0 {
		opts.ChunkHours = a.cfg.Tibber.ChunkHours
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tc := a.cfg.Tibber
	client := tibber.NewClient(tc.APIURL, tc.Token,
		tibber.WithRateLimit(tc.RequestsPerSecond, max(int(tc.RequestsPerSecond)*2, 1)),
		tibber.WithRetry(tc.MaxRetries, tibber.DefaultRetryWait),
		tibber.WithMetrics(a.metrics),
	)

	slog.Info("ingest starting",
		"home", homeID,
		"start", opts.Start,
		"end", opts.End,
		"latest_hours", opts.LatestHours,
		"resume", opts.Resume,
		"self_heal", opts.SelfHeal,
	)

	p := ingest.New(client, store, store, a.metrics, a.loc)
	res, err := p.Run(cmd.Context(), homeID, opts)
	if err != nil {
		return err
	}
	slog.Info("ingest finished", "run_id", res.RunID, "rows", res.Rows, "gaps", res.Gaps)
	return nil
}

// applyIngestEnv rellena desde entorno los flags que no se pasaron en la línea
// de comandos, con los mismos nombres que usaban los jobs programados.
func applyIngestEnv(cmd *cobra.Command, opts *ingest.Options) {
	changed := cmd.Flags().Changed

	envInt := func(flag, env string, dst *int) {
		if changed(flag) {
			return
		}
		if v, err := strconv.Atoi(os.Getenv(env)); err == nil {
			*dst = v
		}
	}
	envBool := func(flag, env string, dst *bool) {
		if changed(flag) {
			return
		}
		switch strings.ToLower(os.Getenv(env)) {
		case "1", "true", "yes":
			*dst = true
		}
	}
	envStr := func(flag, env string, dst *string) {
		if v := os.Getenv(env); !changed(flag) && v != "" {
			*dst = v
		}
	}

	envInt("latest-hours", "TIBBER_LATEST_HOURS", &opts.LatestHours)
	envInt("offset-hours", "TIBBER_OFFSET_HOURS", &opts.OffsetHours)
	envBool("resume", "TIBBER_RESUME", &opts.Resume)
	envBool("self-heal", "TIBBER_SELF_HEAL", &opts.SelfHeal)
	envStr("start", "TIBBER_START", &opts.Start)
	envStr("end", "TIBBER_END", &opts.End)
}
