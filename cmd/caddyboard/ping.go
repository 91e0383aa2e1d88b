package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/caddyboard/internal/app"
	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/domain"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

var (
	pingOutput  string
	pingTimeout time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe every upstream of the current snapshot",
	Long: `Load the current snapshot and try a TCP connection to each upstream.

The snapshot is never re-extracted: run 'caddyboard extract --save' or start
the server first. Every upstream is probed in parallel with a fixed timeout.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().StringVarP(&pingOutput, "output", "o", formatTable,
		"Output format: table, json or yaml")
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 0,
		"Per-upstream timeout (env: CADDYBOARD_PROBE_TIMEOUT)")

	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(pingOutput, formatTable, formatJSON, formatYAML, "yml"); err != nil {
		return err
	}

	cfg := config.Load()
	if pingTimeout > 0 {
		cfg.ProbeTimeout = pingTimeout
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	backend, err := app.OpenBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close(log)

	results, err := app.NewCatalog(cfg, backend.Store, nil, nil, log).Ping(cmd.Context())
	if err != nil {
		return err
	}

	if pingOutput == formatTable {
		return writeTable(cmd.OutOrStdout(), results)
	}
	return encode(cmd.OutOrStdout(), pingOutput, results)
}

func writeTable(w io.Writer, results []domain.PingResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTARGET\tSTATUS\tLATENCY")
	for _, r := range results {
		latency := "-"
		if r.LatencyMs != nil {
			latency = fmt.Sprintf("%dms", *r.LatencyMs)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Target, r.Status, latency)
	}
	return tw.Flush()
}
