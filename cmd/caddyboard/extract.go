package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/caddyboard/internal/app"
	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
	"github.com/MrSnakeDoc/caddyboard/internal/sources/caddyfile"
)

var (
	extractCaddyfile string
	extractOutput    string
	extractSave      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the services of a Caddyfile and print them",
	Long: `Run the extraction once and print the resulting services.

With --save the result also replaces the configured snapshot, exactly like
POST /api/refresh.

Examples:
  # Print the services of ./Caddyfile as JSON
  caddyboard extract

  # Inspect another file as YAML
  caddyboard extract --caddyfile /etc/caddy/Caddyfile -o yaml`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractCaddyfile, "caddyfile", "",
		"Path to the Caddyfile (env: CADDYFILE_PATH)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", formatJSON,
		"Output format: json or yaml")
	extractCmd.Flags().BoolVar(&extractSave, "save", false,
		"Also write the result to the snapshot store")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(extractOutput, formatJSON, formatYAML, "yml"); err != nil {
		return err
	}

	cfg := config.Load()
	if extractCaddyfile != "" {
		cfg.CaddyfilePath = extractCaddyfile
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	if !extractSave {
		services, err := caddyfile.NewLoader(cfg.CaddyfilePath).Load()
		if err != nil {
			return err
		}
		return encode(cmd.OutOrStdout(), extractOutput, services)
	}

	backend, err := app.OpenBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close(log)

	services, err := app.NewCatalog(cfg, backend.Store, nil, nil, log).Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	return encode(cmd.OutOrStdout(), extractOutput, services)
}
