package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/caddyboard/internal/app"
	"github.com/MrSnakeDoc/caddyboard/internal/config"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the config reloader",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, loggerClient)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
