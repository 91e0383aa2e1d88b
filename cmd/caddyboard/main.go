package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/caddyboard/internal/version"
)

// rootCmd serves the API when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "caddyboard",
	Short: "Service catalog and reachability board for a Caddyfile",
	Long: `caddyboard extracts the reverse-proxied services declared in a Caddyfile,
keeps a snapshot of them and checks whether each upstream accepts TCP
connections.

Running it without a subcommand starts the HTTP API (same as 'serve').
Settings come from CADDYBOARD_* environment variables.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("❌ caddyboard: %v", err)
	}
}
