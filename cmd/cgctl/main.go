package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/credgate/credgate/cmd/cgctl/commands"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Credential checks (config validate) read the same environment the
	// service would, so load a local .env the same way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "cgctl",
		Short: "CredGate control CLI",
		Long: `cgctl is a command-line tool for operating a CredGate service.

It validates and inspects configuration, probes a running service's
health, and submits headlines or article URLs for a credibility verdict.

Common workflows:
  cgctl config validate       # Validate your configuration
  cgctl config show           # Display the current configuration
  cgctl status                # Check service health
  cgctl check "headline"      # Submit a headline for a verdict

For detailed help on any command, use:
  cgctl <command> --help`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:8080", "Base URL of the running service")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json, yaml")

	// Add subcommands
	rootCmd.AddCommand(commands.NewConfigCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewCompletionCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
