package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/credgate/credgate/pkg/apiserver"
	"github.com/credgate/credgate/pkg/cli"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check service health",
		Long: `Probe a running CredGate service and display its health summary.

The summary covers the classifier backend, the verdict store, the
corroboration caches and a rolling window of recent decisions.

Examples:
  # Check the default local service
  cgctl status

  # Check a remote service
  cgctl status --server http://credgate.internal:8080

  # Machine-readable output
  cgctl status -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := cmd.Parent().Flag("server").Value.String()
			outputFormat := cmd.Parent().Flag("output").Value.String()

			client := cli.NewClient(server)
			health, err := client.Health(cmd.Context())
			if err != nil {
				cli.Error(fmt.Sprintf("Service at %s is not healthy: %v", server, err))
				return err
			}

			return displayHealth(health, outputFormat)
		},
	}

	return cmd
}

func displayHealth(health *apiserver.HealthResponse, format string) error {
	switch format {
	case "json":
		return cli.PrintJSON(health)
	case "yaml":
		return cli.PrintYAML(health)
	}

	// Table format
	if health.Status == "healthy" {
		cli.Success(fmt.Sprintf("✓ %s is %s", health.Service, health.Status))
	} else {
		cli.Warning(fmt.Sprintf("⚠ %s is %s", health.Service, health.Status))
	}

	fmt.Printf("Classifier:  %s\n", health.Classifier)

	storeState := "disabled"
	if health.Store.Enabled {
		storeState = "unhealthy"
		if health.Store.Healthy {
			storeState = "healthy"
		}
	}
	backend := health.Store.Backend
	if backend == "" {
		backend = "none"
	}
	fmt.Printf("Store:       %s (%s)\n", backend, storeState)

	if health.Decisions.Window != "" {
		fmt.Printf("Decisions:   %d in the last %s", health.Decisions.Total, health.Decisions.Window)
		if len(health.Decisions.ByLabel) > 0 {
			fmt.Printf(" (REAL=%d FAKE=%d INVALID=%d)",
				health.Decisions.ByLabel["REAL"],
				health.Decisions.ByLabel["FAKE"],
				health.Decisions.ByLabel["INVALID"])
		}
		fmt.Println()
	}

	if len(health.Caches) > 0 {
		fmt.Println("\nCaches:")
		rows := make([][]string, 0, len(health.Caches))
		for _, c := range health.Caches {
			rows = append(rows, []string{
				c.Name,
				fmt.Sprintf("%d/%d", c.Entries, c.Capacity),
				strconv.FormatInt(c.Hits, 10),
				strconv.FormatInt(c.Misses, 10),
				strconv.FormatInt(c.Evictions, 10),
			})
		}
		cli.PrintTable([]string{"Name", "Entries", "Hits", "Misses", "Evictions"}, rows)
	}

	return nil
}
