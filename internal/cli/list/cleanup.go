package list

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// CleanupCmd returns the list cleanup subcommand
func CleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete lists nobody has touched for a while",
		Long: `Delete lists that have not changed for the given number of days,
together with their items and recipes.

Examples:
  handla list cleanup --days=90
`,
		Args: cobra.NoArgs,
		RunE: runCleanup,
	}

	cmd.Flags().Int("days", 30, "Delete lists unchanged for this many days")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		return cli.FailWith(formatter,
			cli.Failure{Code: "VALIDATION_ERROR", Exit: cli.ExitValidation},
			fmt.Errorf("days must be greater than 0, got %d", days))
	}

	removed, err := cliInstance.App.ListService.Cleanup(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("removed", removed, removed, func() {
		if len(removed) == 0 {
			fmt.Printf("No lists older than %d days\n", days)
			return
		}
		fmt.Printf("✓ Removed %d lists older than %d days\n", len(removed), days)
		for _, id := range removed {
			fmt.Printf("  %s\n", id)
		}
	})
}
