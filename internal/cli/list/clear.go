package list

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// ClearCmd returns the list clear subcommand
func ClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <list-id>",
		Short: "Remove every item from a list",
		Long:  "Remove every item from a list and keep its sections (requires confirmation unless --force, --json or --quiet).",
		Args:  cobra.ExactArgs(1),
		RunE:  runClear,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	listID := args[0]
	force, _ := cmd.Flags().GetBool("force")

	stats, err := cliInstance.App.ListService.Stats(ctx, listID)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	// Ask for confirmation unless force or machine output
	if !force && !formatter.Quiet && !formatter.JSON && stats.Total > 0 {
		fmt.Printf("Remove all %d items from '%s'? (y/N): ", stats.Total, listID)
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			log.Printf("Error reading user input: %v", err)
		}
		response = strings.ToLower(response)
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := cliInstance.App.ListService.ClearList(ctx, listID); err != nil {
		return cli.Fail(formatter, err)
	}

	data := map[string]any{"list_id": listID, "removed": stats.Total}
	return formatter.Emit("cleared", data, nil, func() {
		fmt.Printf("✓ Removed %d items from '%s'\n", stats.Total, listID)
	})
}
