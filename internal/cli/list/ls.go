package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// LsCmd returns the list ls subcommand
func LsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all shopping lists",
		Long:  "List all shopping lists, most recently changed first.",
		Args:  cobra.NoArgs,
		RunE:  runLs,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	lists, err := cliInstance.App.ListService.GetAllLists(ctx)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	ids := make([]string, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
	}

	return formatter.Emit("lists", lists, ids, func() {
		if len(lists) == 0 {
			fmt.Println("No lists found")
			return
		}
		fmt.Printf("Found %d lists:\n\n", len(lists))
		for _, l := range lists {
			fmt.Printf("  %s  [%s]  updated %s\n", l.ID, l.Store, l.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
	})
}
