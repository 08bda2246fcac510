package item

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// DeleteCmd returns the item delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <list-id> <item>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from a list",
		Args:    cobra.ExactArgs(2),
		RunE:    runDelete,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	if err := cliInstance.App.ListService.DeleteItem(ctx, args[0], args[1]); err != nil {
		return cli.Fail(formatter, err)
	}

	data := map[string]any{"list_id": args[0], "item": args[1]}
	return formatter.Emit("deleted", data, nil, func() {
		fmt.Printf("✓ Item %s deleted\n", args[1])
	})
}
