package item

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// EditCmd returns the item edit subcommand
func EditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <list-id> <item> <text>...",
		Short: "Change the text of an item",
		Long: `Change the text of an item. The item stays in its section.

Examples:
  handla item edit veckohandling 3f2a 3 dl mjölk
`,
		Args: cobra.MinimumNArgs(3),
		RunE: runEdit,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	item, err := cliInstance.App.ListService.EditItem(ctx, args[0], args[1], joinText(args[2:]))
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("item", viewOf(item), []string{item.ID}, func() {
		fmt.Printf("✓ Item %s updated: '%s'\n", cli.ShortID(item.ID), item.Text)
	})
}
