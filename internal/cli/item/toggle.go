package item

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
)

// ToggleCmd returns the item toggle subcommand
func ToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toggle <list-id> <item>",
		Aliases: []string{"check"},
		Short:   "Check or uncheck an item",
		Long: `Flip the checked state of an item, or set it explicitly.

Examples:
  handla item toggle veckohandling 3f2a

  # Safe to repeat, e.g. from two terminals at once
  handla item toggle veckohandling 3f2a --checked
`,
		Args: cobra.ExactArgs(2),
		RunE: runToggle,
	}

	cmd.Flags().Bool("checked", false, "Mark the item as checked")
	cmd.Flags().Bool("unchecked", false, "Mark the item as not checked")
	cmd.MarkFlagsMutuallyExclusive("checked", "unchecked")
	cli.AddOutputFlags(cmd)
	return cmd
}

func runToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	checked, _ := cmd.Flags().GetBool("checked")
	unchecked, _ := cmd.Flags().GetBool("unchecked")

	svc := cliInstance.App.ListService
	var item board.Item
	switch {
	case checked:
		item, err = svc.SetChecked(ctx, args[0], args[1], true)
	case unchecked:
		item, err = svc.SetChecked(ctx, args[0], args[1], false)
	default:
		item, err = svc.ToggleItem(ctx, args[0], args[1])
	}
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("item", viewOf(item), []string{item.ID}, func() {
		if item.Checked {
			fmt.Printf("✓ Checked '%s'\n", item.Text)
		} else {
			fmt.Printf("○ Unchecked '%s'\n", item.Text)
		}
	})
}
