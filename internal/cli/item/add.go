package item

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// AddCmd returns the item add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <list-id> <text>...",
		Short: "Add an item to a list",
		Long: `Add an item at the top of its section.

Without --section the text is classified into a section of the list's
store, so "2 dl mjölk" lands in Mejeri.

Examples:
  handla item add veckohandling 2 dl mjölk

  # Pick the section yourself
  handla item add veckohandling --section=ovrigt batterier

  # Quiet mode for bash capture
  ITEM_ID=$(handla item add veckohandling smör --quiet)
`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAdd,
	}

	cmd.Flags().String("section", "", "Section id (default: classified from the text)")
	cmd.Flags().Bool("allow-duplicate", false, "Add even if the list already has the same item")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	listID := args[0]
	text := joinText(args[1:])
	sectionID, _ := cmd.Flags().GetString("section")
	allowDuplicate, _ := cmd.Flags().GetBool("allow-duplicate")

	res, err := cliInstance.App.ListService.AddItem(ctx, listID, listservice.AddItemRequest{
		SectionID:      sectionID,
		Text:           text,
		AllowDuplicate: allowDuplicate,
	})
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("item", res, []string{res.ItemID}, func() {
		title := res.SectionID
		if l, err := cliInstance.App.ListService.GetList(ctx, listID); err == nil {
			title = board.SectionTitle(board.StoreKey(l.Store), res.SectionID)
		}
		fmt.Printf("✓ Added '%s' to %s (ID: %s)\n", text, title, cli.ShortID(res.ItemID))
	})
}
