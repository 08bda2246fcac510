package item

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// MoveCmd returns the item move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <list-id> <item>",
		Short: "Move an item within or between sections",
		Long: `Move an item to a position in a section. Positions start at 0 and
are clamped to the section length.

Examples:
  # Move to the top of its own section
  handla item move veckohandling 3f2a --index=0

  # Move to the end of another section
  handla item move veckohandling 3f2a --section=skafferi --index=999

  # Drop it onto another item, or onto a section
  handla item move veckohandling 3f2a --onto=9c1d
  handla item move veckohandling 3f2a --onto=mejeri
`,
		Args: cobra.ExactArgs(2),
		RunE: runMove,
	}

	cmd.Flags().String("section", "", "Target section id (default: current section)")
	cmd.Flags().Int("index", 0, "Target position inside the section")
	cmd.Flags().String("onto", "", "Item or section to drop the item onto")
	cmd.MarkFlagsMutuallyExclusive("onto", "section")
	cmd.MarkFlagsMutuallyExclusive("onto", "index")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	sectionID, _ := cmd.Flags().GetString("section")
	index, _ := cmd.Flags().GetInt("index")
	onto, _ := cmd.Flags().GetString("onto")
	if index < 0 {
		return cli.FailWith(formatter,
			cli.Failure{Code: "VALIDATION_ERROR", Exit: cli.ExitValidation},
			fmt.Errorf("index must be 0 or greater, got %d", index))
	}

	err = cliInstance.App.ListService.MoveItem(ctx, args[0], listservice.MoveItemRequest{
		ItemRef:   args[1],
		SectionID: sectionID,
		Index:     index,
		OntoRef:   onto,
	})
	if err != nil {
		return cli.Fail(formatter, err)
	}

	if onto != "" {
		data := map[string]any{"list_id": args[0], "item": args[1], "onto": onto}
		return formatter.Emit("moved", data, nil, func() {
			fmt.Printf("✓ Item %s dropped onto %s\n", args[1], onto)
		})
	}

	data := map[string]any{"list_id": args[0], "item": args[1], "section_id": sectionID, "index": index}
	return formatter.Emit("moved", data, nil, func() {
		if sectionID == "" {
			fmt.Printf("✓ Item %s moved to position %d\n", args[1], index)
			return
		}
		fmt.Printf("✓ Item %s moved to %s, position %d\n", args[1], sectionID, index)
	})
}
