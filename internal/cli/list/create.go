package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// CreateCmd returns the list create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [list-id]",
		Short: "Create a new shopping list",
		Long: `Create a shopping list with the sections of a store.

The id is part of the share link. Leave it out to get a generated one.
Creating a list that already exists leaves it untouched.

Examples:
  # Generated id, default store
  handla list create

  # Chosen id and store
  handla list create veckohandling --store=hemkop

  # Quiet mode for bash capture
  LIST_ID=$(handla list create --quiet)
`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCreate,
	}

	cmd.Flags().String("store", "", "Store layout: willys or hemkop (default from config)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	storeFlag, _ := cmd.Flags().GetString("store")
	store, err := cli.ParseStore(storeFlag)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	}

	l, err := cliInstance.App.ListService.CreateList(ctx, listservice.CreateListRequest{ID: id, Store: store})
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("list", l, []string{l.ID}, func() {
		fmt.Printf("✓ List '%s' created successfully\n", l.ID)
		fmt.Printf("  Store: %s\n", l.Store)
	})
}
