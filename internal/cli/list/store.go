package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// StoreCmd returns the list store subcommand
func StoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store <list-id> <store>",
		Short: "Switch a list to another store layout",
		Long: `Switch a list to another store's sections.

Sections the stores share keep their items; items in sections the new
store lacks move to Övrigt.

Examples:
  handla list store veckohandling hemkop
`,
		Args: cobra.ExactArgs(2),
		RunE: runStore,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runStore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	store, err := cli.ParseStore(args[1])
	if err != nil {
		return cli.Fail(formatter, err)
	}
	if store == "" {
		return cli.FailWith(formatter,
			cli.Failure{Code: "VALIDATION_ERROR", Exit: cli.ExitValidation},
			fmt.Errorf("store cannot be empty"))
	}

	if err := cliInstance.App.ListService.SwitchStore(ctx, args[0], store); err != nil {
		return cli.Fail(formatter, err)
	}

	data := map[string]any{"list_id": args[0], "store": store}
	return formatter.Emit("list", data, []string{args[0]}, func() {
		fmt.Printf("✓ List '%s' now uses the %s layout\n", args[0], store)
	})
}
