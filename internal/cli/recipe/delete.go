package recipe

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// DeleteCmd returns the recipe delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <list-id> <recipe-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved recipe",
		Long:    "Remove a saved recipe. Items already imported stay on the list.",
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

	if err := cliInstance.App.RecipeService.DeleteRecipe(ctx, args[0], args[1]); err != nil {
		return cli.Fail(formatter, err)
	}

	data := map[string]any{"list_id": args[0], "recipe_id": args[1]}
	return formatter.Emit("deleted", data, nil, func() {
		fmt.Printf("✓ Recipe %s deleted\n", args[1])
	})
}
