package recipe

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
)

// ListCmd returns the recipe list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list <list-id>",
		Aliases: []string{"ls"},
		Short:   "List the recipes saved on a list",
		Long:    "List the recipes saved on a list, newest first.",
		Args:    cobra.ExactArgs(1),
		RunE:    runList,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	recipes, err := cliInstance.App.RecipeService.ListRecipes(ctx, args[0])
	if err != nil {
		return cli.Fail(formatter, err)
	}

	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	return formatter.Emit("recipes", recipes, ids, func() {
		if len(recipes) == 0 {
			fmt.Println("No recipes saved")
			return
		}
		fmt.Printf("Found %d recipes:\n\n", len(recipes))
		for _, r := range recipes {
			fmt.Printf("  %s  %s %s\n",
				styles.IDStyle.Render(cli.ShortID(r.ID)),
				r.DisplayTitle(),
				styles.SubtitleStyle.Render(fmt.Sprintf("(%d ingredients)", len(r.Ingredients))))
		}
	})
}
