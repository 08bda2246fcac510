package recipe

import (
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
)

// ShowCmd returns the recipe show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <list-id> <recipe-id>",
		Short: "Show a recipe with numbered ingredient lines",
		Long: `Show a recipe with numbered ingredient lines. The numbers are what
'handla recipe import --lines' expects.`,
		Args: cobra.ExactArgs(2),
		RunE: runShow,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	rec, err := cliInstance.App.RecipeService.GetRecipe(ctx, args[0], args[1])
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("recipe", rec, rec.Ingredients, func() {
		printRecipe(rec)
	})
}
