package recipe

import (
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	recipeservice "github.com/thenoetrevino/handla/internal/services/recipe"
)

// EditCmd returns the recipe edit subcommand
func EditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <list-id> <recipe-id>",
		Short: "Change the details of a saved recipe",
		Long: `Change the details of a saved recipe. Only the flags you pass are
changed and the page is not fetched again.

Examples:
  handla recipe edit veckohandling 3f2a --title="Söndagspannkakor" --yields="4 portioner"
  handla recipe edit veckohandling 3f2a --time=0

  # Replace the ingredient lines
  handla recipe edit veckohandling 3f2a --ingredient="3 dl vetemjöl" --ingredient="6 dl mjölk"
`,
		Args: cobra.ExactArgs(2),
		RunE: runEdit,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("url", "", "New recipe link")
	cmd.Flags().String("yields", "", "New yield, e.g. \"4 portioner\"")
	cmd.Flags().Int("time", 0, "Total time in minutes, 0 clears it")
	cmd.Flags().StringArray("ingredient", nil, "Ingredient line, repeat for each line (replaces all lines)")
	cmd.Flags().Bool("clear-ingredients", false, "Remove every ingredient line")
	cmd.MarkFlagsMutuallyExclusive("ingredient", "clear-ingredients")
	cmd.MarkFlagsOneRequired("title", "url", "yields", "time", "ingredient", "clear-ingredients")
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

	var req recipeservice.UpdateRecipeRequest
	flags := cmd.Flags()
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		req.Title = &title
	}
	if flags.Changed("url") {
		link, _ := flags.GetString("url")
		req.URL = &link
	}
	if flags.Changed("yields") {
		yields, _ := flags.GetString("yields")
		req.Yields = &yields
	}
	if flags.Changed("time") {
		minutes, _ := flags.GetInt("time")
		req.TotalTimeMinutes = &minutes
	}
	if flags.Changed("ingredient") {
		req.Ingredients, _ = flags.GetStringArray("ingredient")
	}
	if none, _ := flags.GetBool("clear-ingredients"); none {
		req.Ingredients = []string{}
	}

	rec, err := cliInstance.App.RecipeService.UpdateRecipe(ctx, args[0], args[1], req)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("recipe", rec, []string{rec.ID}, func() {
		printRecipe(rec)
	})
}
