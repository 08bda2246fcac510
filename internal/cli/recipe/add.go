package recipe

import (
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	recipeservice "github.com/thenoetrevino/handla/internal/services/recipe"
)

// AddCmd returns the recipe add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <list-id> <url>",
		Short: "Save a recipe link on a list",
		Long: `Save a recipe link on a list. The page is scraped by the recipe
service (RECIPE_SERVICE_URL) for its title and ingredients. Nothing is
saved when the fetch fails.

Examples:
  handla recipe add veckohandling https://www.ica.se/recept/pannkakor-720
  handla recipe add veckohandling ica.se/recept/pannkakor-720 --title="Söndagspannkakor"

  # Just keep the link, do not contact the recipe service
  handla recipe add veckohandling https://example.com/soppa --manual
`,
		Args: cobra.ExactArgs(2),
		RunE: runAdd,
	}

	cmd.Flags().String("title", "", "Title to use instead of the scraped one")
	cmd.Flags().Bool("manual", false, "Save the link without fetching it")
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

	title, _ := cmd.Flags().GetString("title")
	manual, _ := cmd.Flags().GetBool("manual")

	rec, err := cliInstance.App.RecipeService.AddRecipe(ctx, args[0], recipeservice.AddRecipeRequest{
		URL:    args[1],
		Title:  title,
		Manual: manual,
	})
	if err != nil {
		return cli.Fail(formatter, err)
	}

	return formatter.Emit("recipe", rec, []string{rec.ID}, func() {
		printRecipe(rec)
	})
}
