// Package recipe holds all cli commands related to recipes saved on a list
//
// e.g., handla recipe ...
package recipe

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
	"github.com/thenoetrevino/handla/internal/models"
)

// RecipeCmd returns the recipe parent command
func RecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Save recipes on a list and import their ingredients",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(EditCmd())
	cmd.AddCommand(ImportCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func closeCLI(c *cli.CLI) {
	if err := c.Close(); err != nil {
		log.Printf("Error closing CLI: %v", err)
	}
}

// printRecipe writes the recipe header, its numbered ingredient lines and
// the instructions rendered as markdown.
func printRecipe(r *models.Recipe) {
	fmt.Printf("%s %s\n", styles.TitleStyle.Render(r.DisplayTitle()), styles.IDStyle.Render("("+cli.ShortID(r.ID)+")"))
	fmt.Printf("  %s %s\n", styles.LabelStyle.Render("URL:"), r.URL)
	if r.Yields != "" {
		fmt.Printf("  %s %s\n", styles.LabelStyle.Render("Yields:"), r.Yields)
	}
	if r.TotalTimeMinutes != nil {
		fmt.Printf("  %s %d min\n", styles.LabelStyle.Render("Time:"), *r.TotalTimeMinutes)
	}
	if !r.HasIngredients() {
		fmt.Println(styles.SubtitleStyle.Render("  No ingredients"))
	} else {
		fmt.Println(styles.SectionStyle.Render("  Ingredients"))
		for i, line := range r.Ingredients {
			fmt.Printf("  %2d. %s\n", i+1, line)
		}
	}
	if r.Instructions != "" {
		fmt.Println(styles.SectionStyle.Render("  Instructions"))
		fmt.Println(styles.RenderMarkdown(r.Instructions, styles.CardWidth))
	}
}
