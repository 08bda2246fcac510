package recipe

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
)

// ImportCmd returns the recipe import subcommand
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <list-id> <recipe-id>",
		Short: "Add a recipe's ingredients to the list",
		Long: `Add a recipe's ingredients to the list, each classified into a
section. Lines that are already on the list are added anyway and reported.

Examples:
  # Everything
  handla recipe import veckohandling 7c1e

  # Only some lines, numbered as in 'handla recipe show'
  handla recipe import veckohandling 7c1e --lines=1,3-5
`,
		Args: cobra.ExactArgs(2),
		RunE: runImport,
	}

	cmd.Flags().String("lines", "", "Ingredient lines to import, e.g. 1,3-5 (default: all)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	linesFlag, _ := cmd.Flags().GetString("lines")
	selected, err := cli.ParseSelection(linesFlag)
	if err != nil {
		return cli.FailWith(formatter, cli.Failure{Code: "VALIDATION_ERROR", Exit: cli.ExitValidation}, err)
	}

	report, err := cliInstance.App.RecipeService.ImportIngredients(ctx, args[0], args[1], selected)
	if err != nil {
		return cli.Fail(formatter, err)
	}

	ids := make([]string, len(report.Added))
	for i, line := range report.Added {
		ids[i] = line.ItemID
	}

	return formatter.Emit("import", report, ids, func() {
		fmt.Printf("✓ Added %d items\n", len(report.Added))
		for _, line := range report.Added {
			fmt.Printf("  + %s %s\n", line.Text, styles.IDStyle.Render("→ "+line.SectionID))
		}
		if len(report.Duplicates) > 0 {
			fmt.Println(styles.WarningStyle.Render(fmt.Sprintf("%d already on the list", len(report.Duplicates))))
			for _, text := range report.Duplicates {
				fmt.Printf("  = %s\n", text)
			}
		}
		if len(report.Skipped) > 0 {
			fmt.Printf("Skipped %d lines without an ingredient\n", len(report.Skipped))
		}
	})
}
