// Package cmd assembles the handla command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/cli/classify"
	"github.com/thenoetrevino/handla/internal/cli/item"
	"github.com/thenoetrevino/handla/internal/cli/list"
	"github.com/thenoetrevino/handla/internal/cli/recipe"
)

// NewRootCmd builds the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "handla",
		Short: "Handla - a shared shopping list for the terminal",
		Long: `Handla keeps shopping lists sorted in the walking order of your store.

Lists are shared by id. Changes made from one terminal show up in every
other terminal watching the same list while the handla daemon (or the
configured Redis feed) is running.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(list.ListCmd())
	rootCmd.AddCommand(item.ItemCmd())
	rootCmd.AddCommand(recipe.RecipeCmd())
	rootCmd.AddCommand(classify.ClassifyCmd())

	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}
