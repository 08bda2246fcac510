package list

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// ShowCmd returns the list show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <list-id>",
		Short: "Show a shopping list",
		Long: `Show the items of a list grouped by store section.

Examples:
  handla list show veckohandling

  # What is left to buy, in walking order
  handla list show veckohandling --flat --filter=unchecked

  # Item ids only
  handla list show veckohandling --quiet

  # Keep showing the list as it changes, until Ctrl-C
  handla list show veckohandling --watch
`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().Bool("flat", false, "One line per item in shopping order")
	cmd.Flags().String("filter", "all", "Items to show: all, checked or unchecked")
	cmd.Flags().Bool("all-sections", false, "Also show empty sections")
	cmd.Flags().Bool("watch", false, "Print the list again after every change")
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

	flat, _ := cmd.Flags().GetBool("flat")
	filterFlag, _ := cmd.Flags().GetString("filter")
	allSections, _ := cmd.Flags().GetBool("all-sections")

	filter, ok := board.ParseFilter(filterFlag)
	if !ok {
		return cli.FailWith(formatter,
			cli.Failure{Code: "VALIDATION_ERROR", Exit: cli.ExitValidation},
			fmt.Errorf("invalid filter '%s' (must be: all, checked, unchecked)", filterFlag))
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		snap, err := cliInstance.App.ListService.Snapshot(ctx, args[0])
		if err != nil {
			return cli.Fail(formatter, err)
		}
		return printSnapshot(formatter, snap, flat, filter, allSections)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var renderErr error
	first := true
	err = cliInstance.App.ListService.Watch(ctx, args[0], func(snap *listservice.Snapshot) {
		if !first && !formatter.JSON && !formatter.Quiet {
			fmt.Println()
		}
		first = false
		if err := printSnapshot(formatter, snap, flat, filter, allSections); err != nil && renderErr == nil {
			renderErr = err
		}
	})
	if err != nil {
		return cli.Fail(formatter, err)
	}
	return renderErr
}

func printSnapshot(formatter *cli.OutputFormatter, snap *listservice.Snapshot, flat bool, filter board.Filter, allSections bool) error {
	b := snap.Board
	ids := board.Flatten(b, filter)

	if flat || filter != board.FilterAll {
		items := flatViews(b, filter)
		return formatter.Emit("items", items, ids, func() {
			fmt.Println(styles.TitleStyle.Render(snap.List.ID))
			if len(items) == 0 {
				fmt.Println("No items")
				return
			}
			for _, it := range items {
				fmt.Println(styles.RenderItem(b.Items[it.ID], cli.ShortID(it.ID)))
			}
		})
	}

	data := map[string]any{
		"id":       snap.List.ID,
		"store":    snap.Store,
		"sections": sectionViews(b),
	}
	return formatter.Emit("list", data, ids, func() {
		stats := board.ComputeStats(b)
		fmt.Printf("%s %s\n", styles.TitleStyle.Render(snap.List.ID), styles.SubtitleStyle.Render("("+string(snap.Store)+")"))
		fmt.Println(styles.RenderProgress(stats.Checked, stats.Total, 20))
		fmt.Println()
		if stats.Total == 0 && !allSections {
			fmt.Println("The list is empty")
			return
		}
		fmt.Print(styles.RenderBoard(b, cli.ShortID, allSections))
	})
}
