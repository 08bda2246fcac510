package list

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
)

// StatsCmd returns the list stats subcommand
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <list-id>",
		Short: "Show how much of a list is done",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	cli.AddOutputFlags(cmd)
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := cli.Begin(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	snap, err := cliInstance.App.ListService.Snapshot(ctx, args[0])
	if err != nil {
		return cli.Fail(formatter, err)
	}
	stats := board.ComputeStats(snap.Board)

	if formatter.Quiet {
		fmt.Printf("%d/%d\n", stats.Checked, stats.Total)
		return nil
	}

	return formatter.Emit("stats", stats, nil, func() {
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Total:"), styles.ValueStyle.Render(fmt.Sprint(stats.Total)))
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Checked:"), styles.ValueStyle.Render(fmt.Sprint(stats.Checked)))
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Remaining:"), styles.ValueStyle.Render(fmt.Sprint(stats.Remaining())))
		fmt.Println(styles.RenderProgress(stats.Checked, stats.Total, 20))

		for _, sec := range snap.Board.Sections() {
			st := stats.PerSection[sec.ID]
			if st.Total == 0 {
				continue
			}
			fmt.Printf("  %-24s %d/%d\n", sec.Title, st.Checked, st.Total)
		}
	})
}
