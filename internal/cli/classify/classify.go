// Package classify holds the command that explains where a line would be
// put on a list.
//
// e.g., handla classify ...
package classify

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
	"github.com/thenoetrevino/handla/internal/cli/styles"
	"github.com/thenoetrevino/handla/internal/ingredient"
)

// Result is the JSON form of a classification.
type Result struct {
	Line         string         `json:"line"`
	Store        board.StoreKey `json:"store"`
	Normalized   string         `json:"normalized"`
	SectionID    string         `json:"section_id"`
	SectionTitle string         `json:"section_title"`
}

// ClassifyCmd returns the classify command
func ClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <line>...",
		Short: "Show which section a line would be put in",
		Long: `Normalize an ingredient line and show the store section it would be
added to. Nothing is stored.

Examples:
  handla classify "2 dl mjölk (3%), gärna ekologisk"
  handla classify 3 ägg --store=willys
`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().String("store", string(board.DefaultStore), "Store layout: willys or hemkop")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	formatter := cli.FormatterFor(cmd)

	storeFlag, _ := cmd.Flags().GetString("store")
	store, err := cli.ParseStore(storeFlag)
	if err != nil {
		return cli.Fail(formatter, err)
	}
	if store == "" {
		store = board.DefaultStore
	}

	line := strings.TrimSpace(strings.Join(args, " "))
	cls := ingredient.Classify(line, store, board.DefaultBoard(store))
	res := Result{
		Line:         line,
		Store:        store,
		Normalized:   cls.Normalized,
		SectionID:    cls.SectionID,
		SectionTitle: board.SectionTitle(store, cls.SectionID),
	}

	return formatter.Emit("classification", res, []string{res.SectionID}, func() {
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Ingredient:"), valueOrDash(res.Normalized))
		fmt.Printf("%s %s %s\n", styles.LabelStyle.Render("Section:"),
			styles.ValueStyle.Render(res.SectionTitle), styles.IDStyle.Render("("+res.SectionID+")"))
	})
}

func valueOrDash(s string) string {
	if s == "" {
		return styles.SubtitleStyle.Render("-")
	}
	return styles.ValueStyle.Render(s)
}
