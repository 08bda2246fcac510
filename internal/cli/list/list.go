// Package list holds all cli commands related to shopping lists
//
// e.g., handla list ...
package list

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
)

// ListCmd returns the list parent command
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage shopping lists",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(LsCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(StatsCmd())
	cmd.AddCommand(StoreCmd())
	cmd.AddCommand(ClearCmd())
	cmd.AddCommand(CleanupCmd())

	return cmd
}

func closeCLI(c *cli.CLI) {
	if err := c.Close(); err != nil {
		log.Printf("Error closing CLI: %v", err)
	}
}

// ItemView is the JSON form of one item.
type ItemView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Checked   bool   `json:"checked"`
	SectionID string `json:"section_id,omitempty"`
}

// SectionView is the JSON form of one section and its items.
type SectionView struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Items []ItemView `json:"items"`
}

func sectionViews(b board.Board) []SectionView {
	out := make([]SectionView, 0, len(b.ColumnOrder))
	for _, sec := range b.Sections() {
		v := SectionView{ID: sec.ID, Title: sec.Title, Items: make([]ItemView, 0, len(sec.ItemIDs))}
		for _, id := range sec.ItemIDs {
			item := b.Items[id]
			v.Items = append(v.Items, ItemView{ID: id, Text: item.Text, Checked: item.Checked})
		}
		out = append(out, v)
	}
	return out
}

func flatViews(b board.Board, f board.Filter) []ItemView {
	ids := board.Flatten(b, f)
	out := make([]ItemView, 0, len(ids))
	for _, id := range ids {
		item := b.Items[id]
		sectionID, _ := board.FindSection(b, id)
		out = append(out, ItemView{ID: id, Text: item.Text, Checked: item.Checked, SectionID: sectionID})
	}
	return out
}
