// Package item holds all cli commands related to list items
//
// e.g., handla item ...
package item

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/cli"
)

// ItemCmd returns the item parent command
func ItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage items on a list",
		Long: `Manage items on a list.

Items are referenced by id or by a unique id prefix of at least four
characters, as shown by 'handla list show'.`,
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ToggleCmd())
	cmd.AddCommand(EditCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(MoveCmd())

	return cmd
}

func closeCLI(c *cli.CLI) {
	if err := c.Close(); err != nil {
		log.Printf("Error closing CLI: %v", err)
	}
}

// joinText turns the remaining arguments into one item line.
func joinText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// itemView is the JSON form of an item after a change.
type itemView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

func viewOf(item board.Item) itemView {
	return itemView{ID: item.ID, Text: item.Text, Checked: item.Checked}
}
