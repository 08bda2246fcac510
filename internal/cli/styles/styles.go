// Package styles renders shopping lists for the terminal.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/config"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 60

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Store:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Frukt & grönt"

	// Item styles
	ItemStyle    lipgloss.Style
	CheckedStyle lipgloss.Style
	IDStyle      lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	colors.ApplyDefaults()

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.Accent)).
		Padding(0, 1).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Accent)).
		Bold(true)

	ItemStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	CheckedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Checked)).
		Strikethrough(true)

	IDStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.InfoFg)).
		Background(lipgloss.Color(colors.InfoBg)).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg)).
		Background(lipgloss.Color(colors.ErrorBg)).
		Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.WarningFg)).
		Background(lipgloss.Color(colors.WarningBg)).
		Padding(0, 1)
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// RenderItem renders one line as "[ ] text  id" or "[x] text  id".
func RenderItem(item board.Item, shortID string) string {
	box, text := "[ ]", ItemStyle.Render(item.Text)
	if item.Checked {
		box, text = "[x]", CheckedStyle.Render(item.Text)
	}
	return fmt.Sprintf("%s %s  %s", box, text, IDStyle.Render(shortID))
}

// RenderBoard renders every non-empty section with its items. Empty
// sections are listed only when showEmpty is set.
func RenderBoard(b board.Board, shortID func(string) string, showEmpty bool) string {
	var sb strings.Builder
	for _, sec := range b.Sections() {
		if len(sec.ItemIDs) == 0 && !showEmpty {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(SectionStyle.Render(sec.Title))
		sb.WriteString(" ")
		sb.WriteString(IDStyle.Render("(" + sec.ID + ")"))
		sb.WriteString("\n")
		for _, id := range sec.ItemIDs {
			sb.WriteString("  ")
			sb.WriteString(RenderItem(b.Items[id], shortID(id)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderProgress renders "checked/total" with a bar of the given width.
func RenderProgress(checked, total, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if total > 0 {
		filled = checked * width / total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d/%d", LabelStyle.Render(bar), checked, total)
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}
