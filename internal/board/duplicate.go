package board

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// FoldText trims s and lowercases it with Swedish case rules. The result
// is NFC composed so "mjölk" typed with a combining diaeresis still matches.
func FoldText(s string) string {
	// A Caser holds state and must not be shared between goroutines.
	lower := cases.Lower(language.Swedish)
	return norm.NFC.String(lower.String(strings.TrimSpace(s)))
}

// FindDuplicate returns the id of the first item, in section then position
// order, whose folded text equals the folded candidate.
func FindDuplicate(b Board, text string) (string, bool) {
	want := FoldText(text)
	if want == "" {
		return "", false
	}
	for _, colID := range b.ColumnOrder {
		for _, id := range b.Columns[colID].ItemIDs {
			if item, ok := b.Items[id]; ok && FoldText(item.Text) == want {
				return id, true
			}
		}
	}
	return "", false
}
