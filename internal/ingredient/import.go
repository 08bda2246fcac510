package ingredient

import (
	"strings"

	"github.com/thenoetrevino/handla/internal/board"
)

// ImportedLine is one ingredient added to the board.
type ImportedLine struct {
	ItemID    string `json:"item_id"`
	Text      string `json:"text"`
	SectionID string `json:"section_id"`
}

// ImportReport describes the outcome of a bulk import. Duplicates were
// added anyway; they are reported so the user can tidy up.
type ImportReport struct {
	Added      []ImportedLine `json:"added"`
	Duplicates []string       `json:"duplicates"`
	Skipped    []string       `json:"skipped"`
}

// Import classifies every line and adds it to b. Lines that normalize to
// nothing are skipped. The item keeps the trimmed original line so
// quantities stay visible while shopping.
func (c *Classifier) Import(b board.Board, store board.StoreKey, lines []string) (board.Board, ImportReport) {
	var report ImportReport
	if b.IsZero() {
		b = board.DefaultBoard(store)
	}
	for _, line := range lines {
		text := strings.TrimSpace(line)
		cls := c.Classify(text, store, b)
		if cls.Normalized == "" {
			report.Skipped = append(report.Skipped, line)
			continue
		}

		if _, dup := board.FindDuplicate(b, text); dup {
			report.Duplicates = append(report.Duplicates, text)
		}

		next, id := board.AddItemOrFirst(b, cls.SectionID, text)
		if id == "" {
			report.Skipped = append(report.Skipped, line)
			continue
		}
		b = next
		report.Added = append(report.Added, ImportedLine{ItemID: id, Text: text, SectionID: cls.SectionID})
	}
	return b, report
}

// Import uses the default classifier.
func Import(b board.Board, store board.StoreKey, lines []string) (board.Board, ImportReport) {
	return defaultClassifier.Import(b, store, lines)
}
