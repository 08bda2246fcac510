// Package ingredient turns free-text recipe ingredient lines into shopping
// list items: it strips quantities, units and filler words, and classifies
// the remaining name into a store section.
package ingredient

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthesized   = regexp.MustCompile(`\([^)]*\)`)
	// whole, decimal, fraction, mixed ("2 1/2") and ranges ("2-3")
	leadingQuantity = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?)(?:\s*[-–]\s*\d+(?:[.,]\d+)?)?\s*`)
	whitespace      = regexp.MustCompile(`\s+`)

	fractionGlyphs = strings.NewReplacer("½", " 1/2 ", "¼", " 1/4 ", "¾", " 3/4 ")
	trademarks     = strings.NewReplacer("®", "", "™", "")
)

var unitWords = map[string]struct{}{
	"g": {}, "kg": {}, "hg": {}, "mg": {},
	"dl": {}, "cl": {}, "l": {}, "ml": {},
	"msk": {}, "tsk": {}, "krm": {},
	"st": {}, "styck": {}, "förp": {}, "pkt": {},
	"burk": {}, "burkar": {}, "klyfta": {}, "klyftor": {}, "blad": {},
}

// stopPhrases are removed as whole words, longest first.
var stopPhrases = sortedPhrases([]string{
	"att", "till", "i", "ca", "cirka", "gärna", "valfritt",
	"finhackad", "hackad", "skivad", "riven", "nymalen", "nystött",
	"att steka i", "till stekning", "att garnera med",
})

func sortedPhrases(phrases []string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, strings.Fields(p))
	}
	slices.SortStableFunc(out, func(a, b []string) int { return len(b) - len(a) })
	return out
}

// fold lowercases with Swedish rules and composes to NFC.
func fold(s string) string {
	return norm.NFC.String(cases.Lower(language.Swedish).String(s))
}

// Normalize reduces an ingredient line to its bare ingredient name, e.g.
// "2 dl mjölk (3%), gärna ekologisk" becomes "mjölk". An empty result means
// the line has nothing worth putting on a list.
func Normalize(line string) string {
	s := normalizePass(line)
	// a removed filler word can uncover a quantity ("ca 500 g potatis")
	for range maxPasses {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

const maxPasses = 4

func normalizePass(line string) string {
	s := fold(strings.TrimSpace(line))

	s = parenthesized.ReplaceAllString(s, " ")

	if before, _, found := strings.Cut(s, ","); found {
		s = before
	}
	s = strings.TrimSpace(fractionGlyphs.Replace(strings.TrimSpace(s)))

	s = leadingQuantity.ReplaceAllString(s, "")
	s = trimPunctuation(s)
	s = stripLeadingUnit(s)

	s = trademarks.Replace(s)
	s = collapse(s)

	s = removeStopPhrases(s)
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// trimPunctuation strips punctuation from both ends of every word, so
// "salt." and "msk." compare like "salt" and "msk".
func trimPunctuation(s string) string {
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if w = strings.TrimFunc(w, unicode.IsPunct); w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// stripLeadingUnit drops the first word when it is a unit of measure.
func stripLeadingUnit(s string) string {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	if _, ok := unitWords[s[:end]]; ok {
		return strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return s
}

func removeStopPhrases(s string) string {
	words := strings.Fields(s)
	for _, phrase := range stopPhrases {
		words = removePhrase(words, phrase)
	}
	return strings.Join(words, " ")
}

func removePhrase(words, phrase []string) []string {
	out := words[:0:0]
	for i := 0; i < len(words); {
		if i+len(phrase) <= len(words) && slices.Equal(words[i:i+len(phrase)], phrase) {
			i += len(phrase)
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}
