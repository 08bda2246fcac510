package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thenoetrevino/handla/internal/board"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// ShortIDLength is how many characters of an id are shown in listings.
const ShortIDLength = 8

// ParseStore validates a store key given on the command line. An empty
// string selects the configured default.
func ParseStore(s string) (board.StoreKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !board.IsValidStoreKey(s) {
		return "", fmt.Errorf("%w: %q (must be one of: %s)", listservice.ErrInvalidStore, s, storeNames())
	}
	return board.StoreKey(s), nil
}

func storeNames() string {
	keys := board.StoreKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// ParseSelection parses 1-based line numbers and ranges such as "1,3-5"
// into 0-based indexes. An empty string selects everything and returns nil.
func ParseSelection(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	out := []int{}
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parseLineNumber(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			if end, err = parseLineNumber(hi); err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}
		for n := start; n <= end; n++ {
			out = append(out, n-1)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no lines selected in %q", s)
	}
	return out, nil
}

func parseLineNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line number %q (lines start at 1)", s)
	}
	return n, nil
}

// ShortID trims an id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
