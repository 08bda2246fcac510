package ingredient

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/thenoetrevino/handla/internal/board"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// ErrInvalidRules is returned when a rule table cannot be loaded.
var ErrInvalidRules = errors.New("invalid classification rules")

// Rule maps ingredient names to a logical section id.
type Rule struct {
	SectionID string
	Keywords  []string
	Pattern   *regexp.Regexp
}

// Matches reports whether the normalized text hits any keyword or the pattern.
func (r Rule) Matches(normalized string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return r.Pattern != nil && r.Pattern.MatchString(normalized)
}

// Classification is the section chosen for a line and the normalized text
// the decision was based on.
type Classification struct {
	SectionID  string `json:"section_id"`
	Normalized string `json:"normalized"`
}

// Classifier evaluates an ordered rule table. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	remaps   map[board.StoreKey]map[string]string
	fallback string
}

type rulesFile struct {
	Fallback string                       `yaml:"fallback"`
	Remaps   map[string]map[string]string `yaml:"remaps"`
	Rules    []struct {
		Section  string   `yaml:"section"`
		Keywords []string `yaml:"keywords"`
		Pattern  string   `yaml:"pattern"`
	} `yaml:"rules"`
}

// LoadClassifier parses a YAML rule table. Keywords are folded the same
// way as the text they are matched against.
func LoadClassifier(data []byte) (*Classifier, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if file.Fallback == "" {
		return nil, fmt.Errorf("%w: no fallback section", ErrInvalidRules)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	}

	c := &Classifier{
		rules:    make([]Rule, 0, len(file.Rules)),
		remaps:   make(map[board.StoreKey]map[string]string, len(file.Remaps)),
		fallback: file.Fallback,
	}

	for i, raw := range file.Rules {
		if raw.Section == "" {
			return nil, fmt.Errorf("%w: rule %d has no section", ErrInvalidRules, i)
		}
		rule := Rule{SectionID: raw.Section}
		for _, kw := range raw.Keywords {
			if kw = fold(strings.TrimSpace(kw)); kw != "" {
				rule.Keywords = append(rule.Keywords, kw)
			}
		}
		if raw.Pattern != "" {
			re, err := regexp.Compile(raw.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %d: %v", ErrInvalidRules, i, err)
			}
			rule.Pattern = re
		}
		if len(rule.Keywords) == 0 && rule.Pattern == nil {
			return nil, fmt.Errorf("%w: rule %d matches nothing", ErrInvalidRules, i)
		}
		c.rules = append(c.rules, rule)
	}

	last := c.rules[len(c.rules)-1]
	if last.Pattern == nil || !last.Pattern.MatchString("") {
		return nil, fmt.Errorf("%w: last rule must match everything", ErrInvalidRules)
	}

	for store, m := range file.Remaps {
		c.remaps[board.StoreKey(store)] = m
	}
	return c, nil
}

var defaultClassifier = mustLoadClassifier(rulesYAML)

func mustLoadClassifier(data []byte) *Classifier {
	c, err := LoadClassifier(data)
	if err != nil {
		panic(fmt.Sprintf("ingredient: embedded rules: %v", err))
	}
	return c
}

// Default returns the classifier built from the embedded rule table.
func Default() *Classifier {
	return defaultClassifier
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// Match returns the logical section id of the first matching rule.
func (c *Classifier) Match(normalized string) string {
	for _, r := range c.rules {
		if r.Matches(normalized) {
			return r.SectionID
		}
	}
	return c.fallback
}

// Resolve maps a logical section id onto a section that exists in b,
// trying the store remap first, then the id itself, then the fallback.
func (c *Classifier) Resolve(store board.StoreKey, b board.Board, logical string) string {
	if remapped, ok := c.remaps[store][logical]; ok && b.HasSection(remapped) {
		return remapped
	}
	if b.HasSection(logical) {
		return logical
	}
	return c.fallback
}

// Classify normalizes raw and picks its section on b. A zero board stands
// for the default board of the store.
func (c *Classifier) Classify(raw string, store board.StoreKey, b board.Board) Classification {
	store = board.CoerceStoreKey(string(store))
	if b.IsZero() {
		b = board.DefaultBoard(store)
	}
	normalized := Normalize(raw)
	return Classification{
		SectionID:  c.Resolve(store, b, c.Match(normalized)),
		Normalized: normalized,
	}
}

// Classify uses the default classifier.
func Classify(raw string, store board.StoreKey, b board.Board) Classification {
	return defaultClassifier.Classify(raw, store, b)
}
