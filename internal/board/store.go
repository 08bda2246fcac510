package board

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// StoreKey selects a store layout (a section template).
type StoreKey string

const (
	StoreWillys StoreKey = "willys"
	StoreHemkop StoreKey = "hemkop"
)

// FallbackSectionID is the catch-all section present in every template.
const FallbackSectionID = "ovrigt"

// DefaultStore is used when no store, or an unknown store, is given.
const DefaultStore = StoreWillys

//go:embed templates.yaml
var templatesYAML []byte

// SectionDef is one entry of a store template.
type SectionDef struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Template is the ordered section layout of a store.
type Template struct {
	Key      StoreKey
	Name     string
	Sections []SectionDef
}

type templateFile struct {
	Default  StoreKey `yaml:"default"`
	Fallback string   `yaml:"fallback"`
	Stores   map[StoreKey]struct {
		Name     string       `yaml:"name"`
		Sections []SectionDef `yaml:"sections"`
	} `yaml:"stores"`
}

// templates is loaded once and never mutated. Accessors hand out copies.
var templates = mustLoadTemplates(templatesYAML)

func mustLoadTemplates(data []byte) map[StoreKey]Template {
	out, err := loadTemplates(data)
	if err != nil {
		panic(fmt.Sprintf("board: embedded templates: %v", err))
	}
	return out
}

func loadTemplates(data []byte) (map[StoreKey]Template, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if file.Fallback != FallbackSectionID {
		return nil, fmt.Errorf("fallback section is %q, want %q", file.Fallback, FallbackSectionID)
	}
	if _, ok := file.Stores[file.Default]; !ok {
		return nil, fmt.Errorf("default store %q has no template", file.Default)
	}

	out := make(map[StoreKey]Template, len(file.Stores))
	for key, store := range file.Stores {
		seen := make(map[string]struct{}, len(store.Sections))
		for _, def := range store.Sections {
			if def.ID == "" {
				return nil, fmt.Errorf("store %q: section without id", key)
			}
			if _, dup := seen[def.ID]; dup {
				return nil, fmt.Errorf("store %q: duplicate section %q", key, def.ID)
			}
			seen[def.ID] = struct{}{}
		}
		if _, ok := seen[file.Fallback]; !ok {
			return nil, fmt.Errorf("store %q: missing fallback section %q", key, file.Fallback)
		}
		out[key] = Template{Key: key, Name: store.Name, Sections: store.Sections}
	}
	return out, nil
}

// StoreKeys returns the supported store keys in sorted order.
func StoreKeys() []StoreKey {
	keys := make([]StoreKey, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsValidStoreKey reports whether key names a known template.
func IsValidStoreKey(key string) bool {
	_, ok := templates[StoreKey(key)]
	return ok
}

// CoerceStoreKey maps unknown or empty keys to DefaultStore.
func CoerceStoreKey(key string) StoreKey {
	if IsValidStoreKey(key) {
		return StoreKey(key)
	}
	return DefaultStore
}

// TemplateFor returns a copy of the template for key, or of the default
// template when key is unknown.
func TemplateFor(key StoreKey) Template {
	tmpl := templates[CoerceStoreKey(string(key))]
	tmpl.Sections = slices.Clone(tmpl.Sections)
	return tmpl
}

// DefaultBoard returns a fresh board with the empty sections of the store's template.
func DefaultBoard(key StoreKey) Board {
	tmpl := templates[CoerceStoreKey(string(key))]
	b := Board{
		Items:       make(map[string]Item),
		Columns:     make(map[string]Section, len(tmpl.Sections)),
		ColumnOrder: make([]string, 0, len(tmpl.Sections)),
	}
	for _, def := range tmpl.Sections {
		b.Columns[def.ID] = Section{ID: def.ID, Title: def.Title, ItemIDs: []string{}}
		b.ColumnOrder = append(b.ColumnOrder, def.ID)
	}
	return b
}

// SectionTitle resolves a display title for a section id. The store's own
// template is consulted first, then every other template, then the id itself.
func SectionTitle(key StoreKey, id string) string {
	if title, ok := templateTitle(templates[CoerceStoreKey(string(key))], id); ok {
		return title
	}
	for _, k := range StoreKeys() {
		if title, ok := templateTitle(templates[k], id); ok {
			return title
		}
	}
	return id
}

func templateTitle(tmpl Template, id string) (string, bool) {
	for _, def := range tmpl.Sections {
		if def.ID == id {
			return def.Title, true
		}
	}
	return "", false
}

// ApplyTemplate rebuilds b with the section layout of key. Sections keep
// their items; items of sections missing from the template are appended to
// the fallback section in their previous order. No item is dropped.
func ApplyTemplate(b Board, key StoreKey) Board {
	tmpl := templates[CoerceStoreKey(string(key))]

	next := Board{
		Items:       make(map[string]Item, len(b.Items)),
		Columns:     make(map[string]Section, len(tmpl.Sections)),
		ColumnOrder: make([]string, 0, len(tmpl.Sections)),
	}
	for id, item := range b.Items {
		next.Items[id] = item
	}

	inTemplate := make(map[string]struct{}, len(tmpl.Sections))
	for _, def := range tmpl.Sections {
		inTemplate[def.ID] = struct{}{}
		ids := []string{}
		if old, ok := b.Columns[def.ID]; ok {
			ids = slices.Clone(old.ItemIDs)
		}
		next.Columns[def.ID] = Section{ID: def.ID, Title: def.Title, ItemIDs: ids}
		next.ColumnOrder = append(next.ColumnOrder, def.ID)
	}

	fallback := next.Columns[FallbackSectionID]
	for _, colID := range b.ColumnOrder {
		if _, ok := inTemplate[colID]; ok {
			continue
		}
		fallback.ItemIDs = append(fallback.ItemIDs, b.Columns[colID].ItemIDs...)
	}
	next.Columns[FallbackSectionID] = fallback

	return next
}
