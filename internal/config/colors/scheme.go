// Package colors holds the color presets used to render lists in the terminal.
package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (section headers, labels)
	Accent string `yaml:"accent"`

	// Text colors
	Title   string `yaml:"title"`
	Subtle  string `yaml:"subtle"` // item ids, counts
	Normal  string `yaml:"normal"`
	Checked string `yaml:"checked"` // items already in the basket

	// Notification colors (foreground/background pairs)
	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values from the selected preset
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Accent, preset.Accent)
	fill(&c.Title, preset.Title)
	fill(&c.Subtle, preset.Subtle)
	fill(&c.Normal, preset.Normal)
	fill(&c.Checked, preset.Checked)
	fill(&c.InfoFg, preset.InfoFg)
	fill(&c.InfoBg, preset.InfoBg)
	fill(&c.WarningFg, preset.WarningFg)
	fill(&c.WarningBg, preset.WarningBg)
	fill(&c.ErrorFg, preset.ErrorFg)
	fill(&c.ErrorBg, preset.ErrorBg)
}
