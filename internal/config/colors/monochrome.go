package colors

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",

		Accent: "#FFFFFF",

		Title:   "#FFFFFF",
		Subtle:  "#585858",
		Normal:  "#D0D0D0",
		Checked: "#585858",

		InfoFg:    "#FFFFFF",
		InfoBg:    "#1C1C1C",
		WarningFg: "#FFFFFF",
		WarningBg: "#3A3A3A",
		ErrorFg:   "#FFFFFF",
		ErrorBg:   "#585858",
	}
}
