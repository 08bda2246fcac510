package colors

// Default returns the default color scheme (green grocery theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		Accent: "#5FAF5F",

		Title:   "#87D787",
		Subtle:  "#6C6C6C",
		Normal:  "#D0D0D0",
		Checked: "#585858",

		InfoFg:    "#00AFFF",
		InfoBg:    "#00005F",
		WarningFg: "#FFD700",
		WarningBg: "#875F00",
		ErrorFg:   "#FF5F5F",
		ErrorBg:   "#5F0000",
	}
}
