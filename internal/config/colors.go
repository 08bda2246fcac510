package config

import "github.com/thenoetrevino/handla/internal/config/colors"

// ColorScheme is the terminal color configuration.
type ColorScheme = colors.ColorScheme

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() ColorScheme {
	return *colors.Default()
}

// MonochromeColorScheme returns a black and white color scheme
func MonochromeColorScheme() ColorScheme {
	return *colors.Monochrome()
}
