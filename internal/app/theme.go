package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"ingredient-scanner/pkg/colorutil"
)

// ScannerTheme is the application theme: the default look with the
// scanner's green accent.
type ScannerTheme struct{}

var _ fyne.Theme = (*ScannerTheme)(nil)

func (t *ScannerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.Accent
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x01, G: 0x41, B: 0x1C, A: 0x40}
	case theme.ColorNameError:
		return colorutil.Prohibited
	case theme.ColorNameWarning:
		return colorutil.Suspicious
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *ScannerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ScannerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ScannerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16 // Wider scrollbar for touch screens
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
