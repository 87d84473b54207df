// Package colorutil provides shared color utilities for the ingredient scanner.
package colorutil

import (
	"image/color"
	"math"
)

// Overlay colors used by the crop editor.
var (
	Black      = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Accent     = color.NRGBA{R: 0x01, G: 0x41, B: 0x1C, A: 255}
	Backdrop   = color.NRGBA{R: 0, G: 0, B: 0, A: 77}
	Prohibited = color.NRGBA{R: 0xC6, G: 0x28, B: 0x28, A: 255}
	Suspicious = color.NRGBA{R: 0xEF, G: 0x6C, B: 0x00, A: 255}
)

// Luma returns the Rec. 601 weighted brightness of an 8-bit RGB triple.
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Clamp8 rounds v and clamps it into the 0-255 range.
func Clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
