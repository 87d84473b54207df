package image

import (
	"image"
	"image/color"

	"ingredient-scanner/pkg/colorutil"

	"github.com/disintegration/imaging"
)

// UpscaleFactor is applied to both axes by every processing mode.
const UpscaleFactor = 2

// Threshold bounds for ModeAdaptiveThreshold. Luma below thresholdLow maps
// to black, above thresholdHigh to white, and the band between is stretched
// linearly over the full range.
const (
	thresholdLow  = 100.0
	thresholdHigh = 200.0
)

// ApplyMode returns a new image holding img upscaled by UpscaleFactor and
// transformed by mode. img is never modified and the same input always
// yields the same pixels.
func ApplyMode(img image.Image, mode Mode) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor
	if w == 0 || h == 0 {
		return image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	switch mode {
	case ModeSharpen:
		base := imaging.Resize(img, w, h, imaging.Linear)
		boosted := imaging.AdjustFunc(base, func(c color.NRGBA) color.NRGBA {
			return mapRGB(c, func(v float64) float64 { return brightness(contrast(v, 1.4), 1.1) })
		})
		return Blend(base, boosted, BlendOverlay)

	case ModeAdaptiveThreshold:
		base := imaging.Resize(img, w, h, imaging.Linear)
		return imaging.AdjustFunc(base, thresholdPixel)

	case ModeHighResOriginal:
		return imaging.Resize(img, w, h, imaging.Lanczos)

	default:
		base := imaging.Resize(img, w, h, imaging.Linear)
		return imaging.AdjustFunc(base, func(c color.NRGBA) color.NRGBA {
			c = mapRGB(c, func(v float64) float64 { return brightness(contrast(v, 1.3), 1.1) })
			return desaturate(c)
		})
	}
}

// contrast scales a channel value (0-255) away from mid-grey by k.
func contrast(v, k float64) float64 {
	return float64(colorutil.Clamp8((v/255-0.5)*k*255 + 127.5))
}

// brightness multiplies a channel value by k.
func brightness(v, k float64) float64 {
	return float64(colorutil.Clamp8(v * k))
}

func mapRGB(c color.NRGBA, fn func(float64) float64) color.NRGBA {
	return color.NRGBA{
		R: colorutil.Clamp8(fn(float64(c.R))),
		G: colorutil.Clamp8(fn(float64(c.G))),
		B: colorutil.Clamp8(fn(float64(c.B))),
		A: c.A,
	}
}

// desaturate removes all colour using Rec. 709 luminance weights, matching
// a saturate(0) colour matrix.
func desaturate(c color.NRGBA) color.NRGBA {
	y := colorutil.Clamp8(0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B))
	return color.NRGBA{R: y, G: y, B: y, A: c.A}
}

func thresholdPixel(c color.NRGBA) color.NRGBA {
	l := colorutil.Luma(c.R, c.G, c.B)
	var v uint8
	switch {
	case l < thresholdLow:
		v = 0
	case l > thresholdHigh:
		v = 255
	default:
		v = colorutil.Clamp8((l - thresholdLow) / (thresholdHigh - thresholdLow) * 255)
	}
	return color.NRGBA{R: v, G: v, B: v, A: c.A}
}
