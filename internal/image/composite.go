package image

import (
	"image"
	"image/color"
	"math"
)

// BlendMode specifies how two images are composited.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// Blend composites src onto a copy of dst with the given mode and returns
// the result. Both images must have the same bounds; pixels outside the
// intersection keep dst's value.
func Blend(dst, src *image.NRGBA, mode BlendMode) *image.NRGBA {
	out := image.NewNRGBA(dst.Bounds())
	copy(out.Pix, dst.Pix)

	area := dst.Bounds().Intersect(src.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			out.SetNRGBA(x, y, blendPixel(dst.NRGBAAt(x, y), src.NRGBAAt(x, y), mode))
		}
	}
	return out
}

// blendPixel performs the blend operation between two colors using source
// alpha.
func blendPixel(dst, src color.NRGBA, mode BlendMode) color.NRGBA {
	sf := [4]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255, float64(src.A) / 255}
	df := [4]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255, float64(dst.A) / 255}

	var rf [3]float64
	for i := 0; i < 3; i++ {
		switch mode {
		case BlendMultiply:
			rf[i] = sf[i] * df[i]
		case BlendScreen:
			rf[i] = 1 - (1-sf[i])*(1-df[i])
		case BlendOverlay:
			if df[i] <= 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		default:
			rf[i] = sf[i]
		}
	}

	alpha := sf[3]
	return color.NRGBA{
		R: to8(rf[0]*alpha + df[0]*(1-alpha)),
		G: to8(rf[1]*alpha + df[1]*(1-alpha)),
		B: to8(rf[2]*alpha + df[2]*(1-alpha)),
		A: to8(alpha + df[3]*(1-alpha)),
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
