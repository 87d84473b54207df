package cropview

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"ingredient-scanner/internal/region"
	"ingredient-scanner/pkg/colorutil"
)

// The accent border is centered on the rectangle edge and sits on a wider
// white one, so the white shows as a 1 px rim on both sides.
const (
	borderWidth = 2
	rimWidth    = 4
)

// drawFrame paints the editor frame onto dst, which shows the canvas at k
// pixels per canvas unit. Outside the rectangle is dimmed, the rectangle
// gets a white-rimmed accent border and, when committed, eight square handles.
func drawFrame(dst *image.NRGBA, f region.Frame, k float64) {
	if f.Rect == nil {
		return
	}
	b := dst.Bounds()
	r := image.Rect(
		int(math.Round(f.Rect.X*k)),
		int(math.Round(f.Rect.Y*k)),
		int(math.Round(f.Rect.Right()*k)),
		int(math.Round(f.Rect.Bottom()*k)),
	).Add(b.Min)

	dimOutside(dst, r)
	strokeRect(dst, r.Inset(-rimWidth/2), rimWidth, colorutil.White)
	strokeRect(dst, r.Inset(-borderWidth/2), borderWidth, colorutil.Accent)

	if !f.ShowHandles {
		return
	}
	half := int(math.Round(f.HandleSize * k / 2))
	for _, hp := range f.Handles {
		cx := b.Min.X + int(math.Round(hp.Center.X*k))
		cy := b.Min.Y + int(math.Round(hp.Center.Y*k))
		h := image.Rect(cx-half, cy-half, cx+half, cy+half)
		draw.Draw(dst, h.Intersect(b), image.NewUniform(colorutil.White), image.Point{}, draw.Src)
		strokeRect(dst, h, 1, colorutil.Accent)
	}
}

// dimOutside blends the backdrop color over every pixel of dst outside keep.
func dimOutside(dst *image.NRGBA, keep image.Rectangle) {
	b := dst.Bounds()
	a := float64(colorutil.Backdrop.A) / 255
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (image.Point{X: x, Y: y}).In(keep) {
				continue
			}
			i := dst.PixOffset(x, y)
			p := dst.Pix[i : i+3 : i+3]
			p[0] = colorutil.Clamp8(float64(p[0]) * (1 - a))
			p[1] = colorutil.Clamp8(float64(p[1]) * (1 - a))
			p[2] = colorutil.Clamp8(float64(p[2]) * (1 - a))
		}
	}
}

// strokeRect draws an outline of width w just inside r.
func strokeRect(dst *image.NRGBA, r image.Rectangle, w int, c color.NRGBA) {
	b := dst.Bounds()
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(b), u, image.Point{}, draw.Src)
	}
}

// fit returns the scale and offset that place an iw x ih image centered in
// a bw x bh box without distortion.
func fit(iw, ih int, bw, bh float64) (scale, ox, oy float64) {
	if iw <= 0 || ih <= 0 || bw <= 0 || bh <= 0 {
		return 0, 0, 0
	}
	scale = math.Min(bw/float64(iw), bh/float64(ih))
	ox = (bw - float64(iw)*scale) / 2
	oy = (bh - float64(ih)*scale) / 2
	return scale, ox, oy
}
