package image

import (
	"image"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/pkg/geometry"

	"github.com/disintegration/imaging"
)

// MapDisplayRectToSource converts a rectangle drawn on a display canvas of
// size display into the pixel space of a source image of size source. The
// horizontal and vertical factors are independent, so a canvas whose aspect
// ratio differs from the image still maps correctly.
func MapDisplayRectToSource(r geometry.Rect, display, source geometry.Size) geometry.Rect {
	return r.ScaleBy(geometry.FactorsBetween(display, source))
}

// ExtractRegion copies the pixels of src inside r into a new buffer at 1:1
// scale. r is rounded to whole pixels and clipped to the source bounds.
func ExtractRegion(src image.Image, r geometry.Rect) (*image.NRGBA, error) {
	if src == nil {
		return nil, domain.InvalidInput("no image loaded", nil)
	}
	b := src.Bounds()
	rect := r.Round().ToImage().Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, domain.InvalidInput("selection lies outside the image", nil)
	}
	return imaging.Crop(src, rect), nil
}
