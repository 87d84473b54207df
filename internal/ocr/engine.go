// Package ocr wraps the text recognizer used on processed ingredient images.
package ocr

import (
	"context"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// IngredientChars is the character whitelist for ingredient panels:
// letters, digits and the punctuation that separates ingredients.
const IngredientChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789,.;:()%- "

// Options configures a recognizer instance.
type Options struct {
	Language                string
	PageSegMode             gosseract.PageSegMode
	PreserveInterwordSpaces bool
	Whitelist               string
}

// DefaultOptions treats the image as a single uniform block of English text.
func DefaultOptions() Options {
	return Options{
		Language:                "eng",
		PageSegMode:             gosseract.PSM_SINGLE_BLOCK,
		PreserveInterwordSpaces: true,
		Whitelist:               IngredientChars,
	}
}

// Engine recognizes text in an image. An Engine is used for a single scan
// and must be closed afterwards whether or not recognition succeeded.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// Factory creates a fresh Engine for one scan.
type Factory func(ctx context.Context) (Engine, error)
