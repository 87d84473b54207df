package ocr

import (
	"context"
	"fmt"
	"image"

	"ingredient-scanner/internal/domain"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Tesseract provides OCR using a gosseract client.
type Tesseract struct {
	client *gosseract.Client
	opts   Options
}

// NewTesseract creates a configured Tesseract client.
func NewTesseract(opts Options) (*Tesseract, error) {
	client := gosseract.NewClient()

	if opts.Language == "" {
		opts.Language = "eng"
	}
	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, domain.RecognitionFailure("failed to set OCR language", err)
	}
	if err := client.SetPageSegMode(opts.PageSegMode); err != nil {
		client.Close()
		return nil, domain.RecognitionFailure("failed to set PSM", err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			client.Close()
			return nil, domain.RecognitionFailure("failed to set whitelist", err)
		}
	}
	if opts.PreserveInterwordSpaces {
		_ = client.SetVariable("preserve_interword_spaces", "1")
	}

	return &Tesseract{client: client, opts: opts}, nil
}

// NewTesseractFactory returns a Factory that builds a new client per scan.
func NewTesseractFactory(opts Options) Factory {
	return func(ctx context.Context) (Engine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewTesseract(opts)
	}
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// Recognize returns the raw text found in img. Tesseract cannot be
// interrupted mid-page, so ctx is checked before and after the call.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if t.client == nil {
		return "", domain.RecognitionFailure("engine already closed", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := encodeForOCR(img)
	if err != nil {
		return "", err
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", domain.RecognitionFailure("failed to set image", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", domain.RecognitionFailure("OCR failed", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}

// encodeForOCR converts img to a BGR Mat and encodes it as PNG bytes.
func encodeForOCR(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, domain.RecognitionFailure("empty image", nil)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, domain.RecognitionFailure("failed to convert image", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, domain.RecognitionFailure("failed to encode image", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// String describes the configuration for logs.
func (t *Tesseract) String() string {
	return fmt.Sprintf("tesseract(lang=%s psm=%d)", t.opts.Language, t.opts.PageSegMode)
}
