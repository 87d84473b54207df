// Package image provides image loading, region extraction and the
// pre-recognition processing modes.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/pkg/geometry"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Snapshot is an immutable, full-resolution decode of a user-supplied image.
// It is never downscaled; every later stage reads from it.
type Snapshot struct {
	Path   string        // Original file path, empty for uploads
	MIME   string        // Detected content type
	Format string        // Decoder name reported by image.Decode
	Image  *image.NRGBA  // Decoded pixels, origin at (0,0)
	Size   geometry.Size // Native pixel size
}

// Decode reads all of r, rejects content that is not an image and decodes
// it once at native resolution. EXIF orientation is applied.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.DecodeFailure("read image data", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, domain.InvalidInput("empty upload", nil)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, domain.InvalidInput(fmt.Sprintf("not an image file (%s)", mt.String()), nil)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.DecodeFailure("unsupported or corrupt "+mt.String(), err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.DecodeFailure("failed to decode image", err)
	}

	nrgba := imaging.Clone(img)
	return &Snapshot{
		MIME:   mt.String(),
		Format: format,
		Image:  nrgba,
		Size:   geometry.SizeOf(nrgba.Bounds()),
	}, nil
}

// Load decodes the image at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.InvalidInput("failed to open image", err)
	}
	snap, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	snap.Path = path
	return snap, nil
}

// Width returns the image width in pixels.
func (s *Snapshot) Width() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Snapshot) Height() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".tiff", ".tif", ".bmp", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.jpg, *.jpeg, *.png, *.gif, *.tiff, *.tif, *.bmp, *.webp)"
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
