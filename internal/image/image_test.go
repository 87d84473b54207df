package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/pkg/geometry"
)

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func grey(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeBytesPNG(t *testing.T) {
	snap, err := DecodeBytes(encodePNG(t, gradient(30, 20)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", snap.MIME)
	assert.Equal(t, "png", snap.Format)
	assert.Equal(t, geometry.NewSize(30, 20), snap.Size)
	assert.Equal(t, 30, snap.Width())
	assert.Equal(t, 20, snap.Height())
}

func TestDecodeBytesRejectsNonImage(t *testing.T) {
	_, err := DecodeBytes([]byte("sugar, flour, salt\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = DecodeBytes(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDecodeBytesCorruptImage(t *testing.T) {
	data := encodePNG(t, gradient(30, 20))
	_, err := DecodeBytes(data[:40])
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDecodeFailure))
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("label.JPG"))
	assert.True(t, IsSupportedFormat("/tmp/scan.webp"))
	assert.False(t, IsSupportedFormat("notes.txt"))
}

func TestMapDisplayRectToSourceRoundTrip(t *testing.T) {
	display := geometry.NewSize(400, 300)
	source := geometry.NewSize(1600, 1500)
	r := geometry.NewRect(20, 30, 100, 50)

	mapped := MapDisplayRectToSource(r, display, source)
	assert.Equal(t, geometry.NewRect(80, 150, 400, 250), mapped)

	back := MapDisplayRectToSource(mapped, source, display)
	assert.InDelta(t, r.X, back.X, 1e-9)
	assert.InDelta(t, r.Y, back.Y, 1e-9)
	assert.InDelta(t, r.Width, back.Width, 1e-9)
	assert.InDelta(t, r.Height, back.Height, 1e-9)
}

func TestExtractRegionCopiesExactPixels(t *testing.T) {
	src := gradient(40, 30)
	out, err := ExtractRegion(src, geometry.NewRect(5, 6, 10, 8))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 10, 8), out.Bounds())
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			assert.Equal(t, src.NRGBAAt(x+5, y+6), out.NRGBAAt(x, y))
		}
	}

	out.SetNRGBA(0, 0, grey(1))
	assert.NotEqual(t, grey(1), src.NRGBAAt(5, 6))
}

func TestExtractRegionClipsAndRejects(t *testing.T) {
	src := gradient(40, 30)
	out, err := ExtractRegion(src, geometry.NewRect(30, 20, 50, 50))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())

	_, err = ExtractRegion(src, geometry.NewRect(100, 100, 10, 10))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApplyModeIsPureAndUpscales(t *testing.T) {
	src := gradient(24, 16)
	before := append([]uint8(nil), src.Pix...)

	for _, m := range Modes() {
		t.Run(m.Slug(), func(t *testing.T) {
			a := ApplyMode(src, m)
			b := ApplyMode(src, m)
			assert.Equal(t, image.Rect(0, 0, 48, 32), a.Bounds())
			assert.Equal(t, a.Pix, b.Pix)
			assert.Equal(t, before, src.Pix)
		})
	}
}

func TestApplyModeMildEnhancement(t *testing.T) {
	out := ApplyMode(uniform(4, 4, grey(100)), ModeMildEnhancement)
	assert.Equal(t, grey(101), out.NRGBAAt(3, 3))

	colored := ApplyMode(uniform(4, 4, color.NRGBA{R: 200, G: 40, B: 90, A: 255}), ModeMildEnhancement)
	c := colored.NRGBAAt(1, 1)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestApplyModeAdaptiveThreshold(t *testing.T) {
	tests := []struct {
		in   uint8
		want uint8
	}{
		{50, 0},
		{99, 0},
		{140, 102},
		{201, 255},
		{250, 255},
	}
	for _, tt := range tests {
		out := ApplyMode(uniform(3, 3, grey(tt.in)), ModeAdaptiveThreshold)
		assert.Equal(t, grey(tt.want), out.NRGBAAt(2, 2), "luma %d", tt.in)
	}
}

func TestApplyModeSharpenPushesAwayFromMid(t *testing.T) {
	light := ApplyMode(uniform(4, 4, grey(200)), ModeSharpen).NRGBAAt(0, 0)
	dark := ApplyMode(uniform(4, 4, grey(50)), ModeSharpen).NRGBAAt(0, 0)
	assert.Greater(t, light.R, uint8(200))
	assert.Less(t, dark.R, uint8(50))
}

func TestApplyModeEmptyImage(t *testing.T) {
	out := ApplyMode(image.NewNRGBA(image.Rect(0, 0, 0, 0)), ModeSharpen)
	assert.True(t, out.Bounds().Empty())
}

func TestBlendOverlay(t *testing.T) {
	dst := uniform(1, 1, color.NRGBA{R: 64, G: 192, B: 255, A: 255})
	src := uniform(1, 1, grey(128))
	out := Blend(dst, src, BlendOverlay).NRGBAAt(0, 0)

	assert.InDelta(t, 64, int(out.R), 1)
	assert.InDelta(t, 192, int(out.G), 1)
	assert.Equal(t, uint8(255), out.B)
	assert.Equal(t, uint8(255), out.A)
}

func TestMeasure(t *testing.T) {
	s := Measure(uniform(10, 10, grey(120)))
	assert.Equal(t, 10, s.Width)
	assert.InDelta(t, 120, s.MeanLuma, 1e-6)
	assert.InDelta(t, 0, s.StdDevLuma, 1e-6)

	assert.Equal(t, Stats{}, Measure(image.NewNRGBA(image.Rectangle{})))
}

func TestModeCycleAndParse(t *testing.T) {
	assert.Equal(t, ModeSharpen, ModeMildEnhancement.Next())
	assert.Equal(t, ModeMildEnhancement, ModeHighResOriginal.Next())
	assert.Equal(t, "Adaptive Threshold", ModeAdaptiveThreshold.String())

	for in, want := range map[string]Mode{"2": ModeAdaptiveThreshold, "sharpen": ModeSharpen, "High Resolution Original": ModeHighResOriginal} {
		m, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, m)
	}
	_, err := ParseMode("7")
	assert.Error(t, err)
	_, err = ParseMode("blur")
	assert.Error(t, err)
}
