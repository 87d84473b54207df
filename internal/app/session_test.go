package app

import (
	"context"
	"errors"
	goimage "image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/internal/image"
	"ingredient-scanner/internal/ocr"
	"ingredient-scanner/internal/wordlist"
	"ingredient-scanner/pkg/geometry"
)

type fakeEngine struct {
	text   string
	err    error
	closed *atomic.Int32
	before func()
	seen   *[]goimage.Rectangle
}

func (f *fakeEngine) Recognize(ctx context.Context, img goimage.Image) (string, error) {
	if f.before != nil {
		f.before()
	}
	if f.seen != nil {
		*f.seen = append(*f.seen, img.Bounds())
	}
	return f.text, f.err
}

func (f *fakeEngine) Close() error {
	f.closed.Add(1)
	return nil
}

func factory(e *fakeEngine) ocr.Factory {
	return func(ctx context.Context) (ocr.Engine, error) {
		return e, nil
	}
}

func testSnapshot(w, h int) *image.Snapshot {
	img := goimage.NewNRGBA(goimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	return &image.Snapshot{MIME: "image/png", Format: "png", Image: img, Size: geometry.NewSize(float64(w), float64(h))}
}

func newTestSession(t *testing.T, e *fakeEngine) *Session {
	t.Helper()
	s := NewSession(Options{
		Lists:   wordlist.NewLists(wordlist.NewMemoryStore(), zerolog.Nop()),
		Engines: factory(e),
		Logger:  zerolog.Nop(),
		Canvas:  geometry.NewSize(100, 100),
	})
	s.SetImage(testSnapshot(200, 200))
	return s
}

func TestScanSelectionRejectsSmallRegion(t *testing.T) {
	e := &fakeEngine{text: "sugar", closed: &atomic.Int32{}}
	s := newTestSession(t, e)

	s.Editor().SetSelection(geometry.NewRect(10, 10, 5, 5))
	_, err := s.ScanSelection(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Nil(t, s.Cropped())
	assert.Equal(t, int32(0), e.closed.Load())

	s.Editor().SetSelection(geometry.NewRect(10, 10, 10, 10))
	res, err := s.ScanSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCroppedOriginal, res.Source)
	require.NotNil(t, s.Cropped())
	assert.Equal(t, 20, s.Cropped().Bounds().Dx())
}

func TestScanSelectionWithoutImage(t *testing.T) {
	s := NewSession(Options{Engines: factory(&fakeEngine{closed: &atomic.Int32{}}), Logger: zerolog.Nop()})
	_, err := s.ScanSelection(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestScanSelectionMapsToSourcePixels(t *testing.T) {
	var seen []goimage.Rectangle
	e := &fakeEngine{text: "water", closed: &atomic.Int32{}, seen: &seen}
	s := newTestSession(t, e)

	s.Editor().SetSelection(geometry.NewRect(25, 25, 50, 25))
	res, err := s.ScanSelection(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Region)
	assert.Equal(t, geometry.NewRect(50, 50, 100, 50), *res.Region)
	// Mild enhancement upscales by two before recognition.
	require.Len(t, seen, 1)
	assert.Equal(t, 200, seen[0].Dx())
	assert.Equal(t, 100, seen[0].Dy())
}

func TestScanMatchesLists(t *testing.T) {
	e := &fakeEngine{text: "Ingredients: SUGAR, gelatin,  palm   oil", closed: &atomic.Int32{}}
	s := newTestSession(t, e)

	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceOriginal, res.Source)
	assert.Contains(t, res.Matches.Prohibited, "gelatin")
	assert.Same(t, res, s.LastResult())
	assert.NotNil(t, s.Processed())
}

func TestRescanAdvancesMode(t *testing.T) {
	e := &fakeEngine{text: "", closed: &atomic.Int32{}}
	s := newTestSession(t, e)
	require.Equal(t, image.ModeMildEnhancement, s.Mode())

	want := []image.Mode{image.ModeSharpen, image.ModeAdaptiveThreshold, image.ModeHighResOriginal, image.ModeMildEnhancement}
	for _, m := range want {
		res, err := s.Rescan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, m, res.Mode)
		assert.Equal(t, m, s.Mode())
	}
	assert.Equal(t, int32(len(want)), e.closed.Load())
}

func TestRescanUsesKeptCrop(t *testing.T) {
	e := &fakeEngine{closed: &atomic.Int32{}}
	s := newTestSession(t, e)
	s.Editor().SetSelection(geometry.NewRect(0, 0, 50, 50))
	_, err := s.ScanSelection(context.Background())
	require.NoError(t, err)

	s.Editor().Reset()
	res, err := s.Rescan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCroppedOriginal, res.Source)

	s.ResetCrop()
	res, err = s.Rescan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceOriginal, res.Source)
}

func TestRecognitionFailureKeepsStateAndClosesEngine(t *testing.T) {
	ok := &fakeEngine{text: "salt", closed: &atomic.Int32{}}
	s := newTestSession(t, ok)
	first, err := s.Scan(context.Background())
	require.NoError(t, err)

	bad := &fakeEngine{err: errors.New("tesseract crashed"), closed: &atomic.Int32{}}
	s.engines = factory(bad)

	var finished []interface{}
	s.On(EventScanFinished, func(data interface{}) { finished = append(finished, data) })

	_, err = s.Scan(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRecognitionFailure))
	assert.Equal(t, int32(1), bad.closed.Load())
	assert.Same(t, first, s.LastResult())
	require.Len(t, finished, 1)
	assert.NotNil(t, finished[0])
}

func TestFactoryFailure(t *testing.T) {
	s := newTestSession(t, &fakeEngine{closed: &atomic.Int32{}})
	s.engines = func(ctx context.Context) (ocr.Engine, error) {
		return nil, errors.New("no language data")
	}
	_, err := s.Scan(context.Background())
	assert.True(t, errors.Is(err, domain.ErrRecognitionFailure))
}

func TestStaleScanIsDiscarded(t *testing.T) {
	var once sync.Once
	var s *Session
	e := &fakeEngine{text: "lard", closed: &atomic.Int32{}}
	e.before = func() {
		once.Do(func() { s.ResetCrop() })
	}
	s = newTestSession(t, e)

	_, err := s.Scan(context.Background())
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, s.LastResult())
	assert.Equal(t, int32(1), e.closed.Load())
}

func TestLoadImageClearsDerivedState(t *testing.T) {
	e := &fakeEngine{text: "salt", closed: &atomic.Int32{}}
	s := newTestSession(t, e)
	s.Editor().SetSelection(geometry.NewRect(0, 0, 50, 50))
	_, err := s.ScanSelection(context.Background())
	require.NoError(t, err)
	_, err = s.Rescan(context.Background())
	require.NoError(t, err)

	var loaded int
	s.On(EventImageLoaded, func(interface{}) { loaded++ })
	s.SetImage(testSnapshot(60, 40))

	assert.Equal(t, 1, loaded)
	assert.Nil(t, s.Cropped())
	assert.Nil(t, s.Processed())
	assert.Nil(t, s.LastResult())
	assert.Equal(t, image.ModeMildEnhancement, s.Mode())
	_, ok := s.Editor().Selection()
	assert.False(t, ok)
}

func TestLoadImageRejectsNonImage(t *testing.T) {
	s := newTestSession(t, &fakeEngine{closed: &atomic.Int32{}})
	before := s.Original()

	err := s.LoadImage(strings.NewReader("definitely not an image"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Same(t, before, s.Original())
}

func TestClear(t *testing.T) {
	s := newTestSession(t, &fakeEngine{closed: &atomic.Int32{}})
	require.NoError(t, s.SetMode(image.ModeAdaptiveThreshold))
	s.Clear()
	assert.Nil(t, s.Original())
	assert.Equal(t, image.ModeMildEnhancement, s.Mode())

	_, err := s.Rescan(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSetModeRejectsUnknown(t *testing.T) {
	s := newTestSession(t, &fakeEngine{closed: &atomic.Int32{}})
	assert.Error(t, s.SetMode(image.Mode(42)))
}

func TestCloseReleasesListListener(t *testing.T) {
	lists := wordlist.NewLists(wordlist.NewMemoryStore(), zerolog.Nop())
	base := lists.ListenerCount()

	s := NewSession(Options{Lists: lists, Engines: factory(&fakeEngine{closed: &atomic.Int32{}}), Logger: zerolog.Nop()})
	var changed int
	s.On(EventListsChanged, func(interface{}) { changed++ })
	assert.Equal(t, base+1, lists.ListenerCount())

	s.Close()
	s.Close()
	assert.Equal(t, base, lists.ListenerCount())

	_, err := lists.Add(context.Background(), wordlist.Suspicious, "beetle dye")
	require.NoError(t, err)
	assert.Zero(t, changed)
}
