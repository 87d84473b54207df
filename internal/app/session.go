// Package app provides the scan session that ties the crop editor, the image
// pipeline, the recognizer and the word lists together, plus the events the
// front ends subscribe to.
package app

import (
	"context"
	"errors"
	goimage "image"
	"io"
	"sync"
	"time"

	"ingredient-scanner/internal/domain"
	"ingredient-scanner/internal/image"
	"ingredient-scanner/internal/matcher"
	"ingredient-scanner/internal/ocr"
	"ingredient-scanner/internal/region"
	"ingredient-scanner/internal/wordlist"
	"ingredient-scanner/pkg/geometry"

	"github.com/rs/zerolog"
)

// MinScanSize is the smallest selection width or height, in display units,
// that can be scanned.
const MinScanSize = 10.0

// ErrStale is returned by a scan whose result was discarded because the
// session changed while it was running.
var ErrStale = errors.New("scan result discarded: session changed")

// Source names the buffer a scan read from.
type Source string

const (
	SourceOriginal        Source = "original"
	SourceCroppedOriginal Source = "croppedOriginal"
)

// EventType identifies different session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventCropReset
	EventCleared
	EventModeChanged
	EventScanStarted
	EventScanFinished // always follows EventScanStarted; data is the error or nil
	EventScanCompleted
	EventListsChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ScanResult is the outcome of one recognition pass.
type ScanResult struct {
	Text      string          `json:"text"`
	Matches   matcher.Result  `json:"matches"`
	Mode      image.Mode      `json:"mode"`
	ModeName  string          `json:"mode_name"`
	Source    Source          `json:"source"`
	Region    *geometry.Rect  `json:"region,omitempty"` // source pixels, for crop scans
	Stats     image.Stats     `json:"stats"`
	Duration  time.Duration   `json:"duration"`
	Processed *goimage.NRGBA `json:"-"`
}

// Options configures a Session.
type Options struct {
	Lists      *wordlist.Lists
	Engines    ocr.Factory
	Logger     zerolog.Logger
	OCRTimeout time.Duration
	Canvas     geometry.Size
}

// Session owns the image under inspection, the crop selection, the current
// processing mode and the last result. Every change that invalidates work in
// flight bumps a generation counter; a scan commits its result only if the
// generation it started under is still current.
type Session struct {
	mu sync.RWMutex

	original  *image.Snapshot
	cropped   *goimage.NRGBA
	processed *goimage.NRGBA
	mode      image.Mode
	last      *ScanResult

	generation uint64

	editor     *region.Editor
	lists      *wordlist.Lists
	matcher    *matcher.Matcher
	engines    ocr.Factory
	ocrTimeout time.Duration
	logger     zerolog.Logger

	listeners   map[EventType][]EventListener
	unsubscribe func()
}

// NewSession creates a session with no image loaded.
func NewSession(opts Options) *Session {
	s := &Session{
		editor:     region.NewEditor(opts.Canvas),
		lists:      opts.Lists,
		matcher:    matcher.New(),
		engines:    opts.Engines,
		ocrTimeout: opts.OCRTimeout,
		logger:     opts.Logger.With().Str("component", "session").Logger(),
		listeners:  make(map[EventType][]EventListener),
	}
	if s.lists == nil {
		s.lists = wordlist.NewLists(wordlist.NewMemoryStore(), opts.Logger)
	}
	s.unsubscribe = s.lists.OnChange(func(c wordlist.Category, phrases []string) {
		s.Emit(EventListsChanged, c)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Editor returns the crop editor. Gesture input goes straight to it.
func (s *Session) Editor() *region.Editor {
	return s.editor
}

// Lists returns the word lists used for matching.
func (s *Session) Lists() *wordlist.Lists {
	return s.lists
}

// SetCanvasSize records the display size the editor works in.
func (s *Session) SetCanvasSize(size geometry.Size) {
	s.editor.SetCanvasSize(size)
}

// LoadImage decodes r and makes it the current image. On failure the
// previous image and results are kept.
func (s *Session) LoadImage(r io.Reader) error {
	snap, err := image.Decode(r)
	if err != nil {
		return err
	}
	s.SetImage(snap)
	return nil
}

// LoadImageFile is LoadImage for a path on disk.
func (s *Session) LoadImageFile(path string) error {
	snap, err := image.Load(path)
	if err != nil {
		return err
	}
	s.SetImage(snap)
	return nil
}

// SetImage replaces the current image with an already decoded snapshot and
// drops every derived buffer, the selection and the last result.
func (s *Session) SetImage(snap *image.Snapshot) {
	s.mu.Lock()
	s.generation++
	s.original = snap
	s.cropped = nil
	s.processed = nil
	s.last = nil
	s.mode = image.ModeMildEnhancement
	s.mu.Unlock()

	s.editor.Reset()
	s.logger.Info().
		Str("path", snap.Path).
		Str("mime", snap.MIME).
		Int("width", snap.Width()).
		Int("height", snap.Height()).
		Msg("image loaded")
	s.Emit(EventImageLoaded, snap)
}

// Original returns the loaded snapshot, or nil.
func (s *Session) Original() *image.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// Cropped returns the last extracted crop at source resolution, or nil.
func (s *Session) Cropped() *goimage.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cropped
}

// Processed returns the image the last committed scan recognized, or nil.
func (s *Session) Processed() *goimage.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processed
}

// LastResult returns the last committed scan result, or nil.
func (s *Session) LastResult() *ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Mode returns the processing mode the next scan will use.
func (s *Session) Mode() image.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode selects the processing mode for the next scan.
func (s *Session) SetMode(m image.Mode) error {
	if !m.Valid() {
		return domain.InvalidInput("unknown processing mode", nil)
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	s.Emit(EventModeChanged, m)
	return nil
}

// ResetCrop discards the selection, the extracted crop and the last result.
// Scans still running are discarded when they finish.
func (s *Session) ResetCrop() {
	s.mu.Lock()
	s.generation++
	s.cropped = nil
	s.processed = nil
	s.last = nil
	s.mu.Unlock()

	s.editor.Reset()
	s.Emit(EventCropReset, nil)
}

// Clear drops the image and everything derived from it.
func (s *Session) Clear() {
	s.mu.Lock()
	s.generation++
	s.original = nil
	s.cropped = nil
	s.processed = nil
	s.last = nil
	s.mode = image.ModeMildEnhancement
	s.mu.Unlock()

	s.editor.Reset()
	s.Emit(EventCleared, nil)
}

// Close detaches the session from the shared word lists and discards any
// scan still in flight. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	s.generation++
	s.original = nil
	s.cropped = nil
	s.processed = nil
	s.last = nil
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// ScanSelection crops the original image to the committed selection, keeps
// the crop for later rescans and recognizes it with the current mode.
func (s *Session) ScanSelection(ctx context.Context) (*ScanResult, error) {
	s.mu.Lock()
	if s.original == nil {
		s.mu.Unlock()
		return nil, domain.InvalidInput("no image loaded", nil)
	}
	sel, ok := s.editor.Selection()
	if !ok || sel.Rect.Width < MinScanSize || sel.Rect.Height < MinScanSize {
		s.mu.Unlock()
		return nil, domain.InvalidInput("please select a valid area to scan", nil)
	}
	s.generation++
	gen := s.generation
	snap := s.original
	mode := s.mode
	s.mu.Unlock()

	display := sel.Canvas
	if display.Empty() {
		display = snap.Size
	}
	srcRect := image.MapDisplayRectToSource(sel.Rect, display, snap.Size)
	cropped, err := image.ExtractRegion(snap.Image, srcRect)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, ErrStale
	}
	s.cropped = cropped
	s.processed = nil
	s.mu.Unlock()

	return s.run(ctx, gen, cropped, mode, SourceCroppedOriginal, &srcRect)
}

// Rescan advances to the next processing mode and recognizes the kept crop,
// or the whole image when nothing was cropped.
func (s *Session) Rescan(ctx context.Context) (*ScanResult, error) {
	s.mu.Lock()
	if s.original == nil {
		s.mu.Unlock()
		return nil, domain.InvalidInput("no image loaded", nil)
	}
	s.mode = s.mode.Next()
	mode := s.mode
	s.generation++
	gen := s.generation
	src, source := s.currentSourceLocked()
	s.mu.Unlock()

	s.Emit(EventModeChanged, mode)
	return s.run(ctx, gen, src, mode, source, nil)
}

// Scan recognizes the kept crop, or the whole image, with the current mode.
func (s *Session) Scan(ctx context.Context) (*ScanResult, error) {
	s.mu.Lock()
	if s.original == nil {
		s.mu.Unlock()
		return nil, domain.InvalidInput("no image loaded", nil)
	}
	mode := s.mode
	s.generation++
	gen := s.generation
	src, source := s.currentSourceLocked()
	s.mu.Unlock()

	return s.run(ctx, gen, src, mode, source, nil)
}

func (s *Session) currentSourceLocked() (*goimage.NRGBA, Source) {
	if s.cropped != nil {
		return s.cropped, SourceCroppedOriginal
	}
	return s.original.Image, SourceOriginal
}

// run processes src with mode, recognizes it and matches the text. The
// scan-finished event and the engine's Close run on every path.
func (s *Session) run(ctx context.Context, gen uint64, src *goimage.NRGBA, mode image.Mode, source Source, srcRect *geometry.Rect) (res *ScanResult, err error) {
	start := time.Now()
	s.Emit(EventScanStarted, mode)
	defer func() {
		if err != nil {
			s.logger.Warn().Err(err).Str("mode", mode.Slug()).Msg("scan failed")
		}
		s.Emit(EventScanFinished, err)
	}()

	if s.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ocrTimeout)
		defer cancel()
	}

	processed := image.ApplyMode(src, mode)

	if s.engines == nil {
		return nil, domain.RecognitionFailure("no recognizer configured", nil)
	}
	engine, err := s.engines(ctx)
	if err != nil {
		return nil, asRecognitionFailure("failed to start recognizer", err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("failed to release recognizer")
		}
	}()

	text, err := engine.Recognize(ctx, processed)
	if err != nil {
		return nil, asRecognitionFailure("text recognition failed", err)
	}

	suspicious, prohibited := s.lists.Snapshot()
	res = &ScanResult{
		Text:      text,
		Matches:   s.matcher.Classify(text, suspicious, prohibited),
		Mode:      mode,
		ModeName:  mode.String(),
		Source:    source,
		Region:    srcRect,
		Stats:     image.Measure(processed),
		Duration:  time.Since(start),
		Processed: processed,
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, ErrStale
	}
	s.processed = processed
	s.last = res
	s.mu.Unlock()

	s.logger.Info().
		Str("mode", mode.Slug()).
		Str("source", string(source)).
		Int("suspicious", len(res.Matches.Suspicious)).
		Int("prohibited", len(res.Matches.Prohibited)).
		Dur("duration", res.Duration).
		Msg("scan complete")
	s.Emit(EventScanCompleted, res)
	return res, nil
}

func asRecognitionFailure(msg string, err error) error {
	if domain.TypeOf(err) != "" {
		return err
	}
	return domain.RecognitionFailure(msg, err)
}
