// Package region implements the crop-rectangle editor: a small state machine
// driven by pointer or touch gestures that draws, moves and resizes a single
// selection on the display canvas.
package region

import (
	"math"
	"sync"

	"ingredient-scanner/pkg/geometry"
)

// State is the editor's gesture state.
type State int

const (
	Idle State = iota
	Drawing
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// InputKind distinguishes fine pointers from touch contacts; touch gets
// larger hit areas and a larger minimum selection.
type InputKind int

const (
	Pointer InputKind = iota
	Touch
)

// Metrics are the size constants applied for one input kind.
type Metrics struct {
	HitSize    float64 // side of the square hit box around each handle
	MinSize    float64 // smallest width/height a resize can produce
	HandleSize float64 // drawn handle side
}

// MetricsFor returns the metrics used for the given input kind.
func MetricsFor(kind InputKind) Metrics {
	if kind == Touch {
		return Metrics{HitSize: 24, MinSize: 40, HandleSize: 16}
	}
	return Metrics{HitSize: 12, MinSize: 20, HandleSize: 8}
}

// Input is one gesture sample in display coordinates.
type Input struct {
	Point   geometry.Point2D
	Kind    InputKind
	Contact int // touch identifier; ignored for pointers
}

// Selection is a committed rectangle together with the canvas size that was
// current when it was committed.
type Selection struct {
	Rect   geometry.Rect `json:"rect"`
	Canvas geometry.Size `json:"canvas"`
}

// Frame describes what should be drawn after a state change.
type Frame struct {
	State       State          `json:"state"`
	Rect        *geometry.Rect `json:"rect,omitempty"`
	ShowHandles bool           `json:"show_handles"`
	Handles     []HandlePoint  `json:"handles,omitempty"`
	HandleSize  float64        `json:"handle_size"`
	Canvas      geometry.Size  `json:"canvas"`
}

// RenderFunc receives a frame after every state change.
type RenderFunc func(Frame)

// Editor owns the optional selection rectangle and the in-flight gesture.
// All gesture methods are safe to call from one goroutine while another
// reads Selection.
type Editor struct {
	mu sync.RWMutex

	canvas geometry.Size
	kind   InputKind // kind of the last gesture, used for hit testing and drawing

	state     State
	selection *geometry.Rect
	committed geometry.Size // canvas size when selection was last set

	contact     int
	anchor      geometry.Point2D
	pending     geometry.Rect
	dragOffset  geometry.Point2D
	initialRect geometry.Rect
	handle      Handle

	renderers []RenderFunc
}

// NewEditor creates an editor for a canvas of the given size.
func NewEditor(canvas geometry.Size) *Editor {
	return &Editor{canvas: canvas}
}

// OnRender registers a callback invoked after every state change.
func (e *Editor) OnRender(fn RenderFunc) {
	e.mu.Lock()
	e.renderers = append(e.renderers, fn)
	e.mu.Unlock()
}

// SetCanvasSize records the current display size. When both the old and the
// new size are known, the selection and any gesture in flight are rescaled
// so they cover the same part of the image on the new canvas.
func (e *Editor) SetCanvasSize(size geometry.Size) {
	e.mu.Lock()
	if !e.canvas.Empty() && !size.Empty() && e.canvas != size {
		f := geometry.FactorsBetween(e.canvas, size)
		if e.selection != nil {
			from := e.committed
			if from.Empty() {
				from = e.canvas
			}
			r := e.selection.ScaleBy(geometry.FactorsBetween(from, size))
			e.selection = &r
			e.committed = size
		}
		e.anchor = scalePoint(e.anchor, f)
		e.pending = e.pending.ScaleBy(f)
		e.dragOffset = scalePoint(e.dragOffset, f)
		e.initialRect = e.initialRect.ScaleBy(f)
	}
	e.canvas = size
	e.mu.Unlock()
	e.render()
}

func scalePoint(p geometry.Point2D, f geometry.ScaleFactors) geometry.Point2D {
	return geometry.Point2D{X: p.X * f.X, Y: p.Y * f.Y}
}

// CanvasSize returns the current display size.
func (e *Editor) CanvasSize() geometry.Size {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.canvas
}

// State returns the current gesture state.
func (e *Editor) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// ActiveHandle returns the handle being dragged, or HandleNone.
func (e *Editor) ActiveHandle() Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != Resizing {
		return HandleNone
	}
	return e.handle
}

// Selection returns the committed selection, if any.
func (e *Editor) Selection() (Selection, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selection == nil {
		return Selection{}, false
	}
	return Selection{Rect: *e.selection, Canvas: e.committed}, true
}

// SetSelection replaces the committed selection directly, without a
// gesture. The rectangle is normalized and clamped to the canvas.
func (e *Editor) SetSelection(r geometry.Rect) {
	e.mu.Lock()
	r = geometry.RectFromPoints(r.TopLeft(), geometry.NewPoint2D(r.Right(), r.Bottom()))
	r = clampRect(r, e.canvas)
	e.selection = &r
	e.committed = e.canvas
	e.state = Idle
	e.mu.Unlock()
	e.render()
}

// Reset clears the selection and any gesture in progress.
func (e *Editor) Reset() {
	e.mu.Lock()
	e.selection = nil
	e.state = Idle
	e.handle = HandleNone
	e.mu.Unlock()
	e.render()
}

// Begin starts a gesture. It returns false when the input was ignored
// because another gesture (or another touch contact) is already active.
func (e *Editor) Begin(in Input) bool {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return false
	}
	e.kind = in.Kind
	e.contact = in.Contact
	p := in.Point

	switch {
	case e.selection != nil && e.hitTestLocked(p) != HandleNone:
		e.state = Resizing
		e.handle = e.hitTestLocked(p)
		e.initialRect = *e.selection
	case e.selection != nil && e.selection.Contains(p):
		e.state = Dragging
		e.dragOffset = p.Sub(e.selection.TopLeft())
	default:
		e.state = Drawing
		e.selection = nil
		e.anchor = p
		e.pending = geometry.Rect{X: p.X, Y: p.Y}
	}
	e.mu.Unlock()
	e.render()
	return true
}

// Update advances the active gesture. Samples from other contacts or with
// no gesture active are ignored.
func (e *Editor) Update(in Input) bool {
	e.mu.Lock()
	if !e.ownsLocked(in) {
		e.mu.Unlock()
		return false
	}
	p := in.Point
	switch e.state {
	case Drawing:
		e.pending = geometry.RectFromPoints(e.anchor, p)
	case Dragging:
		r := *e.selection
		r.X = p.X - e.dragOffset.X
		r.Y = p.Y - e.dragOffset.Y
		if !e.canvas.Empty() {
			r.X = math.Max(0, math.Min(r.X, e.canvas.Width-r.Width))
			r.Y = math.Max(0, math.Min(r.Y, e.canvas.Height-r.Height))
		}
		e.selection = &r
	case Resizing:
		r := resize(e.initialRect, e.handle, p, MetricsFor(e.kind).MinSize, e.canvas)
		e.selection = &r
	}
	e.mu.Unlock()
	e.render()
	return true
}

// End finishes the active gesture. A drawing gesture always commits, even
// when the rectangle is too small to scan.
func (e *Editor) End(in Input) bool {
	e.mu.Lock()
	if !e.ownsLocked(in) {
		e.mu.Unlock()
		return false
	}
	switch e.state {
	case Drawing:
		r := geometry.RectFromPoints(e.anchor, in.Point)
		e.selection = &r
		e.committed = e.canvas
	case Dragging, Resizing:
		e.committed = e.canvas
	}
	e.state = Idle
	e.handle = HandleNone
	e.mu.Unlock()
	e.render()
	return true
}

// Cancel abandons a gesture without committing a drawing in progress.
func (e *Editor) Cancel() {
	e.mu.Lock()
	if e.state == Drawing {
		e.selection = nil
	}
	e.state = Idle
	e.handle = HandleNone
	e.mu.Unlock()
	e.render()
}

// HitTestHandle returns the handle under p for the given input kind.
func (e *Editor) HitTestHandle(p geometry.Point2D, kind InputKind) Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.selection == nil {
		return HandleNone
	}
	return hitTest(*e.selection, p, MetricsFor(kind).HitSize)
}

// IsInsideSelection reports whether p lies within the committed selection.
func (e *Editor) IsInsideSelection(p geometry.Point2D) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection != nil && e.selection.Contains(p)
}

// CursorFor returns the cursor to show when hovering p.
func (e *Editor) CursorFor(p geometry.Point2D, kind InputKind) Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch e.state {
	case Dragging:
		return CursorMove
	case Resizing:
		return e.handle.Cursor()
	case Drawing:
		return CursorCrosshair
	}
	if e.selection == nil {
		return CursorCrosshair
	}
	if h := hitTest(*e.selection, p, MetricsFor(kind).HitSize); h != HandleNone {
		return h.Cursor()
	}
	if e.selection.Contains(p) {
		return CursorMove
	}
	return CursorCrosshair
}

// Frame returns a snapshot of what should currently be drawn.
func (e *Editor) Frame() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameLocked()
}

func (e *Editor) frameLocked() Frame {
	m := MetricsFor(e.kind)
	f := Frame{State: e.state, HandleSize: m.HandleSize, Canvas: e.canvas}
	switch {
	case e.state == Drawing:
		r := e.pending
		f.Rect = &r
	case e.selection != nil:
		r := *e.selection
		f.Rect = &r
		if !r.Empty() {
			f.ShowHandles = true
			f.Handles = HandleCenters(r)
		}
	}
	return f
}

func (e *Editor) hitTestLocked(p geometry.Point2D) Handle {
	return hitTest(*e.selection, p, MetricsFor(e.kind).HitSize)
}

func (e *Editor) ownsLocked(in Input) bool {
	if e.state == Idle || in.Kind != e.kind {
		return false
	}
	return in.Kind != Touch || in.Contact == e.contact
}

func (e *Editor) render() {
	e.mu.RLock()
	frame := e.frameLocked()
	renderers := make([]RenderFunc, len(e.renderers))
	copy(renderers, e.renderers)
	e.mu.RUnlock()

	for _, fn := range renderers {
		fn(frame)
	}
}

func hitTest(r geometry.Rect, p geometry.Point2D, hitSize float64) Handle {
	half := hitSize / 2
	for _, hp := range HandleCenters(r) {
		if p.X >= hp.Center.X-half && p.X <= hp.Center.X+half &&
			p.Y >= hp.Center.Y-half && p.Y <= hp.Center.Y+half {
			return hp.Handle
		}
	}
	return HandleNone
}

// resize moves the edges dragged by h to p, starting from the rectangle as
// it was when the gesture began. A moving edge stops minSize short of the
// opposite edge, and all edges stay inside the canvas.
func resize(initial geometry.Rect, h Handle, p geometry.Point2D, minSize float64, canvas geometry.Size) geometry.Rect {
	left, top := initial.X, initial.Y
	right, bottom := initial.Right(), initial.Bottom()

	if h.movesLeft() {
		left = math.Min(p.X, right-minSize)
	}
	if h.movesRight() {
		right = math.Max(p.X, left+minSize)
	}
	if h.movesTop() {
		top = math.Min(p.Y, bottom-minSize)
	}
	if h.movesBottom() {
		bottom = math.Max(p.Y, top+minSize)
	}

	left = math.Max(0, left)
	top = math.Max(0, top)
	if !canvas.Empty() {
		right = math.Min(right, canvas.Width)
		bottom = math.Min(bottom, canvas.Height)
	}
	return geometry.NewRect(left, top, right-left, bottom-top)
}

func clampRect(r geometry.Rect, canvas geometry.Size) geometry.Rect {
	left := math.Max(0, r.X)
	top := math.Max(0, r.Y)
	right, bottom := r.Right(), r.Bottom()
	if !canvas.Empty() {
		right = math.Min(right, canvas.Width)
		bottom = math.Min(bottom, canvas.Height)
	}
	return geometry.NewRect(left, top, math.Max(0, right-left), math.Max(0, bottom-top))
}
