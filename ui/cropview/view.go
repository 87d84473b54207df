// Package cropview provides the image widget on which the crop selection is
// drawn, moved and resized.
package cropview

import (
	"image"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"ingredient-scanner/internal/region"
	"ingredient-scanner/pkg/geometry"
)

// View shows an image scaled to fit and forwards pointer and touch
// gestures to a region editor. The editor's canvas is the displayed image
// area, in fyne units.
type View struct {
	widget.BaseWidget

	editor *region.Editor
	raster *fynecanvas.Raster

	mu     sync.Mutex
	src    image.Image
	scaled *image.NRGBA // src resized for the last raster size

	kind     region.InputKind
	pressed  bool
	lastDrag geometry.Point2D
	cursor   region.Cursor

	onCanvasSize func(geometry.Size)
}

var (
	_ fyne.Draggable     = (*View)(nil)
	_ desktop.Mouseable  = (*View)(nil)
	_ desktop.Hoverable  = (*View)(nil)
	_ desktop.Cursorable = (*View)(nil)
)

// NewView creates a view driving editor.
func NewView(editor *region.Editor) *View {
	v := &View{editor: editor, cursor: region.CursorCrosshair}
	if fyne.CurrentDevice().IsMobile() {
		v.kind = region.Touch
	}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	editor.OnRender(func(region.Frame) { v.raster.Refresh() })
	v.ExtendBaseWidget(v)
	return v
}

// OnCanvasSize registers a callback invoked when the displayed image area
// changes size.
func (v *View) OnCanvasSize(fn func(geometry.Size)) {
	v.onCanvasSize = fn
}

// SetImage replaces the displayed image. Nil clears the view.
func (v *View) SetImage(img image.Image) {
	v.mu.Lock()
	v.src = img
	v.scaled = nil
	v.mu.Unlock()
	v.updateCanvasSize(v.Size())
	v.raster.Refresh()
}

// imageArea returns where the image sits inside the widget, in fyne units.
func (v *View) imageArea(size fyne.Size) (scale, ox, oy float64, ok bool) {
	v.mu.Lock()
	src := v.src
	v.mu.Unlock()
	if src == nil {
		return 0, 0, 0, false
	}
	b := src.Bounds()
	scale, ox, oy = fit(b.Dx(), b.Dy(), float64(size.Width), float64(size.Height))
	return scale, ox, oy, scale > 0
}

func (v *View) updateCanvasSize(size fyne.Size) {
	scale, _, _, ok := v.imageArea(size)
	if !ok {
		return
	}
	v.mu.Lock()
	b := v.src.Bounds()
	v.mu.Unlock()
	cs := geometry.NewSize(float64(b.Dx())*scale, float64(b.Dy())*scale)
	if cs == v.editor.CanvasSize() {
		return
	}
	if v.onCanvasSize != nil {
		v.onCanvasSize(cs)
	} else {
		v.editor.SetCanvasSize(cs)
	}
}

// toCanvas converts a widget position to editor canvas coordinates.
func (v *View) toCanvas(pos fyne.Position) (geometry.Point2D, bool) {
	_, ox, oy, ok := v.imageArea(v.Size())
	if !ok {
		return geometry.Point2D{}, false
	}
	return geometry.NewPoint2D(float64(pos.X)-ox, float64(pos.Y)-oy), true
}

func (v *View) input(p geometry.Point2D) region.Input {
	return region.Input{Point: p, Kind: v.kind}
}

// MouseDown starts a gesture at the press position.
func (v *View) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	p, ok := v.toCanvas(ev.Position)
	if !ok {
		return
	}
	v.kind = region.Pointer
	v.pressed = v.editor.Begin(v.input(p))
	v.lastDrag = p
}

// MouseUp ends a gesture that never produced a drag event.
func (v *View) MouseUp(ev *desktop.MouseEvent) {
	if !v.pressed {
		return
	}
	p, ok := v.toCanvas(ev.Position)
	if !ok {
		p = v.lastDrag
	}
	v.pressed = false
	v.editor.End(v.input(p))
}

// Dragged updates the gesture. On touch devices, where no press event
// arrives, the first drag begins it at the drag origin.
func (v *View) Dragged(ev *fyne.DragEvent) {
	p, ok := v.toCanvas(ev.Position)
	if !ok {
		return
	}
	if !v.pressed {
		start := geometry.NewPoint2D(p.X-float64(ev.Dragged.DX), p.Y-float64(ev.Dragged.DY))
		v.pressed = v.editor.Begin(v.input(start))
	}
	v.lastDrag = p
	v.editor.Update(v.input(p))
	v.cursor = v.editor.CursorFor(p, v.kind)
}

// DragEnd commits the gesture at the last drag position.
func (v *View) DragEnd() {
	if !v.pressed {
		return
	}
	v.pressed = false
	v.editor.End(v.input(v.lastDrag))
	v.cursor = v.editor.CursorFor(v.lastDrag, v.kind)
}

func (v *View) MouseIn(ev *desktop.MouseEvent) {
	v.MouseMoved(ev)
}

// MouseMoved updates the hover cursor.
func (v *View) MouseMoved(ev *desktop.MouseEvent) {
	if p, ok := v.toCanvas(ev.Position); ok {
		v.cursor = v.editor.CursorFor(p, region.Pointer)
	}
}

func (v *View) MouseOut() {
	v.cursor = region.CursorDefault
}

// Cursor maps the editor's cursor onto the shapes fyne offers.
func (v *View) Cursor() desktop.Cursor {
	return desktopCursor(v.cursor)
}

func desktopCursor(c region.Cursor) desktop.Cursor {
	switch c {
	case region.CursorCrosshair:
		return desktop.CrosshairCursor
	case region.CursorMove:
		return desktop.PointerCursor
	case "n-resize", "s-resize":
		return desktop.VResizeCursor
	case "e-resize", "w-resize":
		return desktop.HResizeCursor
	case "nw-resize", "ne-resize", "se-resize", "sw-resize":
		return desktop.CrosshairCursor
	default:
		return desktop.DefaultCursor
	}
}

// draw renders the scaled image and the editor frame into a w x h raster.
func (v *View) draw(w, h int) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	size := v.Size()
	if size.Width <= 0 || w <= 0 || h <= 0 {
		return out
	}
	scale, ox, oy, ok := v.imageArea(size)
	if !ok {
		return out
	}
	px := float64(w) / float64(size.Width) // raster pixels per fyne unit

	v.mu.Lock()
	b := v.src.Bounds()
	dw := int(float64(b.Dx()) * scale * px)
	dh := int(float64(b.Dy()) * scale * px)
	if dw < 1 || dh < 1 {
		v.mu.Unlock()
		return out
	}
	if v.scaled == nil || v.scaled.Bounds().Dx() != dw || v.scaled.Bounds().Dy() != dh {
		v.scaled = imaging.Resize(v.src, dw, dh, imaging.Linear)
	}
	img := imaging.Clone(v.scaled)
	v.mu.Unlock()

	drawFrame(img, v.editor.Frame(), px)

	at := image.Pt(int(ox*px), int(oy*px))
	draw.Draw(out, img.Bounds().Add(at), img, image.Point{}, draw.Src)
	return out
}

// CreateRenderer implements fyne.Widget.
func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return &viewRenderer{view: v}
}

type viewRenderer struct {
	view *View
}

func (r *viewRenderer) Layout(size fyne.Size) {
	r.view.raster.Resize(size)
	r.view.updateCanvasSize(size)
}

func (r *viewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *viewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *viewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *viewRenderer) Destroy() {}
