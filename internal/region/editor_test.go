package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/pkg/geometry"
)

func pt(x, y float64) Input {
	return Input{Point: geometry.NewPoint2D(x, y), Kind: Pointer}
}

func touch(x, y float64, contact int) Input {
	return Input{Point: geometry.NewPoint2D(x, y), Kind: Touch, Contact: contact}
}

func draw(t *testing.T, e *Editor, x1, y1, x2, y2 float64) {
	t.Helper()
	require.True(t, e.Begin(pt(x1, y1)))
	require.Equal(t, Drawing, e.State())
	require.True(t, e.Update(pt(x2, y2)))
	require.True(t, e.End(pt(x2, y2)))
}

func TestDrawCommitsNormalizedRect(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 120, 90, 20, 10)

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(20, 10, 100, 80), sel.Rect)
	assert.Equal(t, geometry.NewSize(400, 300), sel.Canvas)
	assert.Equal(t, Idle, e.State())
}

func TestDrawCommitsTinyRect(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 10, 10, 13, 12)

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(10, 10, 3, 2), sel.Rect)
}

func TestBeginOutsideSelectionStartsNewDrawing(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 10, 10, 60, 60)

	require.True(t, e.Begin(pt(200, 200)))
	assert.Equal(t, Drawing, e.State())
	_, ok := e.Selection()
	assert.False(t, ok)
}

func TestDragTranslatesExactly(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 50, 50, 150, 120)

	require.True(t, e.Begin(pt(100, 80)))
	require.Equal(t, Dragging, e.State())
	e.Update(pt(110, 80))
	e.End(pt(110, 80))

	sel, _ := e.Selection()
	assert.Equal(t, geometry.NewRect(60, 50, 100, 70), sel.Rect)
}

func TestDragClampsToCanvas(t *testing.T) {
	e := NewEditor(geometry.NewSize(200, 200))
	e.SetSelection(geometry.NewRect(100, 100, 50, 50))

	require.True(t, e.Begin(pt(125, 125)))
	e.Update(pt(-50, -50))
	sel, _ := e.Selection()
	assert.Equal(t, geometry.NewRect(0, 0, 50, 50), sel.Rect)

	e.Update(pt(500, 500))
	e.End(pt(500, 500))
	sel, _ = e.Selection()
	assert.Equal(t, geometry.NewRect(150, 150, 50, 50), sel.Rect)
}

func TestResizeHonorsMinimumSize(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	e.SetSelection(geometry.NewRect(100, 100, 100, 100))

	require.True(t, e.Begin(pt(200, 200)))
	require.Equal(t, Resizing, e.State())
	assert.Equal(t, HandleSE, e.ActiveHandle())

	for _, p := range [][2]float64{{150, 150}, {100, 100}, {0, 0}, {-40, 350}} {
		e.Update(pt(p[0], p[1]))
		sel, _ := e.Selection()
		assert.GreaterOrEqual(t, sel.Rect.Width, 20.0)
		assert.GreaterOrEqual(t, sel.Rect.Height, 20.0)
		assert.Equal(t, 100.0, sel.Rect.X)
		assert.Equal(t, 100.0, sel.Rect.Y)
	}
	e.End(pt(0, 0))
}

func TestResizeNorthWestKeepsOppositeCorner(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	e.SetSelection(geometry.NewRect(100, 100, 100, 100))

	require.True(t, e.Begin(pt(100, 100)))
	require.Equal(t, HandleNW, e.ActiveHandle())

	e.Update(pt(190, 195))
	sel, _ := e.Selection()
	assert.Equal(t, geometry.NewRect(180, 180, 20, 20), sel.Rect)

	e.Update(pt(-30, 50))
	sel, _ = e.Selection()
	assert.Equal(t, geometry.NewRect(0, 50, 200, 150), sel.Rect)
}

func TestResizeEdgeHandlesMoveOneAxis(t *testing.T) {
	tests := []struct {
		name  string
		grab  geometry.Point2D
		to    geometry.Point2D
		want  geometry.Rect
		check Handle
	}{
		{"north", geometry.NewPoint2D(150, 100), geometry.NewPoint2D(300, 60), geometry.NewRect(100, 60, 100, 140), HandleN},
		{"east", geometry.NewPoint2D(200, 150), geometry.NewPoint2D(260, 10), geometry.NewRect(100, 100, 160, 100), HandleE},
		{"south", geometry.NewPoint2D(150, 200), geometry.NewPoint2D(0, 500), geometry.NewRect(100, 100, 100, 300), HandleS},
		{"west", geometry.NewPoint2D(100, 150), geometry.NewPoint2D(190, 0), geometry.NewRect(180, 100, 20, 100), HandleW},
		{"northeast", geometry.NewPoint2D(200, 100), geometry.NewPoint2D(250, 50), geometry.NewRect(100, 50, 150, 150), HandleNE},
		{"southwest", geometry.NewPoint2D(100, 200), geometry.NewPoint2D(50, 250), geometry.NewRect(50, 100, 150, 150), HandleSW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(geometry.NewSize(400, 400))
			e.SetSelection(geometry.NewRect(100, 100, 100, 100))
			require.True(t, e.Begin(Input{Point: tt.grab}))
			require.Equal(t, tt.check, e.ActiveHandle())
			e.Update(Input{Point: tt.to})
			e.End(Input{Point: tt.to})
			sel, _ := e.Selection()
			assert.Equal(t, tt.want, sel.Rect)
		})
	}
}

func TestTouchUsesLargerMetrics(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	e.SetSelection(geometry.NewRect(100, 100, 100, 100))

	assert.Equal(t, HandleNone, e.HitTestHandle(geometry.NewPoint2D(110, 110), Pointer))
	assert.Equal(t, HandleNW, e.HitTestHandle(geometry.NewPoint2D(110, 110), Touch))

	require.True(t, e.Begin(touch(200, 200, 7)))
	e.Update(touch(0, 0, 7))
	sel, _ := e.Selection()
	assert.Equal(t, 40.0, sel.Rect.Width)
	assert.Equal(t, 40.0, sel.Rect.Height)
}

func TestSecondTouchContactIgnored(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	require.True(t, e.Begin(touch(10, 10, 1)))

	assert.False(t, e.Begin(touch(300, 300, 2)))
	assert.False(t, e.Update(touch(300, 300, 2)))
	assert.True(t, e.Update(touch(60, 70, 1)))
	assert.False(t, e.End(touch(300, 300, 2)))
	assert.True(t, e.End(touch(60, 70, 1)))

	sel, _ := e.Selection()
	assert.Equal(t, geometry.NewRect(10, 10, 50, 60), sel.Rect)
}

func TestUpdateWithoutGestureIgnored(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	assert.False(t, e.Update(pt(10, 10)))
	assert.False(t, e.End(pt(10, 10)))
	assert.Equal(t, Idle, e.State())
}

func TestHitTestOrderAndInside(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	assert.Equal(t, HandleNone, e.HitTestHandle(geometry.NewPoint2D(0, 0), Pointer))

	e.SetSelection(geometry.NewRect(100, 100, 100, 100))
	assert.Equal(t, HandleNW, e.HitTestHandle(geometry.NewPoint2D(104, 96), Pointer))
	assert.Equal(t, HandleN, e.HitTestHandle(geometry.NewPoint2D(150, 106), Pointer))
	assert.Equal(t, HandleW, e.HitTestHandle(geometry.NewPoint2D(94, 150), Pointer))
	assert.Equal(t, HandleNone, e.HitTestHandle(geometry.NewPoint2D(150, 150), Pointer))
	assert.True(t, e.IsInsideSelection(geometry.NewPoint2D(150, 150)))
	assert.False(t, e.IsInsideSelection(geometry.NewPoint2D(250, 150)))
}

func TestCursorFor(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	assert.Equal(t, CursorCrosshair, e.CursorFor(geometry.NewPoint2D(10, 10), Pointer))

	e.SetSelection(geometry.NewRect(100, 100, 100, 100))
	assert.Equal(t, Cursor("se-resize"), e.CursorFor(geometry.NewPoint2D(200, 200), Pointer))
	assert.Equal(t, CursorMove, e.CursorFor(geometry.NewPoint2D(150, 150), Pointer))
	assert.Equal(t, CursorCrosshair, e.CursorFor(geometry.NewPoint2D(300, 300), Pointer))
}

func TestRenderCallbacks(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 400))
	var frames []Frame
	e.OnRender(func(f Frame) { frames = append(frames, f) })

	draw(t, e, 10, 10, 60, 60)
	require.Len(t, frames, 3)

	assert.Equal(t, Drawing, frames[1].State)
	assert.False(t, frames[1].ShowHandles)
	require.NotNil(t, frames[1].Rect)
	assert.Equal(t, geometry.NewRect(10, 10, 50, 50), *frames[1].Rect)

	last := frames[2]
	assert.Equal(t, Idle, last.State)
	assert.True(t, last.ShowHandles)
	assert.Len(t, last.Handles, 8)
	assert.Equal(t, 8.0, last.HandleSize)

	e.Reset()
	assert.Nil(t, frames[len(frames)-1].Rect)
	_, ok := e.Selection()
	assert.False(t, ok)
}

func TestCanvasResizeRescalesSelection(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 10, 10, 110, 110)
	e.SetCanvasSize(geometry.NewSize(800, 600))

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(20, 20, 200, 200), sel.Rect)
	assert.Equal(t, geometry.NewSize(800, 600), sel.Canvas)
	assert.Equal(t, geometry.NewSize(800, 600), e.CanvasSize())
}

func TestDragAfterCanvasResizeKeepsSourceMapping(t *testing.T) {
	source := geometry.NewSize(800, 600)
	sourceX := func(sel Selection) float64 {
		return sel.Rect.ScaleBy(geometry.FactorsBetween(sel.Canvas, source)).X
	}

	e := NewEditor(geometry.NewSize(400, 300))
	draw(t, e, 100, 100, 200, 200)
	sel, _ := e.Selection()
	require.InDelta(t, 200, sourceX(sel), 1e-9)

	e.SetCanvasSize(geometry.NewSize(800, 600))
	require.True(t, e.Begin(pt(300, 300)))
	require.Equal(t, Dragging, e.State())
	require.True(t, e.Update(pt(301, 300)))
	require.True(t, e.End(pt(301, 300)))

	sel, _ = e.Selection()
	assert.InDelta(t, 201, sourceX(sel), 1e-9)
	assert.Equal(t, geometry.NewSize(800, 600), sel.Canvas)
}

func TestCanvasResizeDuringDrawing(t *testing.T) {
	e := NewEditor(geometry.NewSize(400, 300))
	require.True(t, e.Begin(pt(50, 50)))
	e.SetCanvasSize(geometry.NewSize(200, 150))
	require.True(t, e.End(pt(75, 75)))

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(25, 25, 50, 50), sel.Rect)
	assert.Equal(t, geometry.NewSize(200, 150), sel.Canvas)
}
