package cropview

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/internal/region"
	"ingredient-scanner/pkg/geometry"
)

func TestViewDrawsSelection(t *testing.T) {
	test.NewApp()
	ed := region.NewEditor(geometry.Size{})
	v := NewView(ed)
	v.Resize(fyne.NewSize(200, 100))
	v.SetImage(whiteImage(400, 200))

	assert.Equal(t, geometry.NewSize(200, 100), ed.CanvasSize())

	v.MouseDown(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}, Button: desktop.MouseButtonPrimary})
	v.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 50)}, Dragged: fyne.NewDelta(50, 40)})
	v.DragEnd()

	sel, ok := ed.Selection()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(10, 10, 50, 40), sel.Rect)

	out := v.draw(200, 100).(*image.NRGBA)
	assert.Less(t, out.NRGBAAt(150, 80).R, uint8(255))
	assert.Equal(t, uint8(255), out.NRGBAAt(30, 30).R)
}

func TestViewCanvasCallback(t *testing.T) {
	test.NewApp()
	ed := region.NewEditor(geometry.Size{})
	v := NewView(ed)
	var got geometry.Size
	v.OnCanvasSize(func(s geometry.Size) { got = s })
	v.Resize(fyne.NewSize(300, 300))
	v.SetImage(whiteImage(100, 50))
	assert.Equal(t, geometry.NewSize(300, 150), got)
}

func TestDesktopCursor(t *testing.T) {
	assert.Equal(t, desktop.VResizeCursor, desktopCursor(region.HandleN.Cursor()))
	assert.Equal(t, desktop.HResizeCursor, desktopCursor(region.HandleW.Cursor()))
	assert.Equal(t, desktop.PointerCursor, desktopCursor(region.CursorMove))
	assert.Equal(t, desktop.DefaultCursor, desktopCursor(region.CursorDefault))
}
