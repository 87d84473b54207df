package region

import "ingredient-scanner/pkg/geometry"

// Handle identifies one of the eight resize grips on the selection border.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	default:
		return "none"
	}
}

// Cursor returns the resize cursor name for the handle.
func (h Handle) Cursor() Cursor {
	if h == HandleNone {
		return CursorDefault
	}
	return Cursor(h.String() + "-resize")
}

// movesLeft etc. report which edges a handle drags.
func (h Handle) movesLeft() bool   { return h == HandleNW || h == HandleSW || h == HandleW }
func (h Handle) movesRight() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) movesTop() bool    { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) movesBottom() bool { return h == HandleSE || h == HandleS || h == HandleSW }

// HandlePoint is a handle and its center on the canvas.
type HandlePoint struct {
	Handle Handle           `json:"handle"`
	Center geometry.Point2D `json:"center"`
}

// HandleCenters returns the grip centers of r in hit-test order. The first
// hit wins when grips overlap on a very small selection.
func HandleCenters(r geometry.Rect) []HandlePoint {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	return []HandlePoint{
		{HandleNW, geometry.NewPoint2D(r.X, r.Y)},
		{HandleN, geometry.NewPoint2D(cx, r.Y)},
		{HandleNE, geometry.NewPoint2D(r.Right(), r.Y)},
		{HandleE, geometry.NewPoint2D(r.Right(), cy)},
		{HandleSE, geometry.NewPoint2D(r.Right(), r.Bottom())},
		{HandleS, geometry.NewPoint2D(cx, r.Bottom())},
		{HandleSW, geometry.NewPoint2D(r.X, r.Bottom())},
		{HandleW, geometry.NewPoint2D(r.X, cy)},
	}
}

// Cursor is a pointer affordance name, using CSS cursor vocabulary.
type Cursor string

const (
	CursorDefault   Cursor = "default"
	CursorCrosshair Cursor = "crosshair"
	CursorMove      Cursor = "move"
)

// MarshalText encodes the handle by its short name.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}
