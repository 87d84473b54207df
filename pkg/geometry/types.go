// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Space names the coordinate system a rectangle is expressed in.
type Space int

const (
	// Display is the on-screen canvas coordinate system.
	Display Space = iota
	// Source is the native pixel grid of the decoded image.
	Source
)

func (s Space) String() string {
	if s == Source {
		return "source"
	}
	return "display"
}

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Rect represents a rectangle with floating-point coordinates.
// Width and Height are never negative for rectangles produced by this package.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromPoints returns the normalized rectangle spanned by two corners,
// whichever direction the second corner lies in.
func RectFromPoints(a, b Point2D) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Contains returns true if the point is inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate returns the rectangle moved by the given delta.
func (r Rect) Translate(d Point2D) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// ScaleBy multiplies position and size by independent x and y factors.
func (r Rect) ScaleBy(f ScaleFactors) Rect {
	return Rect{X: r.X * f.X, Y: r.Y * f.Y, Width: r.Width * f.X, Height: r.Height * f.Y}
}

// Round converts to integer coordinates. Position and size are rounded to
// the nearest integer independently.
func (r Rect) Round() RectInt {
	return RectInt{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToFloat converts to Rect.
func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// ToImage converts to an image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// SizeOf returns the size of an image.Rectangle.
func SizeOf(b image.Rectangle) Size {
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// ScaleFactors holds independent horizontal and vertical scale ratios.
type ScaleFactors struct {
	X float64 `json:"sx"`
	Y float64 `json:"sy"`
}

// FactorsBetween returns the ratios that map coordinates in from onto to.
// Either factor is 1 when the corresponding from dimension is zero.
func FactorsBetween(from, to Size) ScaleFactors {
	f := ScaleFactors{X: 1, Y: 1}
	if from.Width > 0 {
		f.X = to.Width / from.Width
	}
	if from.Height > 0 {
		f.Y = to.Height / from.Height
	}
	return f
}

// Inverse returns the reciprocal factors.
func (f ScaleFactors) Inverse() ScaleFactors {
	inv := ScaleFactors{X: 1, Y: 1}
	if f.X != 0 {
		inv.X = 1 / f.X
	}
	if f.Y != 0 {
		inv.Y = 1 / f.Y
	}
	return inv
}
