package model

import "fmt"

// Point represents a 2D point in image pixel coordinates.
// The origin is the upper-left corner of the image and Y grows downward.
type Point struct {
	X, Y int
}

// BoundingBox represents an axis-aligned rectangle around recognized text.
// All corners are derived from the four stored fields.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewBoundingBox creates a bounding box from its origin and size
func NewBoundingBox(x, y, width, height int) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: width, Height: height}
}

// TopLeft returns the top-left corner
func (b BoundingBox) TopLeft() Point {
	return Point{X: b.X, Y: b.Y}
}

// TopRight returns the top-right corner
func (b BoundingBox) TopRight() Point {
	return Point{X: b.X + b.Width, Y: b.Y}
}

// BottomLeft returns the bottom-left corner
func (b BoundingBox) BottomLeft() Point {
	return Point{X: b.X, Y: b.Y + b.Height}
}

// BottomRight returns the bottom-right corner
func (b BoundingBox) BottomRight() Point {
	return Point{X: b.X + b.Width, Y: b.Y + b.Height}
}

// Center returns the center point, rounding half sizes down.
func (b BoundingBox) Center() Point {
	return Point{
		X: b.X + floorDiv(b.Width, 2),
		Y: b.Y + floorDiv(b.Height, 2),
	}
}

// Coordinates returns the four corners in the order
// top-left, top-right, bottom-left, bottom-right.
func (b BoundingBox) Coordinates() [4]Point {
	return [4]Point{b.TopLeft(), b.TopRight(), b.BottomLeft(), b.BottomRight()}
}

// Diagonal returns the box as (left, top, right, bottom), the rectangle
// form expected by image cropping APIs.
func (b BoundingBox) Diagonal() (x0, y0, x1, y1 int) {
	return b.X, b.Y, b.X + b.Width, b.Y + b.Height
}

// ContainsWithin reports whether inner lies entirely inside b.
// Shared edges count as inside.
func (b BoundingBox) ContainsWithin(inner BoundingBox) bool {
	return b.X <= inner.X &&
		b.Y <= inner.Y &&
		b.X+b.Width >= inner.X+inner.Width &&
		b.Y+b.Height >= inner.Y+inner.Height
}

// Union returns the smallest box enclosing both boxes
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	x0 := min(b.X, other.X)
	y0 := min(b.Y, other.Y)
	x1 := max(b.X+b.Width, other.X+other.Width)
	y1 := max(b.Y+b.Height, other.Y+other.Height)

	return BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Area returns the area of the bounding box
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// IsEmpty returns true if the bounding box has zero area
func (b BoundingBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// String formats the box as "(x, y), WxH".
func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d, %d), %dx%d", b.X, b.Y, b.Width, b.Height)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
