package canvas

import (
	"github.com/matzehuels/stripview/pkg/errors"
)

// Point is a 2D coordinate in pixels.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size,
// matching what a display surface reports as a bounding client rect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Viewport is the visible screen area in pixels.
//
// A viewport is a sample, not a cache: surfaces may resize at any time, so
// callers read a fresh one through a [ViewportSource] whenever geometry is
// computed.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate rejects viewports that would make the geometry divide by zero
// or produce non-positive scales.
func (v Viewport) Validate() error {
	if err := errors.ValidateDimension(errors.ErrCodeInvalidViewport, "viewport width", v.Width); err != nil {
		return err
	}
	return errors.ValidateDimension(errors.ErrCodeInvalidViewport, "viewport height", v.Height)
}

// ViewportSource reports the current size of a display surface.
type ViewportSource interface {
	Viewport() Viewport
}

// ViewportFunc adapts a function to [ViewportSource].
type ViewportFunc func() Viewport

// Viewport calls f.
func (f ViewportFunc) Viewport() Viewport { return f() }

// FixedViewport is a [ViewportSource] that always reports the same size.
type FixedViewport Viewport

// Viewport returns v.
func (v FixedViewport) Viewport() Viewport { return Viewport(v) }
