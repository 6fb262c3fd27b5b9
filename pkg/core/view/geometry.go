// Package view implements the viewport, minimap, and gesture math for the
// interactive forest surface.
//
// The package maintains the mapping between content space (the untransformed
// coordinate system of the laid-out tree) and screen space (the panned,
// scaled coordinates the user sees), plus the scaled-down minimap projection
// of the same content box. All state lives in explicit owners with pure
// transition methods; the host event loop decides when to apply them.
package view

import "math"

// Point is a 2D coordinate, in content or screen units depending on context.
type Point struct {
	X float64
	Y float64
}

// Size is a 2D extent.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned box.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether the two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// positive reports whether the size has usable (measured) dimensions.
func (s Size) positive() bool {
	return s.Width > 0 && s.Height > 0
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
