package view

// Projection describes how the main viewport maps into the minimap: the
// uniform down-scale applied to content space and the indicator rect showing
// which slice of the content the main container currently displays.
type Projection struct {
	// Scale is min(minimapWidth/contentWidth, minimapHeight/contentHeight).
	Scale float64

	// Indicator is the viewport-indicator rect in minimap coordinates.
	Indicator Rect

	// ContentRect is the rendered (scaled) content rect inside the minimap's
	// bounding box. Pointer input outside it is ignored.
	ContentRect Rect
}

// Project derives the minimap projection from the main viewport state and
// the minimap's own rendered size. It reports false when either the content
// or the minimap has no measurable size yet.
func Project(s State, minimap Size) (Projection, bool) {
	if !s.Content.positive() || !minimap.positive() || s.Scale <= 0 {
		return Projection{}, false
	}

	scale := minf(minimap.Width/s.Content.Width, minimap.Height/s.Content.Height)

	// The content point at the main container's origin is -pan/scale; the
	// indicator is that point and the container extent carried into minimap
	// space.
	ind := Rect{
		X:      -s.Pan.X / s.Scale * scale,
		Y:      -s.Pan.Y / s.Scale * scale,
		Width:  s.Container.Width / s.Scale * scale,
		Height: s.Container.Height / s.Scale * scale,
	}
	if !finite(ind.X, ind.Y, ind.Width, ind.Height, scale) {
		return Projection{}, false
	}

	return Projection{
		Scale:     scale,
		Indicator: ind,
		ContentRect: Rect{
			Width:  s.Content.Width * scale,
			Height: s.Content.Height * scale,
		},
	}, true
}

// Inverse maps a pointer position inside the minimap back to a normalized
// [0,1]x[0,1] content target, clamped to the content bounds. A pointer that
// falls outside the rendered content rect yields ok false: no action, not
// an error.
func Inverse(p Point, s State, minimap Size) (Point, bool) {
	proj, ok := Project(s, minimap)
	if !ok {
		return Point{}, false
	}
	if !proj.ContentRect.Contains(p) {
		return Point{}, false
	}
	return Point{
		X: clamp(p.X/proj.ContentRect.Width, 0, 1),
		Y: clamp(p.Y/proj.ContentRect.Height, 0, 1),
	}, true
}
