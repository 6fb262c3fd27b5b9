package view

// Zoom and fit constants. The scale clamp keeps wheel and pinch input from
// zooming the content into uselessness in either direction.
const (
	MinScale = 0.2
	MaxScale = 3.0

	// fitPaddingFactor leaves breathing room around fitted content.
	fitPaddingFactor = 0.92

	// fitTopPadding anchors fitted content this many screen units below the
	// container's top edge.
	fitTopPadding = 16.0
)

// State is a read-only snapshot of the viewport, published to consumers
// such as the minimap projector.
type State struct {
	Pan       Point
	Scale     float64
	Container Size
	Content   Size
}

// Viewport owns the pan offset and zoom scale and maps between content and
// screen space.
//
// Pan is the screen-space offset of the content origin; a content point c
// appears on screen at c*Scale + Pan. Content size is measured externally
// (the tree is laid out elsewhere and its bounding box read back) and set
// via SetContentSize.
//
// Every transition validates its result: a transform that would produce a
// non-finite pan or scale is discarded and the previous state retained.
// That situation stems from measuring not-yet-rendered content, so it is
// self-corrected silently instead of surfaced as an error.
//
// A Viewport is owned by a single event loop; it is not safe for concurrent
// use.
type Viewport struct {
	pan       Point
	scale     float64
	container Size
	content   Size
}

// NewViewport returns a viewport at pan (0,0) and scale 1.
func NewViewport() *Viewport {
	return &Viewport{scale: 1}
}

// State returns the current snapshot.
func (v *Viewport) State() State {
	return State{Pan: v.pan, Scale: v.scale, Container: v.container, Content: v.content}
}

// Pan returns the current pan offset.
func (v *Viewport) Pan() Point { return v.pan }

// Scale returns the current zoom scale.
func (v *Viewport) Scale() float64 { return v.scale }

// SetContainerSize records the size of the on-screen container.
func (v *Viewport) SetContainerSize(s Size) { v.container = s }

// SetContentSize records the measured bounding box of the laid-out content.
func (v *Viewport) SetContentSize(s Size) { v.content = s }

// SetPan replaces the pan offset directly, discarding non-finite input.
func (v *Viewport) SetPan(p Point) bool {
	return v.commit(p, v.scale)
}

// ScreenToContent inverts the current transform for a screen point.
func (v *Viewport) ScreenToContent(p Point) Point {
	return Point{X: (p.X - v.pan.X) / v.scale, Y: (p.Y - v.pan.Y) / v.scale}
}

// ContentToScreen applies the current transform to a content point.
func (v *Viewport) ContentToScreen(p Point) Point {
	return Point{X: p.X*v.scale + v.pan.X, Y: p.Y*v.scale + v.pan.Y}
}

// ContentRectToScreen maps a content-space rect into screen space.
func (v *Viewport) ContentRectToScreen(r Rect) Rect {
	tl := v.ContentToScreen(Point{X: r.X, Y: r.Y})
	return Rect{X: tl.X, Y: tl.Y, Width: r.Width * v.scale, Height: r.Height * v.scale}
}

// FitToTop fits the content height into the container, centers it
// horizontally, and anchors it near the top edge. The fit scale is capped
// at 1 so small trees are never magnified.
//
// FitToTop is idempotent and safe to call before the container or content
// has been measured: it reports false and leaves the state untouched
// instead of producing NaN, and the caller retries after the next measure.
func (v *Viewport) FitToTop() bool {
	if !v.container.positive() || !v.content.positive() {
		return false
	}
	scale := clamp(minf(1, v.container.Height*fitPaddingFactor/v.content.Height), MinScale, MaxScale)
	pan := Point{
		X: (v.container.Width - v.content.Width*scale) / 2,
		Y: fitTopPadding,
	}
	return v.commit(pan, scale)
}

// FitOverview fits both content dimensions into the container, centered on
// both axes, capped at scale 1. Like FitToTop it reports false before
// measurement instead of corrupting state.
func (v *Viewport) FitOverview() bool {
	if !v.container.positive() || !v.content.positive() {
		return false
	}
	scale := minf(v.container.Width/v.content.Width, v.container.Height/v.content.Height)
	scale = clamp(minf(1, scale*fitPaddingFactor), MinScale, MaxScale)
	pan := Point{
		X: (v.container.Width - v.content.Width*scale) / 2,
		Y: (v.container.Height - v.content.Height*scale) / 2,
	}
	return v.commit(pan, scale)
}

// CenterOnScreenRect centers the viewport on an element whose current
// screen-space bounding box is given, at a fixed target scale of 1. The
// element's content-space position is recovered by inverting the current
// transform. panelWidth shifts the effective container center left to keep
// the element clear of a side panel occupying that much of the screen.
//
// It reports false when the box or container is not yet measurable; the
// caller retries on the next frame rather than silently dropping the
// request.
func (v *Viewport) CenterOnScreenRect(box Rect, panelWidth float64) bool {
	if !v.container.positive() || box.Width <= 0 || box.Height <= 0 {
		return false
	}
	center := v.ScreenToContent(box.Center())
	return v.centerOnContentPoint(center, 1.0, panelWidth)
}

// CenterOnContentRect centers on an element given directly in content space,
// at target scale 1.
func (v *Viewport) CenterOnContentRect(box Rect, panelWidth float64) bool {
	if !v.container.positive() || box.Width <= 0 || box.Height <= 0 {
		return false
	}
	return v.centerOnContentPoint(box.Center(), 1.0, panelWidth)
}

// CenterOnNormalized pans so the normalized content point ([0,1] on each
// axis, as produced by the minimap inverse mapping) lands at the container
// center. The current scale is kept.
func (v *Viewport) CenterOnNormalized(norm Point) bool {
	if !v.container.positive() || !v.content.positive() {
		return false
	}
	target := Point{X: norm.X * v.content.Width, Y: norm.Y * v.content.Height}
	return v.centerOnContentPoint(target, v.scale, 0)
}

func (v *Viewport) centerOnContentPoint(c Point, scale, panelWidth float64) bool {
	pan := Point{
		X: (v.container.Width-panelWidth)/2 - c.X*scale,
		Y: v.container.Height/2 - c.Y*scale,
	}
	return v.commit(pan, scale)
}

// ZoomAt applies an anchor-preserving zoom: the content point currently
// under the pointer stays under the same screen point after the scale
// change. The same math serves discrete step zoom, wheel input, and pinch
// frames.
func (v *Viewport) ZoomAt(pointer Point, factor float64) bool {
	if factor <= 0 {
		return false
	}
	anchor := v.ScreenToContent(pointer)
	scale := clamp(v.scale*factor, MinScale, MaxScale)
	pan := Point{
		X: pointer.X - anchor.X*scale,
		Y: pointer.Y - anchor.Y*scale,
	}
	return v.commit(pan, scale)
}

// ZoomStep zooms by factor anchored at the container center, for the +/-
// buttons.
func (v *Viewport) ZoomStep(factor float64) bool {
	center := Point{X: v.container.Width / 2, Y: v.container.Height / 2}
	return v.ZoomAt(center, factor)
}

// PanBy translates the viewport. Panning is intentionally unclamped: the
// user can drag past the content edges and re-fit at any time.
func (v *Viewport) PanBy(dx, dy float64) bool {
	return v.commit(Point{X: v.pan.X + dx, Y: v.pan.Y + dy}, v.scale)
}

// commit installs the new transform unless it is non-finite, in which case
// the previous state is retained.
func (v *Viewport) commit(pan Point, scale float64) bool {
	if !finite(pan.X, pan.Y, scale) || scale <= 0 {
		return false
	}
	v.pan = pan
	v.scale = scale
	return true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
