// Package layout computes content-space boxes for a family forest.
//
// The viewport engine treats content as externally laid out and measured;
// this package is that external layer. Each person gets an axis-aligned box
// in content units, spouses sit directly beside their partner, children are
// centered under the couple, and sibling trees in the forest are placed
// side by side. The overall bounding box feeds the viewport's measured
// content size.
package layout

import (
	"github.com/kindredtree/kindred/pkg/core/tree"
	"github.com/kindredtree/kindred/pkg/core/view"
)

// Card and gap dimensions, in content units.
const (
	CardWidth  = 28.0
	CardHeight = 6.0

	// SpouseGap separates a person from their spouse card.
	SpouseGap = 2.0
	// SiblingGap separates adjacent child subtrees.
	SiblingGap = 6.0
	// TreeGap separates adjacent root trees in the forest.
	TreeGap = 12.0
	// RowGap separates generations vertically.
	RowGap = 4.0
)

// Layout is the computed box placement for one forest.
type Layout struct {
	boxes map[string]view.Rect
	order []string
	size  view.Size
}

// Box returns the content-space box for the person with the given id.
func (l *Layout) Box(id string) (view.Rect, bool) {
	r, ok := l.boxes[id]
	return r, ok
}

// IDs returns all placed ids in placement order.
func (l *Layout) IDs() []string { return l.order }

// Bounds returns the bounding box of all placed cards: the measured content
// size the viewport reads back.
func (l *Layout) Bounds() view.Size { return l.size }

// Compute lays out the given roots. It accepts any forest slice — the full
// root list or a focus view's display roots — so focus mode reuses the same
// geometry.
func Compute(roots []*tree.Person) *Layout {
	l := &Layout{boxes: make(map[string]view.Rect)}
	placed := make(map[string]bool)

	x := 0.0
	for _, root := range roots {
		w := l.place(root, x, 0, placed)
		if w > 0 {
			x += w + TreeGap
		}
	}

	for _, r := range l.boxes {
		if r.X+r.Width > l.size.Width {
			l.size.Width = r.X + r.Width
		}
		if r.Y+r.Height > l.size.Height {
			l.size.Height = r.Y + r.Height
		}
	}
	return l
}

// place lays out p's subtree with its left edge at x and its generation row
// at depth y, returning the subtree's width. A person already placed through
// another branch (cousin intermarriage) is skipped; the first placement
// wins.
func (l *Layout) place(p *tree.Person, x, y float64, placed map[string]bool) float64 {
	if placed[p.ID] {
		return 0
	}
	placed[p.ID] = true

	unit := CardWidth
	withSpouse := p.Spouse != nil && !placed[p.Spouse.ID]
	if withSpouse {
		unit += SpouseGap + CardWidth
	}

	children := p.Children
	if withSpouse {
		// Children recorded only under the spouse (one-sided rows) still
		// belong to the couple's block; duplicates dedupe via placed.
		placed[p.Spouse.ID] = true
		children = append(append([]*tree.Person{}, children...), p.Spouse.Children...)
	}

	childX := x
	childrenWidth := 0.0
	for _, c := range children {
		w := l.place(c, childX, y+CardHeight+RowGap, placed)
		if w == 0 {
			continue
		}
		childX += w + SiblingGap
		childrenWidth += w + SiblingGap
	}
	if childrenWidth > 0 {
		childrenWidth -= SiblingGap
	}

	width := unit
	if childrenWidth > width {
		width = childrenWidth
	}

	// Couple centered over the children block.
	coupleX := x + (width-unit)/2
	l.set(p.ID, view.Rect{X: coupleX, Y: y, Width: CardWidth, Height: CardHeight})
	if withSpouse {
		l.set(p.Spouse.ID, view.Rect{
			X: coupleX + CardWidth + SpouseGap, Y: y,
			Width: CardWidth, Height: CardHeight,
		})
	}

	return width
}

func (l *Layout) set(id string, r view.Rect) {
	l.boxes[id] = r
	l.order = append(l.order, id)
}
