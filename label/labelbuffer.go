// Package label implements a collision-rejecting placement index for map
// labels and point markers. It is a thin wrapper over an R-tree of
// axis-aligned rectangles in terminal-cell space: once a rectangle is
// accepted, nothing that overlaps it is accepted later in the same frame.
package label

import (
	"github.com/dhconnelly/rtreego"
	"github.com/rivo/uniseg"
)

const (
	minChildren = 5
	maxChildren = 10
)

// Placement is a label or marker that was successfully placed: the text (or
// empty, for a bare marker), the feature it came from, and the cell-space
// rectangle it occupies.
type Placement struct {
	Text    string
	Feature any
	rect    *rtreego.Rect
}

// Bounds satisfies rtreego.Spatial.
func (p *Placement) Bounds() *rtreego.Rect { return p.rect }

// Buffer is a cleared-per-frame R-tree of placed label/marker rectangles.
type Buffer struct {
	tree *rtreego.Rtree
}

// New builds an empty Buffer.
func New() *Buffer {
	return &Buffer{tree: rtreego.NewTree(2, minChildren, maxChildren)}
}

// toCell converts a canvas-pixel coordinate to terminal-cell space:
// X = floor(x/2), Y = floor(y/4).
func toCell(x, y int) (cx, cy int) {
	return floorDiv(x, 2), floorDiv(y, 4)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func cellRect(cx, cy, textWidth, margin int) (*rtreego.Rect, error) {
	lowX := float64(cx - margin)
	lowY := float64(cy - margin/2)
	lenX := float64(2*margin + textWidth)
	lenY := float64(margin)
	if lenX < 1 {
		lenX = 1
	}
	if lenY < 1 {
		lenY = 1
	}
	return rtreego.NewRect(rtreego.Point{lowX, lowY}, []float64{lenX, lenY})
}

// WriteIfPossible computes the cell-space rectangle
// [X-margin, X+margin+width(text)] x [Y-margin/2, Y+margin/2] for a label
// anchored at canvas-pixel (x, y). If it collides with any rectangle already
// in the buffer, it returns false and the buffer is unchanged; otherwise the
// rectangle is inserted and it returns true.
func (b *Buffer) WriteIfPossible(text string, x, y int, feature any, margin int) bool {
	cx, cy := toCell(x, y)
	rect, err := cellRect(cx, cy, uniseg.StringWidth(text), margin)
	if err != nil {
		return false
	}

	if len(b.tree.SearchIntersect(rect)) > 0 {
		return false
	}

	b.tree.Insert(&Placement{Text: text, Feature: feature, rect: rect})
	return true
}

// FeaturesAt returns every placed feature whose rectangle covers cell-space
// point (X, Y).
func (b *Buffer) FeaturesAt(x, y int) []any {
	rect, err := rtreego.NewRect(rtreego.Point{float64(x), float64(y)}, []float64{1, 1})
	if err != nil {
		return nil
	}

	hits := b.tree.SearchIntersect(rect)
	features := make([]any, 0, len(hits))
	for _, h := range hits {
		if p, ok := h.(*Placement); ok {
			features = append(features, p.Feature)
		}
	}
	return features
}

// Clear discards every placed rectangle; called at the start of each frame.
func (b *Buffer) Clear() {
	b.tree = rtreego.NewTree(2, minChildren, maxChildren)
}
