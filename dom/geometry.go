package dom

import "math"

// ElementGeometry holds computed layout geometry for an element.
// It is set by the layout engine, or directly by tests and embedders.
type ElementGeometry struct {
	// Border box relative to the document origin
	X, Y, Width, Height float64

	OffsetTop, OffsetLeft     float64
	OffsetWidth, OffsetHeight float64
	OffsetParent              *Element

	ScrollTop, ScrollLeft     float64
	ScrollWidth, ScrollHeight float64
	ClientTop, ClientLeft     float64
	ClientWidth, ClientHeight float64
}

// Geometry returns the element's layout geometry, or nil before layout.
func (e *Element) Geometry() *ElementGeometry {
	return e.elementData.geometry
}

// SetGeometry sets the element's layout geometry. Scroll offsets already
// applied to the element survive a relayout.
func (e *Element) SetGeometry(g *ElementGeometry) {
	if old := e.elementData.geometry; old != nil && g != nil {
		g.ScrollTop, g.ScrollLeft = old.ScrollTop, old.ScrollLeft
	}
	e.elementData.geometry = g
}

func (e *Element) geom() ElementGeometry {
	if g := e.elementData.geometry; g != nil {
		return *g
	}
	return ElementGeometry{}
}

// OffsetTop returns the distance from the top of the offset parent.
func (e *Element) OffsetTop() float64 { return e.geom().OffsetTop }

// OffsetLeft returns the distance from the left of the offset parent.
func (e *Element) OffsetLeft() float64 { return e.geom().OffsetLeft }

// OffsetWidth returns the layout width including padding and border.
func (e *Element) OffsetWidth() float64 { return e.geom().OffsetWidth }

// OffsetHeight returns the layout height including padding and border.
func (e *Element) OffsetHeight() float64 { return e.geom().OffsetHeight }

// OffsetParent returns the element offsets are measured from, or nil.
func (e *Element) OffsetParent() *Element { return e.geom().OffsetParent }

// ClientWidth returns the inner width (content + padding) without border.
func (e *Element) ClientWidth() float64 { return e.geom().ClientWidth }

// ClientHeight returns the inner height (content + padding) without border.
func (e *Element) ClientHeight() float64 { return e.geom().ClientHeight }

// ScrollWidth returns the total width of the scrollable content.
func (e *Element) ScrollWidth() float64 { return e.geom().ScrollWidth }

// ScrollHeight returns the total height of the scrollable content.
func (e *Element) ScrollHeight() float64 { return e.geom().ScrollHeight }

// ScrollTop returns the scroll offset from the top.
func (e *Element) ScrollTop() float64 { return e.geom().ScrollTop }

// ScrollLeft returns the scroll offset from the left.
func (e *Element) ScrollLeft() float64 { return e.geom().ScrollLeft }

// SetScrollTop sets the vertical scroll offset. NaN and negative values
// clamp to zero.
func (e *Element) SetScrollTop(value float64) {
	e.scrollGeometry().ScrollTop = clampScroll(value)
}

// SetScrollLeft sets the horizontal scroll offset.
func (e *Element) SetScrollLeft(value float64) {
	e.scrollGeometry().ScrollLeft = clampScroll(value)
}

func (e *Element) scrollGeometry() *ElementGeometry {
	if e.elementData.geometry == nil {
		e.elementData.geometry = &ElementGeometry{}
	}
	return e.elementData.geometry
}

func clampScroll(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
