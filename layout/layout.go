// Package layout computes block-box geometry for the dom tree and writes
// it back to each element as dom.ElementGeometry.
package layout

import (
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/dom"
)

// Dimensions represents the dimensions of a layout box.
type Dimensions struct {
	Content Rect
	Padding EdgeSizes
	Border  EdgeSizes
	Margin  EdgeSizes
}

// Rect represents a rectangular area.
type Rect struct {
	X, Y, Width, Height float64
}

// EdgeSizes represents the sizes of edges (top, right, bottom, left).
type EdgeSizes struct {
	Top, Right, Bottom, Left float64
}

// PaddingBox returns the area covered by content and padding.
func (d *Dimensions) PaddingBox() Rect {
	return d.Content.ExpandedBy(d.Padding)
}

// BorderBox returns the area covered by content, padding, and border.
func (d *Dimensions) BorderBox() Rect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// MarginBox returns the area covered by content, padding, border, and margin.
func (d *Dimensions) MarginBox() Rect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// ExpandedBy returns a rectangle expanded by the given edge sizes.
func (r Rect) ExpandedBy(edge EdgeSizes) Rect {
	return Rect{
		X:      r.X - edge.Left,
		Y:      r.Y - edge.Top,
		Width:  r.Width + edge.Left + edge.Right,
		Height: r.Height + edge.Top + edge.Bottom,
	}
}

// PositionType represents the CSS position property.
type PositionType int

const (
	PositionStatic PositionType = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// LayoutBox represents an element's box in the layout tree.
type LayoutBox struct {
	Dimensions Dimensions
	Position   PositionType
	Element    *dom.Element
	Children   []*LayoutBox
}

// LayoutContext tracks the viewport and the stack of containing blocks
// during a layout pass.
type LayoutContext struct {
	ViewportWidth  float64
	ViewportHeight float64
	LineHeight     float64

	containingBlocks []*Dimensions
}

// NewLayoutContext creates a context whose initial containing block is the
// viewport.
func NewLayoutContext(viewportWidth, viewportHeight float64) *LayoutContext {
	return &LayoutContext{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		LineHeight:     DefaultLineHeight,
		containingBlocks: []*Dimensions{{
			Content: Rect{Width: viewportWidth, Height: viewportHeight},
		}},
	}
}

// CurrentContainingBlock returns the innermost containing block.
func (ctx *LayoutContext) CurrentContainingBlock() *Dimensions {
	return ctx.containingBlocks[len(ctx.containingBlocks)-1]
}

// PushContainingBlock makes dims the containing block for nested boxes.
func (ctx *LayoutContext) PushContainingBlock(dims *Dimensions) {
	ctx.containingBlocks = append(ctx.containingBlocks, dims)
}

// PopContainingBlock restores the previous containing block. The initial
// containing block is never popped.
func (ctx *LayoutContext) PopContainingBlock() {
	if len(ctx.containingBlocks) > 1 {
		ctx.containingBlocks = ctx.containingBlocks[:len(ctx.containingBlocks)-1]
	}
}

// DefaultLineHeight is the height contributed by each line of text.
const DefaultLineHeight = 16

// Engine lays out documents against a window's viewport.
type Engine struct {
	logger     *zap.Logger
	lineHeight float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.Named("layout")
	}
}

// WithLineHeight overrides the height of a text line.
func WithLineHeight(h float64) Option {
	return func(e *Engine) {
		e.lineHeight = h
	}
}

// NewEngine creates a layout engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:     zap.NewNop(),
		lineHeight: DefaultLineHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reflow lays out the whole document and updates the geometry of every
// element. Elements that are not rendered get zero geometry and no offset
// parent. It returns the root layout box, or nil for an empty document.
func (e *Engine) Reflow(doc *dom.Document) *LayoutBox {
	root := doc.DocumentElement()
	if root == nil {
		return nil
	}

	width, height := 1024.0, 768.0
	if w := doc.DefaultView(); w != nil {
		width, height = w.InnerWidth(), w.InnerHeight()
	}
	ctx := NewLayoutContext(width, height)
	ctx.LineHeight = e.lineHeight

	box, _ := e.layoutBlock(ctx, root, 0, nil)
	e.assignOffsets(box, nil)

	e.logger.Debug("reflow complete",
		zap.Float64("viewportWidth", width),
		zap.Float64("documentHeight", box.Dimensions.MarginBox().Height))
	return box
}

// layoutBlock lays out el with its top margin edge at cursorY inside the
// current containing block and returns the box and the height it occupies
// in normal flow.
func (e *Engine) layoutBlock(ctx *LayoutContext, el *dom.Element, cursorY float64, positioned *LayoutBox) (*LayoutBox, float64) {
	style := el.Style()
	box := &LayoutBox{Element: el, Position: positionOf(style)}
	d := &box.Dimensions
	d.Margin = edges(style, "margin", "")
	d.Padding = edges(style, "padding", "")
	d.Border = edges(style, "border", "-width")

	cb := ctx.CurrentContainingBlock()
	if box.Position == PositionAbsolute || box.Position == PositionFixed {
		origin := ctx.containingBlocks[0].PaddingBox()
		if box.Position == PositionAbsolute && positioned != nil {
			origin = positioned.Dimensions.PaddingBox()
		}
		top, _ := length(style.GetPropertyValue("top"))
		left, _ := length(style.GetPropertyValue("left"))
		cursorY = origin.Y + top
		d.Content.X = origin.X + left + d.Margin.Left + d.Border.Left + d.Padding.Left
	} else {
		d.Content.X = cb.Content.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	}
	d.Content.Y = cursorY + d.Margin.Top + d.Border.Top + d.Padding.Top

	if w, ok := length(style.GetPropertyValue("width")); ok {
		d.Content.Width = w
	} else {
		d.Content.Width = max(cb.Content.Width-d.Margin.Left-d.Margin.Right-
			d.Border.Left-d.Border.Right-d.Padding.Left-d.Padding.Right, 0)
	}

	childPositioned := positioned
	if box.Position != PositionStatic {
		childPositioned = box
	}

	ctx.PushContainingBlock(d)
	childY := d.Content.Y
	pendingText := false
	for c := el.AsNode().FirstChild(); c != nil; c = c.NextSibling() {
		switch c.NodeType() {
		case dom.TextNode:
			if !isBlank(c.NodeValue()) {
				pendingText = true
			}
		case dom.ElementNode:
			child := (*dom.Element)(c)
			if !isRendered(child) {
				clearGeometry(child)
				continue
			}
			if pendingText {
				childY += ctx.LineHeight
				pendingText = false
			}
			childBox, used := e.layoutBlock(ctx, child, childY, childPositioned)
			box.Children = append(box.Children, childBox)
			childY += used
		}
	}
	if pendingText {
		childY += ctx.LineHeight
	}
	ctx.PopContainingBlock()

	if h, ok := length(style.GetPropertyValue("height")); ok {
		d.Content.Height = h
	} else {
		d.Content.Height = childY - d.Content.Y
	}

	if box.Position == PositionRelative {
		dx, _ := length(style.GetPropertyValue("left"))
		dy, _ := length(style.GetPropertyValue("top"))
		shiftBox(box, dx, dy)
	}

	if box.Position == PositionAbsolute || box.Position == PositionFixed {
		return box, 0
	}
	return box, d.MarginBox().Height
}

// assignOffsets writes geometry for box and its descendants. The offset
// parent is the nearest positioned ancestor, else <body>; the root and
// body themselves have none.
func (e *Engine) assignOffsets(box *LayoutBox, offsetParent *LayoutBox) {
	d := &box.Dimensions
	border := d.BorderBox()
	padding := d.PaddingBox()

	g := &dom.ElementGeometry{
		X:            border.X,
		Y:            border.Y,
		Width:        border.Width,
		Height:       border.Height,
		OffsetTop:    border.Y,
		OffsetLeft:   border.X,
		OffsetWidth:  border.Width,
		OffsetHeight: border.Height,
		ClientTop:    d.Border.Top,
		ClientLeft:   d.Border.Left,
		ClientWidth:  padding.Width,
		ClientHeight: padding.Height,
		ScrollWidth:  padding.Width,
		ScrollHeight: max(padding.Height, contentExtent(box)-padding.Y),
	}
	if offsetParent != nil {
		opPadding := offsetParent.Dimensions.PaddingBox()
		g.OffsetParent = offsetParent.Element
		g.OffsetTop = border.Y - opPadding.Y
		g.OffsetLeft = border.X - opPadding.X
	}
	box.Element.SetGeometry(g)

	next := offsetParent
	switch {
	case box.Element.LocalName() == "body", box.Position != PositionStatic:
		next = box
	}
	for _, child := range box.Children {
		e.assignOffsets(child, next)
	}
}

// contentExtent returns the lowest margin edge among box's descendants.
func contentExtent(box *LayoutBox) float64 {
	bottom := box.Dimensions.PaddingBox().Y
	for _, child := range box.Children {
		mb := child.Dimensions.MarginBox()
		bottom = max(bottom, mb.Y+mb.Height, contentExtent(child))
	}
	return bottom
}

func shiftBox(box *LayoutBox, dx, dy float64) {
	box.Dimensions.Content.X += dx
	box.Dimensions.Content.Y += dy
	for _, child := range box.Children {
		shiftBox(child, dx, dy)
	}
}

// clearGeometry zeroes the geometry of an unrendered subtree.
func clearGeometry(el *dom.Element) {
	el.SetGeometry(&dom.ElementGeometry{})
	for _, child := range el.Children() {
		clearGeometry(child)
	}
}
