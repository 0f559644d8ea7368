package dom

import (
	"sort"
)

// Window is the browsing context a document is displayed in. It owns the
// viewport scroll position and sits at the end of every event path.
type Window struct {
	document *Document
	events   *EventTarget

	scrollX, scrollY        float64
	innerWidth, innerHeight float64
	expando                 map[string]any
}

// NewWindow creates a window displaying doc with a 1024x768 viewport.
func NewWindow(doc *Document) *Window {
	w := &Window{
		document:    doc,
		events:      NewEventTarget(),
		innerWidth:  1024,
		innerHeight: 768,
	}
	doc.documentData.window = w
	return w
}

// NodeName returns "#window"; the window is not a node but shares the
// naming used in diagnostics.
func (w *Window) NodeName() string {
	return "#window"
}

// Document returns the displayed document.
func (w *Window) Document() *Document {
	return w.document
}

// ScrollX returns the horizontal scroll offset.
func (w *Window) ScrollX() float64 {
	return w.scrollX
}

// ScrollY returns the vertical scroll offset.
func (w *Window) ScrollY() float64 {
	return w.scrollY
}

// InnerWidth returns the viewport width.
func (w *Window) InnerWidth() float64 {
	return w.innerWidth
}

// InnerHeight returns the viewport height.
func (w *Window) InnerHeight() float64 {
	return w.innerHeight
}

// SetViewport resizes the viewport and fires resize when the size changed.
func (w *Window) SetViewport(width, height float64) {
	if width == w.innerWidth && height == w.innerHeight {
		return
	}
	w.innerWidth, w.innerHeight = width, height
	w.DispatchEvent(NewEvent("resize", EventInit{}))
}

// ScrollTo scrolls the viewport to absolute document coordinates. Negative
// coordinates clamp to zero. A scroll event fires when the position changed.
func (w *Window) ScrollTo(x, y float64) {
	x, y = max(x, 0), max(y, 0)
	if x == w.scrollX && y == w.scrollY {
		return
	}
	w.scrollX, w.scrollY = x, y
	w.DispatchEvent(NewEvent("scroll", EventInit{}))
}

// Focus is a no-op; the window is always the focused browsing context.
func (w *Window) Focus() {}

// AddEventListener registers a listener on the window.
func (w *Window) AddEventListener(eventType string, listener Listener, opts ListenerOptions) ListenerID {
	return w.events.AddEventListener(eventType, listener, opts)
}

// RemoveEventListener unregisters a listener previously added to the window.
func (w *Window) RemoveEventListener(eventType string, id ListenerID) {
	w.events.RemoveEventListener(eventType, id)
}

// DispatchEvent dispatches ev at the window.
func (w *Window) DispatchEvent(ev *Event) bool {
	return dispatch(ev, w, []Target{w})
}

// SetProperty stores a named property on the window.
func (w *Window) SetProperty(name string, value any) error {
	if w.expando == nil {
		w.expando = make(map[string]any)
	}
	w.expando[name] = value
	return nil
}

// Property returns a property previously stored with SetProperty.
func (w *Window) Property(name string) (any, bool) {
	v, ok := w.expando[name]
	return v, ok
}

// PropertyNames lists the enumerable property names of the window.
func (w *Window) PropertyNames() []string {
	names := []string{"document", "innerHeight", "innerWidth", "scrollX", "scrollY"}
	for k := range w.expando {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
