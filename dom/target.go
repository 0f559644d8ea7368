package dom

// Target is anything a selector can resolve to: an *Element, the *Document,
// or the *Window.
type Target interface {
	NodeName() string
}

// Listenable targets accept event listeners.
type Listenable interface {
	Target
	AddEventListener(eventType string, listener Listener, opts ListenerOptions) ListenerID
	RemoveEventListener(eventType string, id ListenerID)
	DispatchEvent(ev *Event) bool
}

// Styled targets carry an inline style declaration.
type Styled interface {
	Target
	Style() *CSSStyleDeclaration
}

// DatasetHolder targets expose data-* attributes.
type DatasetHolder interface {
	Target
	Dataset() *DOMStringMap
}

// Activatable targets can be clicked.
type Activatable interface {
	Target
	Click()
}

// Focusable targets can receive focus.
type Focusable interface {
	Target
	Focus()
}

// PropertySetter targets accept assignment of named properties.
type PropertySetter interface {
	Target
	SetProperty(name string, value any) error
}

// PropertyEnumerator targets can list their enumerable property names.
type PropertyEnumerator interface {
	PropertyNames() []string
}

var (
	_ Listenable     = (*Element)(nil)
	_ Listenable     = (*Document)(nil)
	_ Listenable     = (*Window)(nil)
	_ Styled         = (*Element)(nil)
	_ DatasetHolder  = (*Element)(nil)
	_ Activatable    = (*Element)(nil)
	_ Focusable      = (*Element)(nil)
	_ Focusable      = (*Window)(nil)
	_ PropertySetter = (*Element)(nil)
	_ PropertySetter = (*Document)(nil)
	_ PropertySetter = (*Window)(nil)
)

// Container targets accept appended children.
type Container interface {
	Target
	AppendChild(child *Node) (*Node, error)
}

var _ Container = (*Element)(nil)
