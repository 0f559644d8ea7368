package dom

import (
	"sort"
	"strings"
)

// Element represents an element in the DOM tree.
type Element Node

// AsNode returns the element as a *Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// NodeName returns the uppercase tag name.
func (e *Element) NodeName() string {
	return e.nodeName
}

// TagName returns the tag name of the element in uppercase.
func (e *Element) TagName() string {
	return e.nodeName
}

// LocalName returns the lowercase local name of the element.
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// OwnerDocument returns the document that owns this element.
func (e *Element) OwnerDocument() *Document {
	return e.ownerDoc
}

// Id returns the element's id attribute.
func (e *Element) Id() string {
	return e.GetAttribute("id")
}

// SetId sets the element's id attribute.
func (e *Element) SetId(id string) {
	e.SetAttribute("id", id)
}

// ClassName returns the raw class attribute.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the raw class attribute.
func (e *Element) SetClassName(className string) {
	e.SetAttribute("class", className)
}

// HasClass reports whether className is one of the element's class tokens.
func (e *Element) HasClass(className string) bool {
	for _, token := range strings.Fields(e.ClassName()) {
		if token == className {
			return true
		}
	}
	return false
}

// GetAttribute returns the value of the named attribute, or "" if absent.
func (e *Element) GetAttribute(name string) string {
	value, _ := e.LookupAttribute(name)
	return value
}

// LookupAttribute returns the value of the named attribute and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, attr := range e.elementData.attributes {
		if attr.name == name {
			return attr.value, true
		}
	}
	return "", false
}

// HasAttribute returns true if the element has the named attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

// SetAttribute sets the value of the named attribute, creating it if needed.
func (e *Element) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	ed := e.elementData
	if name == "style" && ed.style != nil {
		ed.style.parseFromAttribute(value)
	}
	for i := range ed.attributes {
		if ed.attributes[i].name == name {
			ed.attributes[i].value = value
			return
		}
	}
	ed.attributes = append(ed.attributes, attribute{name: name, value: value})
}

// RemoveAttribute removes the named attribute.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	ed := e.elementData
	if name == "style" && ed.style != nil {
		ed.style.parseFromAttribute("")
	}
	for i, attr := range ed.attributes {
		if attr.name == name {
			ed.attributes = append(ed.attributes[:i], ed.attributes[i+1:]...)
			return
		}
	}
}

// AttributeNames returns the element's attribute names in insertion order.
func (e *Element) AttributeNames() []string {
	names := make([]string, 0, len(e.elementData.attributes))
	for _, attr := range e.elementData.attributes {
		names = append(names, attr.name)
	}
	return names
}

// Children returns the element children of this element.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			children = append(children, (*Element)(c))
		}
	}
	return children
}

// FirstElementChild returns the first child that is an element.
func (e *Element) FirstElementChild() *Element {
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling that is an element.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.prevSibling; s != nil; s = s.prevSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// NextElementSibling returns the next sibling that is an element.
func (e *Element) NextElementSibling() *Element {
	for s := e.nextSibling; s != nil; s = s.nextSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// ParentElement returns the parent element, or nil.
func (e *Element) ParentElement() *Element {
	return e.AsNode().ParentElement()
}

// ParentNode returns the parent node, or nil if detached.
func (e *Element) ParentNode() *Node {
	return e.parentNode
}

// AppendChild appends child as the last child of this element.
func (e *Element) AppendChild(child *Node) (*Node, error) {
	return e.AsNode().AppendChild(child)
}

// Remove detaches the element from its parent. It is a no-op when the
// element has no parent.
func (e *Element) Remove() {
	if p := e.parentNode; p != nil {
		_, _ = p.RemoveChild(e.AsNode())
	}
}

// TextContent returns the text content of the element.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent replaces the element's children with a single text node.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// InnerHTML returns the HTML serialization of the element's children.
func (e *Element) InnerHTML() string {
	var sb strings.Builder
	parent := e.AsNode()
	if e.elementData.content != nil {
		parent = e.elementData.content.AsNode()
	}
	for child := parent.firstChild; child != nil; child = child.nextSibling {
		serializeNode(child, &sb)
	}
	return sb.String()
}

// SetInnerHTML replaces the element's children with the parsed markup.
// For <template> the markup goes into the template contents.
func (e *Element) SetInnerHTML(htmlContent string) error {
	nodes, err := parseHTMLFragment(htmlContent, e)
	if err != nil {
		return err
	}

	parent := e.AsNode()
	if e.LocalName() == "template" {
		parent = e.TemplateContent().AsNode()
	}
	parent.removeAllChildren()
	for _, node := range nodes {
		parent.insertBeforeInternal(node, nil)
	}
	return nil
}

// OuterHTML returns the HTML serialization of the element itself.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	serializeNode(e.AsNode(), &sb)
	return sb.String()
}

// TemplateContent returns the contents of a <template> element, or nil for
// other elements.
func (e *Element) TemplateContent() *DocumentFragment {
	if e.LocalName() != "template" {
		return nil
	}
	if e.elementData.content == nil {
		e.elementData.content = e.ownerDoc.CreateDocumentFragment()
	}
	return e.elementData.content
}

// Style returns the element's inline style declaration.
func (e *Element) Style() *CSSStyleDeclaration {
	if e.elementData.style == nil {
		e.elementData.style = NewCSSStyleDeclaration(e)
	}
	return e.elementData.style
}

// Dataset returns the element's data-* attribute map.
func (e *Element) Dataset() *DOMStringMap {
	return &DOMStringMap{element: e}
}

// AddEventListener registers a listener on the element.
func (e *Element) AddEventListener(eventType string, listener Listener, opts ListenerOptions) ListenerID {
	return e.AsNode().eventTarget().AddEventListener(eventType, listener, opts)
}

// RemoveEventListener unregisters a listener previously added to the element.
func (e *Element) RemoveEventListener(eventType string, id ListenerID) {
	e.AsNode().eventTarget().RemoveEventListener(eventType, id)
}

// DispatchEvent dispatches ev at the element. It returns false if the
// default action was prevented.
func (e *Element) DispatchEvent(ev *Event) bool {
	return dispatch(ev, e, e.propagationPath())
}

// propagationPath returns the element, its ancestors, the document when
// connected, and the document's window.
func (e *Element) propagationPath() []Target {
	path := []Target{e}
	for p := e.parentNode; p != nil; p = p.parentNode {
		switch p.nodeType {
		case ElementNode:
			path = append(path, (*Element)(p))
		case DocumentNode:
			path = append(path, (*Document)(p).propagationPath()...)
		}
	}
	return path
}

// PropertyNames lists the enumerable property names of the element: the
// reflected properties, one entry per attribute, and any expandos.
func (e *Element) PropertyNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range reflectedProperties {
		add(name)
	}
	for _, name := range e.AttributeNames() {
		add(name)
	}
	for name := range e.elementData.expando {
		add(name)
	}
	sort.Strings(names)
	return names
}
