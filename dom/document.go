package dom

import (
	"sort"
	"strings"
)

// Document represents the entire HTML document.
type Document Node

// NewDocument creates a new empty HTML Document.
func NewDocument() *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{url: "about:blank"}
	return (*Document)(node)
}

// AsNode returns the document as a *Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// NodeName returns "#document".
func (d *Document) NodeName() string {
	return "#document"
}

// URL returns the document's address.
func (d *Document) URL() string {
	return d.documentData.url
}

// SetURL sets the document's address, used to resolve relative links.
func (d *Document) SetURL(url string) {
	d.documentData.url = url
}

// DefaultView returns the window displaying this document, if any.
func (d *Document) DefaultView() *Window {
	return d.documentData.window
}

// ActiveElement returns the focused element, or body when nothing has focus.
func (d *Document) ActiveElement() *Element {
	if el := d.documentData.activeElement; el != nil {
		return el
	}
	return d.Body()
}

// FocusedElement returns the element that has focus, or nil.
func (d *Document) FocusedElement() *Element {
	return d.documentData.activeElement
}

// DocumentElement returns the root element of the document.
func (d *Document) DocumentElement() *Element {
	for child := d.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.rootChild("head")
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.rootChild("body")
}

func (d *Document) rootChild(localName string) *Element {
	docEl := d.DocumentElement()
	if docEl == nil {
		return nil
	}
	for child := docEl.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && (*Element)(child).LocalName() == localName {
			return (*Element)(child)
		}
	}
	return nil
}

// Title returns the document title.
func (d *Document) Title() string {
	if title := d.titleElement(); title != nil {
		return strings.TrimSpace(title.TextContent())
	}
	return ""
}

// SetTitle sets the document title, creating <title> in <head> when needed.
func (d *Document) SetTitle(title string) {
	if el := d.titleElement(); el != nil {
		el.SetTextContent(title)
		return
	}
	head := d.Head()
	if head == nil {
		return
	}
	titleEl := d.CreateElement("title")
	titleEl.SetTextContent(title)
	head.AsNode().insertBeforeInternal(titleEl.AsNode(), nil)
}

func (d *Document) titleElement() *Element {
	head := d.Head()
	if head == nil {
		return nil
	}
	for child := head.AsNode().firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode && (*Element)(child).LocalName() == "title" {
			return (*Element)(child)
		}
	}
	return nil
}

// CreateElement creates a new element with the given tag name.
func (d *Document) CreateElement(tagName string) *Element {
	localName := strings.ToLower(tagName)
	node := newNode(ElementNode, strings.ToUpper(localName), d)
	node.elementData = &elementData{localName: localName}
	return (*Element)(node)
}

// CreateTextNode creates a new Text node.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.data = data
	return node
}

// CreateComment creates a new Comment node.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.data = data
	return node
}

// CreateDocumentFragment creates a new empty DocumentFragment.
func (d *Document) CreateDocumentFragment() *DocumentFragment {
	return (*DocumentFragment)(newNode(DocumentFragmentNode, "#document-fragment", d))
}

// GetElementById returns the first element in tree order with the given id.
func (d *Document) GetElementById(id string) *Element {
	var found *Element
	walkElements(d.AsNode(), func(el *Element) bool {
		if el.Id() == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// AddEventListener registers a listener on the document.
func (d *Document) AddEventListener(eventType string, listener Listener, opts ListenerOptions) ListenerID {
	return d.AsNode().eventTarget().AddEventListener(eventType, listener, opts)
}

// RemoveEventListener unregisters a listener previously added to the document.
func (d *Document) RemoveEventListener(eventType string, id ListenerID) {
	d.AsNode().eventTarget().RemoveEventListener(eventType, id)
}

// DispatchEvent dispatches ev at the document. It returns false if the
// default action was prevented.
func (d *Document) DispatchEvent(ev *Event) bool {
	return dispatch(ev, d, d.propagationPath())
}

func (d *Document) propagationPath() []Target {
	path := []Target{d}
	if w := d.DefaultView(); w != nil {
		path = append(path, w)
	}
	return path
}

// SetProperty assigns a named property on the document. Only title
// reflects; everything else is kept as an expando.
func (d *Document) SetProperty(name string, value any) error {
	if name == "title" {
		d.SetTitle(toJSString(value))
		return nil
	}
	if d.documentData.expando == nil {
		d.documentData.expando = make(map[string]any)
	}
	d.documentData.expando[name] = value
	return nil
}

// PropertyNames lists the enumerable property names of the document.
func (d *Document) PropertyNames() []string {
	names := []string{"activeElement", "body", "documentElement", "head", "title", "URL"}
	for k := range d.documentData.expando {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// walkElements visits element descendants of root in tree order until fn
// returns false.
func walkElements(root *Node, fn func(*Element) bool) bool {
	for c := root.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType != ElementNode {
			continue
		}
		if !fn((*Element)(c)) {
			return false
		}
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}

// DocumentFragment is a lightweight container for nodes.
type DocumentFragment Node

// AsNode returns the fragment as a *Node.
func (f *DocumentFragment) AsNode() *Node {
	return (*Node)(f)
}

// FirstElementChild returns the fragment's first element child.
func (f *DocumentFragment) FirstElementChild() *Element {
	for c := f.AsNode().firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}
