package dom

import (
	"fmt"
	"strings"
)

// Node represents a node in the DOM tree. Element, Document and
// DocumentFragment are conversions of *Node and share its storage.
type Node struct {
	nodeType   NodeType
	nodeName   string
	ownerDoc   *Document
	parentNode *Node

	// First/last child and sibling pointers for efficient traversal
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Character data for Text and Comment nodes
	data string

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	documentData *documentData

	events *EventTarget
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName  string
	attributes []attribute
	style      *CSSStyleDeclaration
	geometry   *ElementGeometry

	// template content owner for <template>
	content *DocumentFragment

	// Form control state that diverged from the content attributes
	dirtyValue   *string
	dirtyChecked *bool

	// Properties assigned by name that do not reflect to anything
	expando map[string]any
}

// attribute is a single content attribute, kept in insertion order.
type attribute struct {
	name  string
	value string
}

// documentData holds data specific to Document nodes.
type documentData struct {
	url           string
	window        *Window
	activeElement *Element
	expando       map[string]any
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node.
// For elements, this is the tag name in uppercase.
func (n *Node) NodeName() string {
	return n.nodeName
}

// NodeValue returns the character data of text and comment nodes.
func (n *Node) NodeValue() string {
	return n.data
}

// OwnerDocument returns the Document that owns this node.
// For Document nodes, this returns nil.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent Element, or nil if the parent is not an element.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildNodes returns a snapshot of the node's children.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// IsConnected returns true if the node's root is a document.
func (n *Node) IsConnected() bool {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root.nodeType == DocumentNode
}

// Contains returns true if other is an inclusive descendant of n.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parentNode {
		if cur == n {
			return true
		}
	}
	return false
}

// TextContent returns the text content of the node and its descendants.
func (n *Node) TextContent() string {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return ""
	case TextNode, CommentNode:
		return n.data
	default:
		var sb strings.Builder
		n.collectTextContent(&sb)
		return sb.String()
	}
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.data)
		case ElementNode, DocumentFragmentNode:
			child.collectTextContent(sb)
		}
	}
}

// SetTextContent sets the text content of the node.
// For elements and document fragments, this replaces all children with a single text node.
func (n *Node) SetTextContent(value string) {
	switch n.nodeType {
	case DocumentNode, DocumentTypeNode:
		return
	case TextNode, CommentNode:
		n.data = value
	default:
		n.removeAllChildren()
		if value != "" {
			n.insertBeforeInternal(n.ownerDoc.CreateTextNode(value), nil)
		}
	}
}

func (n *Node) removeAllChildren() {
	for n.firstChild != nil {
		n.removeChildInternal(n.firstChild)
	}
}

// AppendChild adds a node to the end of the list of children of this node.
// Returns an error if the operation violates DOM hierarchy constraints.
func (n *Node) AppendChild(child *Node) (*Node, error) {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts a node before a reference child node.
// If refChild is nil, the node is appended to the end. Inserting a
// DocumentFragment moves its children instead.
func (n *Node) InsertBefore(newChild, refChild *Node) (*Node, error) {
	if err := n.validatePreInsertion(newChild, refChild); err != nil {
		return nil, err
	}

	if newChild.nodeType == DocumentFragmentNode {
		for _, c := range newChild.ChildNodes() {
			newChild.removeChildInternal(c)
			n.insertBeforeInternal(c, refChild)
		}
		return newChild, nil
	}

	if newChild.parentNode != nil {
		newChild.parentNode.removeChildInternal(newChild)
	}
	n.insertBeforeInternal(newChild, refChild)
	return newChild, nil
}

// validatePreInsertion implements the pre-insertion validation steps.
// https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) validatePreInsertion(node, child *Node) error {
	if node == nil {
		return ErrHierarchyRequest("The node to be inserted is null.")
	}
	switch n.nodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
	default:
		return ErrHierarchyRequest(fmt.Sprintf("Nodes of type %s do not support children.", n.nodeType))
	}
	if node.Contains(n) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if child != nil && child.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	switch node.nodeType {
	case DocumentNode:
		return ErrHierarchyRequest(fmt.Sprintf("Nodes of type %s may not be inserted.", node.nodeType))
	case TextNode:
		if n.nodeType == DocumentNode {
			return ErrHierarchyRequest(fmt.Sprintf("Nodes of type %s may not be inserted inside a document.", node.nodeType))
		}
	}
	if n.nodeType == DocumentNode {
		elements := 0
		if node.nodeType == ElementNode {
			elements = 1
		} else if node.nodeType == DocumentFragmentNode {
			for c := node.firstChild; c != nil; c = c.nextSibling {
				switch c.nodeType {
				case ElementNode:
					elements++
				case TextNode:
					return ErrHierarchyRequest("Nodes of type TEXT_NODE may not be inserted inside a document.")
				}
			}
		}
		if elements > 1 || (elements == 1 && n.hasElementChildExcluding(node)) {
			return ErrHierarchyRequest("Only one element on document allowed.")
		}
	}
	return nil
}

func (n *Node) hasElementChildExcluding(exclude *Node) bool {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode && c != exclude {
			return true
		}
	}
	return false
}

// adoptNode recursively sets the ownerDocument for a node and its descendants.
func adoptNode(node *Node, doc *Document) {
	node.ownerDoc = doc
	for child := node.firstChild; child != nil; child = child.nextSibling {
		adoptNode(child, doc)
	}
}

// RemoveChild removes a child node from this node.
// Returns an error if the child is not a child of this node.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil {
		return nil, ErrNotFound("The node to be removed is null.")
	}
	if child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}

	if doc := n.ownerDocumentOrSelf(); doc != nil {
		if active := doc.documentData.activeElement; active != nil && child.Contains(active.AsNode()) {
			doc.documentData.activeElement = nil
		}
	}

	n.removeChildInternal(child)
	return child, nil
}

func (n *Node) ownerDocumentOrSelf() *Document {
	if n.nodeType == DocumentNode {
		return (*Document)(n)
	}
	return n.ownerDoc
}

// removeChildInternal removes a child from this node's children list.
func (n *Node) removeChildInternal(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}

	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// insertBeforeInternal inserts a node before a reference child without validation.
// If refChild is nil, appends to the end.
func (n *Node) insertBeforeInternal(newChild, refChild *Node) {
	newChild.parentNode = n

	if doc := n.ownerDocumentOrSelf(); doc != nil && newChild.ownerDoc != doc {
		adoptNode(newChild, doc)
	}

	if refChild == nil {
		newChild.prevSibling = n.lastChild
		newChild.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = newChild
		} else {
			n.firstChild = newChild
		}
		n.lastChild = newChild
		return
	}

	newChild.prevSibling = refChild.prevSibling
	newChild.nextSibling = refChild
	if refChild.prevSibling != nil {
		refChild.prevSibling.nextSibling = newChild
	} else {
		n.firstChild = newChild
	}
	refChild.prevSibling = newChild
}

// eventTarget returns the node's listener registry, creating it on first use.
func (n *Node) eventTarget() *EventTarget {
	if n.events == nil {
		n.events = NewEventTarget()
	}
	return n.events
}
