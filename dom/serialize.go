package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// serializeNode serializes a node to HTML.
func serializeNode(n *Node, sb *strings.Builder) {
	switch n.nodeType {
	case TextNode:
		if p := n.ParentElement(); p != nil && isRawTextElement(p.LocalName()) {
			sb.WriteString(n.data)
		} else {
			sb.WriteString(html.EscapeString(n.data))
		}
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.data)
		sb.WriteString("-->")
	case ElementNode:
		el := (*Element)(n)
		tagName := el.LocalName()
		sb.WriteString("<")
		sb.WriteString(tagName)

		for _, attr := range el.elementData.attributes {
			sb.WriteString(" ")
			sb.WriteString(attr.name)
			sb.WriteString("=\"")
			sb.WriteString(html.EscapeString(attr.value))
			sb.WriteString("\"")
		}
		sb.WriteString(">")

		if isVoidElement(tagName) {
			return
		}

		sb.WriteString(el.InnerHTML())

		sb.WriteString("</")
		sb.WriteString(tagName)
		sb.WriteString(">")
	case DocumentNode, DocumentFragmentNode:
		for child := n.firstChild; child != nil; child = child.nextSibling {
			serializeNode(child, sb)
		}
	}
}

// isVoidElement returns true if the element is a void element.
func isVoidElement(tagName string) bool {
	switch tagName {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func isRawTextElement(tagName string) bool {
	switch tagName {
	case "script", "style", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}

// parseHTMLFragment parses an HTML fragment in the context of an element.
func parseHTMLFragment(htmlContent string, context *Element) ([]*Node, error) {
	if htmlContent == "" {
		return nil, nil
	}

	tagName := context.LocalName()
	contextNode := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tagName)),
		Data:     tagName,
	}

	nodes, err := html.ParseFragment(strings.NewReader(htmlContent), contextNode)
	if err != nil {
		return nil, err
	}

	result := make([]*Node, 0, len(nodes))
	doc := context.ownerDoc
	for _, n := range nodes {
		if converted := ImportHTMLNode(n, doc); converted != nil {
			result = append(result, converted)
		}
	}
	return result, nil
}

// ImportHTMLNode converts a golang.org/x/net/html node and its subtree into
// nodes owned by doc. Doctype and error nodes yield nil.
func ImportHTMLNode(n *html.Node, doc *Document) *Node {
	var node, container *Node

	switch n.Type {
	case html.TextNode:
		node = doc.CreateTextNode(n.Data)
	case html.ElementNode:
		el := doc.CreateElement(n.Data)
		for _, attr := range n.Attr {
			el.SetAttribute(attr.Key, attr.Val)
		}
		node = el.AsNode()
		if el.LocalName() == "template" {
			container = el.TemplateContent().AsNode()
		}
	case html.CommentNode:
		node = doc.CreateComment(n.Data)
	default:
		return nil
	}

	if container == nil {
		container = node
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := ImportHTMLNode(c, doc); child != nil {
			container.insertBeforeInternal(child, nil)
		}
	}

	return node
}
