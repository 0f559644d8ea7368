// Package html loads HTML documents into the dom package's tree.
package html

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domports/dom"
)

// Parse parses a complete HTML document from r. The document's URL is set
// to url and a window is attached so the document can be scrolled and can
// receive window-level events.
func Parse(r io.Reader, url string) (*dom.Document, error) {
	netNode, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc := dom.NewDocument()
	if url != "" {
		doc.SetURL(url)
	}
	dom.NewWindow(doc)

	for c := netNode.FirstChild; c != nil; c = c.NextSibling {
		if node := dom.ImportHTMLNode(c, doc); node != nil {
			if _, err := doc.AsNode().AppendChild(node); err != nil {
				return nil, fmt.Errorf("build document: %w", err)
			}
		}
	}
	return doc, nil
}

// ParseString parses a complete HTML document from a string.
func ParseString(htmlContent, url string) (*dom.Document, error) {
	return Parse(strings.NewReader(htmlContent), url)
}

// ParseFragment parses markup as the children of a <template> element
// owned by doc and returns the resulting top-level nodes, detached.
func ParseFragment(doc *dom.Document, markup string) ([]*dom.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Template,
		Data:     "template",
	}
	netNodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	nodes := make([]*dom.Node, 0, len(netNodes))
	for _, n := range netNodes {
		if node := dom.ImportHTMLNode(n, doc); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// FirstElement returns the first element among nodes, or nil.
func FirstElement(nodes []*dom.Node) *dom.Element {
	for _, n := range nodes {
		if n.NodeType() == dom.ElementNode {
			return (*dom.Element)(n)
		}
	}
	return nil
}
