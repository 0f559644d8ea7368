package css

import (
	"github.com/chrisuehlinger/domports/dom"
)

// QuerySelector returns the first element under root matching the
// selector, or nil when nothing matches.
func QuerySelector(root *dom.Node, selectorStr string) (*dom.Element, error) {
	selector, err := ParseSelector(selectorStr)
	if err != nil {
		return nil, err
	}
	var found *dom.Element
	walk(root, func(el *dom.Element) bool {
		if selector.MatchElement(el) {
			found = el
			return false
		}
		return true
	})
	return found, nil
}

// QuerySelectorAll returns all elements under root matching the selector,
// in document order. Malformed selectors yield a SyntaxError.
func QuerySelectorAll(root *dom.Node, selectorStr string) ([]*dom.Element, error) {
	selector, err := ParseSelector(selectorStr)
	if err != nil {
		return nil, err
	}
	return selector.SelectAll(root), nil
}

// SelectAll returns the descendants of root matched by s, in document order.
func (s *CSSSelector) SelectAll(root *dom.Node) []*dom.Element {
	results := []*dom.Element{}
	walk(root, func(el *dom.Element) bool {
		if s.MatchElement(el) {
			results = append(results, el)
		}
		return true
	})
	return results
}

// walk visits element descendants of node in tree order until fn returns
// false.
func walk(node *dom.Node, fn func(*dom.Element) bool) bool {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.NodeType() != dom.ElementNode {
			continue
		}
		if !fn((*dom.Element)(child)) || !walk(child, fn) {
			return false
		}
	}
	return true
}
