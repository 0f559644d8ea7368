package css

import (
	"strings"

	"github.com/chrisuehlinger/domports/dom"
)

// MatchElement tests if a selector matches an element.
func (s *CSSSelector) MatchElement(el *dom.Element) bool {
	for _, cs := range s.ComplexSelectors {
		if cs.MatchElement(el) {
			return true
		}
	}
	return false
}

// MatchElement tests if a complex selector matches an element, matching
// right to left from the subject compound.
func (cs *ComplexSelector) MatchElement(el *dom.Element) bool {
	if len(cs.Compounds) == 0 {
		return false
	}
	return cs.matchFrom(len(cs.Compounds)-1, el)
}

// matchFrom matches compound i against el and the compounds left of i
// against el's relatives. Descendant and subsequent-sibling combinators
// backtrack over every candidate.
func (cs *ComplexSelector) matchFrom(i int, el *dom.Element) bool {
	if !cs.Compounds[i].MatchElement(el) {
		return false
	}
	if i == 0 {
		return true
	}

	switch cs.Compounds[i-1].Combinator {
	case CombinatorDescendant:
		for ancestor := el.ParentElement(); ancestor != nil; ancestor = ancestor.ParentElement() {
			if cs.matchFrom(i-1, ancestor) {
				return true
			}
		}
	case CombinatorChild:
		if parent := el.ParentElement(); parent != nil {
			return cs.matchFrom(i-1, parent)
		}
	case CombinatorNextSibling:
		if prev := el.PreviousElementSibling(); prev != nil {
			return cs.matchFrom(i-1, prev)
		}
	case CombinatorSubsequentSibling:
		for prev := el.PreviousElementSibling(); prev != nil; prev = prev.PreviousElementSibling() {
			if cs.matchFrom(i-1, prev) {
				return true
			}
		}
	}
	return false
}

// MatchElement tests if a compound selector matches an element.
func (c *CompoundSelector) MatchElement(el *dom.Element) bool {
	// Pseudo-elements never match an element in a query.
	if c.PseudoElement != "" {
		return false
	}

	if c.TypeSelector != nil && c.TypeSelector.Name != "*" && el.LocalName() != c.TypeSelector.Name {
		return false
	}

	for _, id := range c.IDSelectors {
		if el.Id() != id {
			return false
		}
	}

	for _, class := range c.ClassSelectors {
		if !el.HasClass(class) {
			return false
		}
	}

	for _, attr := range c.AttributeMatchers {
		if !matchAttributeSelector(attr, el) {
			return false
		}
	}

	for _, pc := range c.PseudoClasses {
		if !matchPseudoClass(pc, el) {
			return false
		}
	}

	return true
}

func matchAttributeSelector(attr *AttributeMatcher, el *dom.Element) bool {
	attrValue, ok := el.LookupAttribute(attr.Name)
	if !ok {
		return false
	}
	if attr.Operator == AttrExists {
		return true
	}

	matchValue := attr.Value
	if attr.CaseInsensitive {
		attrValue = strings.ToLower(attrValue)
		matchValue = strings.ToLower(matchValue)
	}

	switch attr.Operator {
	case AttrEquals:
		return attrValue == matchValue
	case AttrIncludes:
		for _, word := range strings.Fields(attrValue) {
			if word == matchValue {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return attrValue == matchValue || strings.HasPrefix(attrValue, matchValue+"-")
	case AttrPrefix:
		return matchValue != "" && strings.HasPrefix(attrValue, matchValue)
	case AttrSuffix:
		return matchValue != "" && strings.HasSuffix(attrValue, matchValue)
	case AttrSubstring:
		return matchValue != "" && strings.Contains(attrValue, matchValue)
	}
	return false
}

func matchPseudoClass(pc *PseudoClassSelector, el *dom.Element) bool {
	switch pc.Name {
	case "root", "scope":
		parent := el.ParentNode()
		return parent != nil && parent.NodeType() == dom.DocumentNode

	case "empty":
		for c := el.AsNode().FirstChild(); c != nil; c = c.NextSibling() {
			switch c.NodeType() {
			case dom.ElementNode:
				return false
			case dom.TextNode:
				if c.NodeValue() != "" {
					return false
				}
			}
		}
		return true

	case "first-child":
		return el.PreviousElementSibling() == nil
	case "last-child":
		return el.NextElementSibling() == nil
	case "only-child":
		return el.PreviousElementSibling() == nil && el.NextElementSibling() == nil

	case "first-of-type":
		return siblingIndex(el, false, true) == 1
	case "last-of-type":
		return siblingIndex(el, true, true) == 1
	case "only-of-type":
		return siblingIndex(el, false, true) == 1 && siblingIndex(el, true, true) == 1

	case "nth-child":
		return matchNth(pc.A, pc.B, siblingIndex(el, false, false))
	case "nth-last-child":
		return matchNth(pc.A, pc.B, siblingIndex(el, true, false))
	case "nth-of-type":
		return matchNth(pc.A, pc.B, siblingIndex(el, false, true))
	case "nth-last-of-type":
		return matchNth(pc.A, pc.B, siblingIndex(el, true, true))

	case "not":
		return !pc.Selector.MatchElement(el)
	case "is", "where":
		return pc.Selector.MatchElement(el)
	case "has":
		return hasMatchingDescendant(el, pc.Selector)

	case "checked":
		switch el.LocalName() {
		case "input":
			t := el.Type()
			return (t == "checkbox" || t == "radio") && el.Checked()
		case "option":
			return el.HasAttribute("selected")
		}
		return false
	case "disabled":
		return el.Disabled()
	case "enabled":
		return isFormElement(el) && !el.Disabled()
	case "required":
		return isFormElement(el) && el.HasAttribute("required")
	case "optional":
		return isFormElement(el) && !el.HasAttribute("required")
	case "read-only":
		return !isEditable(el)
	case "read-write":
		return isEditable(el)

	case "link", "any-link":
		return isLink(el)

	case "focus", "focus-visible":
		doc := el.OwnerDocument()
		return doc != nil && doc.FocusedElement() == el
	case "focus-within":
		doc := el.OwnerDocument()
		if doc == nil || doc.FocusedElement() == nil {
			return false
		}
		return el.AsNode().Contains(doc.FocusedElement().AsNode())

	case "lang":
		return matchLang(pc.Argument, el)
	}

	// visited, hover, active and target have no state to match against.
	return false
}

// siblingIndex returns the 1-based position of el among its element
// siblings, counting from the end when fromLast is set and only siblings
// with the same local name when ofType is set.
func siblingIndex(el *dom.Element, fromLast, ofType bool) int {
	next := (*dom.Element).PreviousElementSibling
	if fromLast {
		next = (*dom.Element).NextElementSibling
	}
	pos := 1
	for s := next(el); s != nil; s = next(s) {
		if !ofType || s.LocalName() == el.LocalName() {
			pos++
		}
	}
	return pos
}

// matchNth reports whether pos = a*n + b for some n >= 0.
func matchNth(a, b, pos int) bool {
	if a == 0 {
		return pos == b
	}
	diff := pos - b
	return diff/a >= 0 && diff%a == 0
}

func hasMatchingDescendant(el *dom.Element, sel *CSSSelector) bool {
	for child := el.FirstElementChild(); child != nil; child = child.NextElementSibling() {
		if sel.MatchElement(child) || hasMatchingDescendant(child, sel) {
			return true
		}
	}
	return false
}

func isFormElement(el *dom.Element) bool {
	switch el.LocalName() {
	case "button", "input", "select", "textarea", "fieldset", "optgroup", "option":
		return true
	}
	return false
}

func isEditable(el *dom.Element) bool {
	switch el.LocalName() {
	case "input", "textarea":
		return !el.HasAttribute("readonly") && !el.Disabled()
	}
	return strings.EqualFold(el.GetAttribute("contenteditable"), "true")
}

func isLink(el *dom.Element) bool {
	switch el.LocalName() {
	case "a", "area":
		return el.HasAttribute("href")
	}
	return false
}

// matchLang matches el's inherited lang attribute against a language range.
func matchLang(lang string, el *dom.Element) bool {
	lang = strings.ToLower(strings.Trim(lang, `"' `))
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if v, ok := cur.LookupAttribute("lang"); ok {
			v = strings.ToLower(v)
			return v == lang || strings.HasPrefix(v, lang+"-")
		}
	}
	return false
}
