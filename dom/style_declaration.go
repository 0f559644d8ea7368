package dom

import (
	"regexp"
	"strings"
)

// CSSStyleDeclaration represents an element's inline style.
// It provides methods for getting and setting individual CSS properties and
// keeps the element's style attribute in sync.
type CSSStyleDeclaration struct {
	element *Element

	// Parsed declarations (property name -> declaration)
	declarations map[string]*styleProperty

	// Order in which properties were set (for cssText serialization)
	propertyOrder []string
}

// styleProperty holds a single CSS property's value and priority.
type styleProperty struct {
	value    string
	priority string // "important" or ""
}

// NewCSSStyleDeclaration creates a new CSSStyleDeclaration for an element.
func NewCSSStyleDeclaration(element *Element) *CSSStyleDeclaration {
	sd := &CSSStyleDeclaration{
		element:      element,
		declarations: make(map[string]*styleProperty),
	}
	if element != nil {
		if style, ok := element.LookupAttribute("style"); ok {
			sd.parseFromAttribute(style)
		}
	}
	return sd
}

// CSSText returns the textual representation of the declaration block.
func (sd *CSSStyleDeclaration) CSSText() string {
	var parts []string
	for _, prop := range sd.propertyOrder {
		if sp, ok := sd.declarations[prop]; ok {
			part := prop + ": " + sp.value
			if sp.priority == "important" {
				part += " !important"
			}
			parts = append(parts, part+";")
		}
	}
	return strings.Join(parts, " ")
}

// Length returns the number of properties set.
func (sd *CSSStyleDeclaration) Length() int {
	return len(sd.declarations)
}

// GetPropertyValue returns the value of a CSS property.
func (sd *CSSStyleDeclaration) GetPropertyValue(property string) string {
	if sp, ok := sd.declarations[normalizeCSSPropertyName(property)]; ok {
		return sp.value
	}
	return ""
}

// GetPropertyPriority returns the priority of a CSS property ("important" or "").
func (sd *CSSStyleDeclaration) GetPropertyPriority(property string) string {
	if sp, ok := sd.declarations[normalizeCSSPropertyName(property)]; ok {
		return sp.priority
	}
	return ""
}

// SetProperty sets a CSS property with an optional priority. Names that are
// not valid property identifiers are ignored; an empty value removes the
// property.
func (sd *CSSStyleDeclaration) SetProperty(property, value string, priority ...string) {
	property = normalizeCSSPropertyName(property)
	if !isValidCSSPropertyName(property) {
		return
	}

	value = strings.TrimSpace(value)
	if value == "" {
		sd.RemoveProperty(property)
		return
	}

	pri := ""
	if len(priority) > 0 && strings.EqualFold(priority[0], "important") {
		pri = "important"
	}

	if _, exists := sd.declarations[property]; !exists {
		sd.propertyOrder = append(sd.propertyOrder, property)
	}
	sd.declarations[property] = &styleProperty{
		value:    value,
		priority: pri,
	}
	sd.syncToAttribute()
}

// RemoveProperty removes a CSS property and returns its old value.
func (sd *CSSStyleDeclaration) RemoveProperty(property string) string {
	property = normalizeCSSPropertyName(property)
	sp, ok := sd.declarations[property]
	if !ok {
		return ""
	}
	delete(sd.declarations, property)
	for i, p := range sd.propertyOrder {
		if p == property {
			sd.propertyOrder = append(sd.propertyOrder[:i], sd.propertyOrder[i+1:]...)
			break
		}
	}
	sd.syncToAttribute()
	return sp.value
}

// PropertyNames returns all property names in declaration order.
func (sd *CSSStyleDeclaration) PropertyNames() []string {
	result := make([]string, len(sd.propertyOrder))
	copy(result, sd.propertyOrder)
	return result
}

// parseFromAttribute replaces the declarations with those parsed from a
// style attribute string.
func (sd *CSSStyleDeclaration) parseFromAttribute(styleAttr string) {
	sd.declarations = make(map[string]*styleProperty)
	sd.propertyOrder = nil

	for _, part := range strings.Split(styleAttr, ";") {
		colonIdx := strings.Index(part, ":")
		if colonIdx == -1 {
			continue
		}

		property := normalizeCSSPropertyName(strings.TrimSpace(part[:colonIdx]))
		value := strings.TrimSpace(part[colonIdx+1:])
		if !isValidCSSPropertyName(property) || value == "" {
			continue
		}

		priority := ""
		if idx := strings.LastIndex(value, "!"); idx != -1 &&
			strings.EqualFold(strings.TrimSpace(value[idx+1:]), "important") {
			priority = "important"
			value = strings.TrimSpace(value[:idx])
		}

		if _, exists := sd.declarations[property]; !exists {
			sd.propertyOrder = append(sd.propertyOrder, property)
		}
		sd.declarations[property] = &styleProperty{value: value, priority: priority}
	}
}

// syncToAttribute writes the declarations back to the element's style
// attribute without re-parsing them.
func (sd *CSSStyleDeclaration) syncToAttribute() {
	if sd.element == nil {
		return
	}

	ed := sd.element.elementData
	cssText := sd.CSSText()
	for i := range ed.attributes {
		if ed.attributes[i].name == "style" {
			ed.attributes[i].value = cssText
			return
		}
	}
	ed.attributes = append(ed.attributes, attribute{name: "style", value: cssText})
}

// normalizeCSSPropertyName lowercases a property name. Custom properties
// ("--name") are case-sensitive and kept as given.
func normalizeCSSPropertyName(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}

var cssPropertyPattern = regexp.MustCompile(`^(--[^\s:;]+|-?[a-z][a-z0-9-]*)$`)

func isValidCSSPropertyName(name string) bool {
	return cssPropertyPattern.MatchString(name)
}
