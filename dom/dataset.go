package dom

import (
	"strings"
)

// DOMStringMap exposes an element's data-* attributes under camelCase keys,
// so "fooBar" maps to data-foo-bar.
type DOMStringMap struct {
	element *Element
}

// Get returns the value stored under key and whether it exists.
func (m *DOMStringMap) Get(key string) (string, bool) {
	return m.element.LookupAttribute(dataAttributeName(key))
}

// Set stores value under key. A key containing "-" followed by a lowercase
// ASCII letter is rejected with a SyntaxError.
func (m *DOMStringMap) Set(key, value string) error {
	for i := 0; i+1 < len(key); i++ {
		if key[i] == '-' && key[i+1] >= 'a' && key[i+1] <= 'z' {
			return ErrSyntax("'" + key + "' is not a valid property name.")
		}
	}
	m.element.SetAttribute(dataAttributeName(key), value)
	return nil
}

// Delete removes the attribute backing key.
func (m *DOMStringMap) Delete(key string) {
	m.element.RemoveAttribute(dataAttributeName(key))
}

// Keys returns the camelCase keys in attribute order.
func (m *DOMStringMap) Keys() []string {
	var keys []string
	for _, attr := range m.element.elementData.attributes {
		if key, ok := datasetKey(attr.name); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// Entries returns the (key, value) pairs in attribute order.
func (m *DOMStringMap) Entries() [][2]string {
	entries := [][2]string{}
	for _, attr := range m.element.elementData.attributes {
		if key, ok := datasetKey(attr.name); ok {
			entries = append(entries, [2]string{key, attr.value})
		}
	}
	return entries
}

// dataAttributeName converts a camelCase dataset key to its attribute name.
func dataAttributeName(key string) string {
	var sb strings.Builder
	sb.WriteString("data-")
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r - 'A' + 'a')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// datasetKey converts a data-* attribute name to its camelCase key.
func datasetKey(attrName string) (string, bool) {
	if !strings.HasPrefix(attrName, "data-") {
		return "", false
	}
	name := attrName[len("data-"):]
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '-' && i+1 < len(name) && name[i+1] >= 'a' && name[i+1] <= 'z' {
			sb.WriteByte(name[i+1] - 'a' + 'A')
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}
