package dom

import (
	"math"
	"strconv"
	"strings"
)

// propertyAccessor reflects a named element property. A nil set makes the
// property read-only; assignments to it are ignored.
type propertyAccessor struct {
	get func(e *Element) any
	set func(e *Element, value any) error
}

var reflectedProperties map[string]propertyAccessor

func init() {
	str := func(get func(*Element) string, set func(*Element, string)) propertyAccessor {
		acc := propertyAccessor{get: func(e *Element) any { return get(e) }}
		if set != nil {
			acc.set = func(e *Element, v any) error {
				set(e, toJSString(v))
				return nil
			}
		}
		return acc
	}
	boolAttr := func(name string) propertyAccessor {
		return propertyAccessor{
			get: func(e *Element) any { return e.HasAttribute(name) },
			set: func(e *Element, v any) error {
				if truthy(v) {
					e.SetAttribute(name, "")
				} else {
					e.RemoveAttribute(name)
				}
				return nil
			},
		}
	}
	strAttr := func(name string) propertyAccessor {
		return str(
			func(e *Element) string { return e.GetAttribute(name) },
			func(e *Element, s string) { e.SetAttribute(name, s) },
		)
	}

	reflectedProperties = map[string]propertyAccessor{
		"id":          strAttr("id"),
		"className":   strAttr("class"),
		"title":       strAttr("title"),
		"lang":        strAttr("lang"),
		"name":        strAttr("name"),
		"src":         strAttr("src"),
		"alt":         strAttr("alt"),
		"placeholder": strAttr("placeholder"),
		"htmlFor":     strAttr("for"),
		"type":        str((*Element).Type, func(e *Element, s string) { e.SetAttribute("type", s) }),
		"hidden":      boolAttr("hidden"),
		"disabled":    boolAttr("disabled"),
		"readOnly":    boolAttr("readonly"),
		"required":    boolAttr("required"),
		"tagName":     str((*Element).TagName, nil),
		"localName":   str((*Element).LocalName, nil),
		"pathname":    str((*Element).Pathname, nil),
		"href": str((*Element).Href, func(e *Element, s string) {
			e.SetAttribute("href", s)
		}),
		"textContent": str((*Element).TextContent, (*Element).SetTextContent),
		"innerHTML": {
			get: func(e *Element) any { return e.InnerHTML() },
			set: func(e *Element, v any) error { return e.SetInnerHTML(toJSString(v)) },
		},
		"value": {
			get: func(e *Element) any {
				v, _ := e.Value()
				return v
			},
			set: func(e *Element, v any) error {
				e.SetValue(toJSString(v))
				return nil
			},
		},
		"checked": {
			get: func(e *Element) any { return e.Checked() },
			set: func(e *Element, v any) error {
				e.SetChecked(truthy(v))
				return nil
			},
		},
		"tabIndex": {
			get: func(e *Element) any {
				n, err := strconv.Atoi(strings.TrimSpace(e.GetAttribute("tabindex")))
				if err != nil {
					if e.isFocusable() {
						return 0
					}
					return -1
				}
				return n
			},
			set: func(e *Element, v any) error {
				e.SetAttribute("tabindex", strconv.Itoa(int(toNumber(v))))
				return nil
			},
		},
		"scrollTop": {
			get: func(e *Element) any { return e.ScrollTop() },
			set: func(e *Element, v any) error {
				e.SetScrollTop(toNumber(v))
				return nil
			},
		},
		"scrollLeft": {
			get: func(e *Element) any { return e.ScrollLeft() },
			set: func(e *Element, v any) error {
				e.SetScrollLeft(toNumber(v))
				return nil
			},
		},
	}
}

// SetProperty assigns value to the named property. Reflected properties
// coerce the value the way a script assignment would; other names are
// stored as expandos.
func (e *Element) SetProperty(name string, value any) error {
	if acc, ok := reflectedProperties[name]; ok {
		if acc.set == nil {
			return nil
		}
		return acc.set(e, value)
	}
	if e.elementData.expando == nil {
		e.elementData.expando = make(map[string]any)
	}
	e.elementData.expando[name] = value
	return nil
}

// Property reads a reflected property or expando.
func (e *Element) Property(name string) (any, bool) {
	if acc, ok := reflectedProperties[name]; ok {
		return acc.get(e), true
	}
	v, ok := e.elementData.expando[name]
	return v, ok
}

// toJSString converts a decoded value to a string the way String(v) would.
func toJSString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatNumber(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			if item != nil {
				parts[i] = toJSString(item)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	case interface{ String() string }:
		return t.String()
	}
	return ""
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// truthy reports the boolean value of v under script truthiness rules.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

// toNumber converts v to a number, NaN when it has no numeric reading.
func toNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}
