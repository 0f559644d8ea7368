package layout

import (
	"strconv"
	"strings"

	"github.com/chrisuehlinger/domports/dom"
)

// nonRendered lists elements that never generate a box.
var nonRendered = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "base": true, "noscript": true,
}

func isRendered(el *dom.Element) bool {
	if nonRendered[el.LocalName()] || el.HasAttribute("hidden") {
		return false
	}
	return strings.TrimSpace(el.Style().GetPropertyValue("display")) != "none"
}

func positionOf(style *dom.CSSStyleDeclaration) PositionType {
	switch strings.TrimSpace(style.GetPropertyValue("position")) {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	}
	return PositionStatic
}

// edges reads a box edge property, honoring the one-to-four value
// shorthand and the per-side longhands, which win.
func edges(style *dom.CSSStyleDeclaration, prefix, suffix string) EdgeSizes {
	var e EdgeSizes
	if v := style.GetPropertyValue(prefix + suffix); v != "" {
		vals := make([]float64, 0, 4)
		for _, f := range strings.Fields(v) {
			n, _ := length(f)
			vals = append(vals, n)
		}
		switch len(vals) {
		case 1:
			e = EdgeSizes{vals[0], vals[0], vals[0], vals[0]}
		case 2:
			e = EdgeSizes{vals[0], vals[1], vals[0], vals[1]}
		case 3:
			e = EdgeSizes{vals[0], vals[1], vals[2], vals[1]}
		case 4:
			e = EdgeSizes{vals[0], vals[1], vals[2], vals[3]}
		}
	}
	sides := []struct {
		name string
		dst  *float64
	}{
		{"top", &e.Top}, {"right", &e.Right}, {"bottom", &e.Bottom}, {"left", &e.Left},
	}
	for _, s := range sides {
		if n, ok := length(style.GetPropertyValue(prefix + "-" + s.name + suffix)); ok {
			*s.dst = n
		}
	}
	return e
}

// length parses a px length or a unitless zero. Other units are not
// resolved and report false.
func length(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	num := strings.TrimSuffix(v, "px")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if num == v && n != 0 {
		return 0, false
	}
	return n, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
