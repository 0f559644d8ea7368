package dom

import (
	"errors"
	"math"
	"testing"
)

func TestElement_SetProperty(t *testing.T) {
	doc, body := newTestPage(t)
	body.SetInnerHTML(`<input id="in" type="checkbox"><div id="d"></div>`)
	in, d := doc.GetElementById("in"), doc.GetElementById("d")

	tests := []struct {
		el    *Element
		name  string
		value any
		check func() bool
	}{
		{in, "checked", 1.0, in.Checked},
		{in, "disabled", true, func() bool { return in.HasAttribute("disabled") }},
		{d, "className", "a b", func() bool { return d.ClassName() == "a b" }},
		{d, "hidden", "", func() bool { return !d.HasAttribute("hidden") }},
		{d, "textContent", 12.0, func() bool { return d.TextContent() == "12" }},
		{d, "innerHTML", "<b>x</b>", func() bool { return d.FirstElementChild() != nil }},
		{d, "scrollTop", "40", func() bool { return d.ScrollTop() == 40 }},
		{d, "tagName", "SPAN", func() bool { return d.TagName() == "DIV" }},
	}

	for _, tt := range tests {
		if err := tt.el.SetProperty(tt.name, tt.value); err != nil {
			t.Errorf("SetProperty(%q): %v", tt.name, err)
			continue
		}
		if !tt.check() {
			t.Errorf("SetProperty(%q, %v) did not take effect", tt.name, tt.value)
		}
	}
}

func TestElement_SetPropertyExpando(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetProperty("appState", map[string]any{"open": true})
	v, ok := el.Property("appState")
	if !ok {
		t.Fatal("Expected expando to be stored")
	}
	if m, _ := v.(map[string]any); m["open"] != true {
		t.Errorf("Expected stored map, got %v", v)
	}
	if el.HasAttribute("appstate") {
		t.Error("Expected expando not to become an attribute")
	}
}

func TestCoercion(t *testing.T) {
	strTests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{3.0, "3"},
		{0.5, "0.5"},
		{math.NaN(), "NaN"},
		{[]any{1.0, nil, "x"}, "1,,x"},
		{map[string]any{}, "[object Object]"},
	}
	for _, tt := range strTests {
		if got := toJSString(tt.in); got != tt.want {
			t.Errorf("toJSString(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}

	truthTests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"0", true},
		{0.0, false},
		{math.NaN(), false},
		{[]any{}, true},
	}
	for _, tt := range truthTests {
		if got := truthy(tt.in); got != tt.want {
			t.Errorf("truthy(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if toNumber(" 12 ") != 12 {
		t.Errorf("Expected 12, got %v", toNumber(" 12 "))
	}
	if !math.IsNaN(toNumber("abc")) {
		t.Error("Expected NaN for a non-numeric string")
	}
}

func TestDataset(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")
	ds := el.Dataset()

	if err := ds.Set("userId", "7"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if el.GetAttribute("data-user-id") != "7" {
		t.Errorf("Expected data-user-id='7', got %q", el.GetAttribute("data-user-id"))
	}
	if v, ok := ds.Get("userId"); !ok || v != "7" {
		t.Errorf("Expected userId='7', got %q", v)
	}

	err := ds.Set("bad-key", "x")
	var domErr *DOMError
	if !errors.As(err, &domErr) || domErr.Name != "SyntaxError" {
		t.Errorf("Expected SyntaxError, got %v", err)
	}

	el.SetAttribute("data-x", "1")
	entries := ds.Entries()
	if len(entries) != 2 || entries[0] != [2]string{"userId", "7"} || entries[1] != [2]string{"x", "1"} {
		t.Errorf("Unexpected entries %v", entries)
	}

	ds.Delete("userId")
	if keys := ds.Keys(); len(keys) != 1 || keys[0] != "x" {
		t.Errorf("Expected [x], got %v", keys)
	}
}

func TestElement_Geometry(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	el := doc.CreateElement("div")

	if el.Geometry() != nil {
		t.Error("Expected Geometry() to return nil before layout")
	}
	if el.OffsetTop() != 0 || el.OffsetParent() != nil {
		t.Error("Expected zero geometry before layout")
	}

	el.SetScrollTop(25)
	el.SetGeometry(&ElementGeometry{
		OffsetTop:    10,
		OffsetLeft:   20,
		OffsetWidth:  30,
		OffsetHeight: 40,
		OffsetParent: parent,
		ClientWidth:  28,
	})

	if el.OffsetTop() != 10 || el.OffsetLeft() != 20 {
		t.Errorf("Expected offset (20,10), got (%v,%v)", el.OffsetLeft(), el.OffsetTop())
	}
	if el.OffsetParent() != parent {
		t.Error("Expected offsetParent to be set")
	}
	if el.ScrollTop() != 25 {
		t.Errorf("Expected scroll offset to survive relayout, got %v", el.ScrollTop())
	}

	el.SetScrollLeft(-3)
	if el.ScrollLeft() != 0 {
		t.Errorf("Expected negative scroll to clamp to 0, got %v", el.ScrollLeft())
	}
}
