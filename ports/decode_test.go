package ports

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		port    string
		payload string
		want    Command
	}{
		{"addEventListener", `["#a","click"]`, AddEventListener{Selector: "#a", Event: "click"}},
		{"addEventListener", `["#a","keyup",null]`, AddEventListener{Selector: "#a", Event: "keyup"}},
		{"addEventListener", `["#a","keyup",{"preventDefault":false,"stopPropagation":true}]`,
			AddEventListener{Selector: "#a", Event: "keyup", Options: &ListenerOptions{PreventDefault: ptr(false), StopPropagation: true}}},
		{"addClickListener", `"button"`, AddClickListener{Selector: "button"}},
		{"addSubmitListener", `["form",["Email","remember"]]`, AddSubmitListener{Selector: "form", Fields: []string{"Email", "remember"}}},
		{"addClass", `[".a","b"]`, AddClass{Selector: ".a", ClassName: "b"}},
		{"removeClass", `[".a","b"]`, RemoveClass{Selector: ".a", ClassName: "b"}},
		{"toggleClass", `[".a","b"]`, ToggleClass{Selector: ".a", ClassName: "b"}},
		{"innerHtml", `["#m","<p>x</p>"]`, InnerHTML{Selector: "#m", HTML: "<p>x</p>"}},
		{"appendChild", `["ul","<li></li>"]`, AppendChild{ParentSelector: "ul", HTML: "<li></li>"}},
		{"removeNodes", `".gone"`, RemoveNodes{Selector: ".gone"}},
		{"click", `"#b"`, Click{Selector: "#b"}},
		{"focus", `"#i"`, Focus{Selector: "#i"}},
		{"windowScrollTo", `[0, 120.5]`, WindowScrollTo{X: 0, Y: 120.5}},
		{"windowScrollToSelector", `"#top"`, WindowScrollToSelector{Selector: "#top"}},
		{"preventTouchScroll", `null`, PreventTouchScroll{}},
		{"allowTouchScroll", `[]`, AllowTouchScroll{}},
		{"setProperty", `["#i","disabled",true]`, SetProperty{Selector: "#i", Property: "disabled", Value: true}},
		{"setProperty", `["#i","title",null]`, SetProperty{Selector: "#i", Property: "title"}},
		{"addEventListener", `["#a", "click", null ]`, AddEventListener{Selector: "#a", Event: "click"}},
		{"setCssProperty", `["#i","color","red"]`, SetCSSProperty{Selector: "#i", Property: "color", Value: "red"}},
		{"removeCssProperty", `["#i","color"]`, RemoveCSSProperty{Selector: "#i", Property: "color"}},
		{"setDataAttribute", `["#i","userId","7"]`, SetDataAttribute{Selector: "#i", Key: "userId", Value: "7"}},
		{"getNodePosition", `"#i"`, GetNodePosition{Selector: "#i"}},
		{"querySelector", `"#i"`, QuerySelector{Selector: "#i"}},
		{"preloadImage", `"/img/a.png"`, PreloadImage{URL: "/img/a.png"}},
	}
	for _, tt := range tests {
		got, err := DecodeCommand(tt.port, []byte(tt.payload))
		if err != nil {
			t.Errorf("DecodeCommand(%s, %s): %v", tt.port, tt.payload, err)
			continue
		}
		if got.Port() != tt.port {
			t.Errorf("Expected port %s, got %s", tt.port, got.Port())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("DecodeCommand(%s) mismatch (-want +got):\n%s", tt.port, diff)
		}
	}
}

func TestDecodeCommand_CoversEveryPort(t *testing.T) {
	if len(CommandNames) != 22 {
		t.Fatalf("Expected 22 inbound ports, got %d", len(CommandNames))
	}
	for _, port := range CommandNames {
		_, err := DecodeCommand(port, nil)
		var unknown *UnknownPortError
		if errors.As(err, &unknown) {
			t.Errorf("Port %s is not decodable", port)
		}
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	tests := []struct {
		port    string
		payload string
	}{
		{"addClass", `[".a"]`},
		{"addClass", `[".a","b","c"]`},
		{"addClass", `".a"`},
		{"windowScrollTo", `["x", 1]`},
		{"click", `["#b"]`},
	}
	for _, tt := range tests {
		_, err := DecodeCommand(tt.port, []byte(tt.payload))
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) || decodeErr.Port != tt.port {
			t.Errorf("DecodeCommand(%s, %s): expected DecodeError, got %v", tt.port, tt.payload, err)
		}
	}

	_, err := DecodeCommand("launchRockets", []byte(`null`))
	var unknown *UnknownPortError
	if !errors.As(err, &unknown) {
		t.Errorf("Expected UnknownPortError, got %v", err)
	}
}
