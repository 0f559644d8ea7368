package ports

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chrisuehlinger/domports/dom"
	"github.com/chrisuehlinger/domports/layout"
)

func click(el *dom.Element) bool {
	return el.DispatchEvent(dom.NewEvent("click", dom.EventInit{Bubbles: true, Cancelable: true, ClientX: 3, ClientY: 4}))
}

func TestAddEventListener_DefaultPreventsDefault(t *testing.T) {
	h := newHarness(t, `<body><button id="b">Go</button></body>`)
	h.dispatch(t, AddEventListener{Selector: "#b", Event: "click"})

	if click(h.el(t, "b")) {
		t.Error("Expected the listener to prevent the default action")
	}
	if len(h.emissions) != 1 {
		t.Fatalf("Expected one emission, got %d", len(h.emissions))
	}

	want := EventFired{
		EventName: "click",
		Selector:  "#b",
		Node:      NodeRecord{Data: [][2]string{}, ID: ptr("b"), InnerHTML: ptr("Go")},
		Event:     EventRecord{ClientX: ptr(3.0), ClientY: ptr(4.0)},
	}
	if diff := cmp.Diff(Emission(want), h.emissions[0]); diff != "" {
		t.Errorf("Unexpected emission (-want +got):\n%s", diff)
	}
	if h.emissions[0].Port() != "onClick" {
		t.Errorf("Expected port onClick, got %s", h.emissions[0].Port())
	}
}

func TestAddEventListener_Options(t *testing.T) {
	tests := []struct {
		name           string
		options        *ListenerOptions
		wantPrevented  bool
		wantPropagated bool
	}{
		{"no options", nil, true, true},
		{"empty options", &ListenerOptions{}, true, true},
		{"preventDefault true", &ListenerOptions{PreventDefault: ptr(true)}, true, true},
		{"preventDefault false", &ListenerOptions{PreventDefault: ptr(false)}, false, true},
		{"stopPropagation", &ListenerOptions{PreventDefault: ptr(false), StopPropagation: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, `<body><div id="outer"><span id="inner"></span></div></body>`)
			h.dispatch(t, AddEventListener{Selector: "#inner", Event: "click", Options: tt.options})

			propagated := false
			h.el(t, "outer").AddEventListener("click", func(*dom.Event) { propagated = true }, dom.ListenerOptions{})

			notCanceled := click(h.el(t, "inner"))
			if notCanceled == tt.wantPrevented {
				t.Errorf("Expected prevented=%v, got %v", tt.wantPrevented, !notCanceled)
			}
			if propagated != tt.wantPropagated {
				t.Errorf("Expected propagated=%v, got %v", tt.wantPropagated, propagated)
			}
		})
	}
}

func TestAddEventListener_PreventsOncePerFire(t *testing.T) {
	h := newHarness(t, `<body><p id="p"></p></body>`)
	h.dispatch(t, AddEventListener{Selector: "#p", Event: "keydown"})

	for i := 0; i < 3; i++ {
		ev := dom.NewEvent("keydown", dom.EventInit{Cancelable: true, KeyCode: 40})
		h.el(t, "p").DispatchEvent(ev)
		if !ev.DefaultPrevented() {
			t.Errorf("fire %d: expected default prevented", i)
		}
	}
	if len(h.emissions) != 3 {
		t.Errorf("Expected one emission per fire, got %d", len(h.emissions))
	}
	if got := h.emissions[0].Port(); got != "onKeydown" {
		t.Errorf("Expected port onKeydown, got %s", got)
	}
}

func TestAddEventListener_AllTargetsAndSingletons(t *testing.T) {
	h := newHarness(t, `<body><li class="i" id="one"></li><li class="i" id="two"></li></body>`)
	h.dispatch(t, AddClickListener{Selector: ".i"})
	h.dispatch(t, AddEventListener{Selector: "window", Event: "scroll"})

	click(h.el(t, "two"))
	click(h.el(t, "one"))
	h.doc.DefaultView().ScrollTo(0, 50)

	var ids []string
	for _, e := range h.emissions {
		fired := e.(EventFired)
		if fired.Node.ID != nil {
			ids = append(ids, *fired.Node.ID)
		} else {
			ids = append(ids, fired.Port())
		}
	}
	if diff := cmp.Diff([]string{"two", "one", "onScroll"}, ids); diff != "" {
		t.Errorf("Unexpected emissions (-want +got):\n%s", diff)
	}

	for _, l := range h.logs[:2] {
		if l.name != "addEventListener" {
			t.Errorf("Expected addEventListener log, got %s", l.name)
		}
	}
	if h.logs[0].args[1] != "click" {
		t.Errorf("Expected click listener to log event click, got %v", h.logs[0].args)
	}
}

func TestAddEventListener_CapabilityFailure(t *testing.T) {
	h := newHarness(t, `<body><p id="ok"></p></body>`)
	ok := h.el(t, "ok")
	h.d.resolver.query = func(string) ([]dom.Target, error) {
		return []dom.Target{ok, fakeTarget{}}, nil
	}

	err := h.d.Dispatch(AddEventListener{Selector: ".x", Event: "click"})
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Expected CapabilityError, got %v", err)
	}
	if capErr.Selector != ".x" || capErr.Event != "click" {
		t.Errorf("Unexpected error fields %+v", capErr)
	}
	want := "cannot add event listener click to node with selector .x; node.addEventListener is not a function | Keys: alpha,beta"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	err = h.d.Dispatch(AddSubmitListener{Selector: "form", Fields: nil})
	if !errors.As(err, &capErr) || !strings.HasPrefix(err.Error(), "cannot add submit listener to node with selector form") {
		t.Errorf("Expected submit CapabilityError, got %v", err)
	}

	for _, cmd := range []Command{
		AddClass{Selector: ".x", ClassName: "c"},
		SetCSSProperty{Selector: ".x", Property: "color", Value: "red"},
		SetDataAttribute{Selector: ".x", Key: "k", Value: "v"},
		Click{Selector: ".x"},
		Focus{Selector: ".x"},
		SetProperty{Selector: ".x", Property: "p", Value: 1},
		AppendChild{ParentSelector: ".x", HTML: "<i></i>"},
	} {
		if err := h.d.Dispatch(cmd); !errors.As(err, &capErr) || capErr.Port != cmd.Port() {
			t.Errorf("%s: expected CapabilityError, got %v", cmd.Port(), err)
		}
	}
}

func TestAddSubmitListener(t *testing.T) {
	h := newHarness(t, `<body><form id="f">
		<input name="Email" value="ada@example.com">
		<input name="Remember" type="checkbox" checked>
		<input id="Terms" type="checkbox">
		<select name="plan"><option>free</option><option selected value="pro">Pro</option></select>
		<button id="go">Send</button>
	</form></body>`)
	h.dispatch(t, AddSubmitListener{Selector: "#f", Fields: []string{"Email", "Remember", "Terms", "plan", "missing"}})

	h.el(t, "go").Click()

	if len(h.emissions) != 1 {
		t.Fatalf("Expected one onSubmit emission, got %d", len(h.emissions))
	}
	want := Submitted{
		Selector: "#f",
		Fields: map[string]any{
			"email":    "ada@example.com",
			"remember": true,
			"terms":    false,
			"plan":     "pro",
			"missing":  nil,
		},
	}
	if diff := cmp.Diff(Emission(want), h.emissions[0]); diff != "" {
		t.Errorf("Unexpected emission (-want +got):\n%s", diff)
	}

	if h.el(t, "f").RequestSubmit() {
		t.Error("Expected submit default to always be prevented")
	}
}

func TestInnerHTML(t *testing.T) {
	h := newHarness(t, `<body><div class="m">old</div><div class="m"></div></body>`)
	h.dispatch(t, InnerHTML{Selector: ".m", HTML: "<em>new</em>"})

	all, _ := h.d.Resolver().All(".m em")
	if len(all) != 2 {
		t.Errorf("Expected both targets replaced, got %d", len(all))
	}

	h.dispatch(t, InnerHTML{Selector: ".nothing", HTML: ""})
	want := []Emission{InnerHTMLReplaced{Selector: ".m"}, InnerHTMLReplaced{Selector: ".nothing"}}
	if diff := cmp.Diff(want, h.emissions); diff != "" {
		t.Errorf("Expected innerHtmlReplaced even without matches (-want +got):\n%s", diff)
	}
}

func TestInnerHTML_LogPreview(t *testing.T) {
	h := newHarness(t, `<body></body>`)
	long := strings.Repeat("x", 250)

	h.dispatch(t, InnerHTML{Selector: "#a", HTML: ""})
	h.dispatch(t, InnerHTML{Selector: "#a", HTML: "<p>hi</p>"})
	h.dispatch(t, InnerHTML{Selector: "#a", HTML: long})

	want := []string{"", "\n<p>hi</p>", "\n" + long[:200] + "..."}
	for i, w := range want {
		if got := h.logs[i].args[1]; got != w {
			t.Errorf("log %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestAppendChild(t *testing.T) {
	h := newHarness(t, `<body><ul class="l"></ul><ul class="l" id="last"><li>a</li></ul></body>`)

	h.dispatch(t, AppendChild{ParentSelector: "#none", HTML: "<li>x</li>"})
	if len(h.emissions) != 0 {
		t.Fatalf("Expected no emission for a missing parent, got %v", h.emissions)
	}

	markup := "  <li class=\"new\">b</li><li>ignored</li>"
	h.dispatch(t, AppendChild{ParentSelector: ".l", HTML: markup})

	last := h.el(t, "last")
	children := last.Children()
	if len(children) != 2 || children[1].ClassName() != "new" {
		t.Errorf("Expected first parsed element appended to the last .l, got %s", last.InnerHTML())
	}
	if diff := cmp.Diff([]Emission{AppendChildSucceeded{ParentSelector: ".l", HTML: markup}}, h.emissions); diff != "" {
		t.Errorf("Unexpected emissions (-want +got):\n%s", diff)
	}

	want := []string{"appendChild", "appendChild [parent not found]", "appendChild", "appendChildSuccess"}
	if diff := cmp.Diff(want, h.logNames()); diff != "" {
		t.Errorf("Unexpected logs (-want +got):\n%s", diff)
	}
}

func TestRemoveNodes(t *testing.T) {
	h := newHarness(t, `<body><p class="gone"></p><div><p class="gone"></p></div><p id="stay"></p></body>`)
	detached := h.doc.CreateElement("p")

	h.dispatch(t, RemoveNodes{Selector: ".gone"})
	if all, _ := h.d.Resolver().All(".gone"); len(all) != 0 {
		t.Errorf("Expected all .gone removed, got %d", len(all))
	}

	h.d.resolver.query = func(string) ([]dom.Target, error) {
		return []dom.Target{detached, h.el(t, "stay")}, nil
	}
	h.dispatch(t, RemoveNodes{Selector: "p"})
	if h.doc.GetElementById("stay") != nil {
		t.Error("Expected the attached node to be removed after skipping the detached one")
	}

	h.d.resolver.query = h.d.resolver.querySelectorAll
	h.dispatch(t, RemoveNodes{Selector: "window"})
	h.dispatch(t, RemoveNodes{Selector: "document"})
}

func TestClickAndFocus(t *testing.T) {
	h := newHarness(t, `<body><input id="c1" class="c" type="checkbox"><input id="c2" class="c" type="checkbox">
		<input id="t1" class="t"><input id="t2" class="t"></body>`)

	h.dispatch(t, Click{Selector: ".c"})
	if !h.el(t, "c1").Checked() || !h.el(t, "c2").Checked() {
		t.Error("Expected every matched checkbox to be clicked")
	}

	h.dispatch(t, Focus{Selector: ".t"})
	if h.doc.ActiveElement() != h.el(t, "t2") {
		t.Errorf("Expected the last match focused, got %v", h.doc.ActiveElement())
	}

	h.dispatch(t, Focus{Selector: ".none"})
	h.dispatch(t, Focus{Selector: "window"})
	if h.doc.ActiveElement() != h.el(t, "t2") {
		t.Error("Expected focus to be unchanged")
	}
}

func TestWindowScroll(t *testing.T) {
	h := newHarness(t, `<body style="margin: 0">
		<div style="height: 300px"></div>
		<div id="box" style="position: relative; margin-top: 20px; margin-left: 15px">
			<p id="target" style="margin-top: 40px; height: 10px"></p>
		</div>
	</body>`, WithLayout(layout.NewEngine()))
	w := h.doc.DefaultView()

	h.dispatch(t, WindowScrollTo{X: 12, Y: 34})
	if w.ScrollX() != 12 || w.ScrollY() != 34 {
		t.Errorf("Expected (12,34), got (%v,%v)", w.ScrollX(), w.ScrollY())
	}

	h.dispatch(t, WindowScrollToSelector{Selector: "#target"})
	if w.ScrollX() != 0 || w.ScrollY() != 360 {
		t.Errorf("Expected (0,360), got (%v,%v)", w.ScrollX(), w.ScrollY())
	}

	h.dispatch(t, WindowScrollToSelector{Selector: "#missing"})
	if w.ScrollY() != 360 {
		t.Errorf("Expected a missing selector to leave scroll alone, got %v", w.ScrollY())
	}
	if got := h.logNames()[len(h.logs)-1]; got != "windowScrollToSelector [node not found]" {
		t.Errorf("Expected not-found log, got %s", got)
	}
}

func TestTouchScrollGuard(t *testing.T) {
	h := newHarness(t, `<body><div id="d"></div></body>`)
	guard := NewTouchScrollGuard(h.doc)
	h.d = NewDispatcher(h.doc, WithTouchScrollGuard(guard))

	touch := func() bool {
		ev := dom.NewEvent("touchmove", dom.EventInit{Bubbles: true, Cancelable: true})
		h.el(t, "d").DispatchEvent(ev)
		return ev.DefaultPrevented()
	}

	if touch() {
		t.Fatal("Expected touch scrolling allowed initially")
	}
	h.dispatch(t, PreventTouchScroll{})
	h.dispatch(t, PreventTouchScroll{})
	if !guard.Enabled() || !touch() {
		t.Error("Expected touchmove to be canceled")
	}

	h.dispatch(t, AllowTouchScroll{})
	if guard.Enabled() || touch() {
		t.Error("Expected a single allow to undo repeated prevents")
	}
	h.dispatch(t, AllowTouchScroll{})
}

func TestSetPropertyAndStyle(t *testing.T) {
	h := newHarness(t, `<body><input id="i" class="f"><input class="f"></body>`)

	h.dispatch(t, SetProperty{Selector: ".f", Property: "disabled", Value: true})
	h.dispatch(t, SetProperty{Selector: "#i", Property: "value", Value: "typed"})
	h.dispatch(t, SetProperty{Selector: "document", Property: "title", Value: "Hello"})
	h.dispatch(t, SetCSSProperty{Selector: ".f", Property: "color", Value: "red"})
	h.dispatch(t, SetCSSProperty{Selector: "#i", Property: "width", Value: "10px"})
	h.dispatch(t, RemoveCSSProperty{Selector: "#i", Property: "color"})
	h.dispatch(t, SetDataAttribute{Selector: ".f", Key: "fooBar", Value: "1"})

	all, _ := h.d.Resolver().All(".f")
	for _, target := range all {
		el := target.(*dom.Element)
		if !el.Disabled() {
			t.Error("Expected disabled to reflect to every input")
		}
		if el.GetAttribute("data-foo-bar") != "1" {
			t.Errorf("Expected data-foo-bar=1, got %q", el.GetAttribute("data-foo-bar"))
		}
	}
	i := h.el(t, "i")
	if v, _ := i.Value(); v != "typed" {
		t.Errorf("Expected value typed, got %q", v)
	}
	if got := i.Style().CSSText(); got != "width: 10px;" {
		t.Errorf("Expected only width left, got %q", got)
	}
	if h.doc.Title() != "Hello" {
		t.Errorf("Expected document title Hello, got %q", h.doc.Title())
	}

	err := h.d.Dispatch(SetDataAttribute{Selector: "#i", Key: "bad-key", Value: "x"})
	var domErr *dom.DOMError
	if !errors.As(err, &domErr) {
		t.Errorf("Expected a DOMError for an invalid dataset key, got %v", err)
	}
}

func TestGetNodePosition(t *testing.T) {
	h := newHarness(t, `<body><div id="a"></div><div id="b"></div></body>`)
	a := h.el(t, "a")
	b := h.el(t, "b")
	a.SetGeometry(&dom.ElementGeometry{OffsetTop: 30, OffsetLeft: 3})
	b.SetGeometry(&dom.ElementGeometry{OffsetTop: 10, OffsetLeft: 20, OffsetWidth: 30, OffsetHeight: 40, OffsetParent: a})

	h.dispatch(t, GetNodePosition{Selector: "div"})
	h.dispatch(t, GetNodePosition{Selector: "#missing"})
	h.dispatch(t, GetNodePosition{Selector: "window"})

	want := []Emission{NodePosition{Selector: "div", Position: PositionRecord{Top: 40, Right: 53, Bottom: 80, Left: 23}}}
	if diff := cmp.Diff(want, h.emissions); diff != "" {
		t.Errorf("Unexpected emissions (-want +got):\n%s", diff)
	}
	wantLogs := []string{
		"getNodePosition", "nodePosition",
		"getNodePosition", "getNodePosition [not found]",
		"getNodePosition", "getNodePosition [not found]",
	}
	if diff := cmp.Diff(wantLogs, h.logNames()); diff != "" {
		t.Errorf("Unexpected logs (-want +got):\n%s", diff)
	}
}

func TestQuerySelector(t *testing.T) {
	h := newHarness(t, `<body style="margin: 0"><p id="p" style="height: 20px; padding: 2px">x</p></body>`,
		WithLayout(layout.NewEngine()))

	h.dispatch(t, QuerySelector{Selector: "#missing"})
	h.dispatch(t, QuerySelector{Selector: "#p"})
	h.dispatch(t, QuerySelector{Selector: "document"})

	want := []Emission{
		QuerySelectorResponse{Selector: "#p", Node: NodeRecord{
			ClientHeight: ptr(24.0),
			ClientWidth:  ptr(1024.0),
			Data:         [][2]string{},
			ID:           ptr("p"),
			InnerHTML:    ptr("x"),
		}},
		QuerySelectorResponse{Selector: "document", Node: NodeRecord{Data: [][2]string{}}},
	}
	if diff := cmp.Diff(want, h.emissions); diff != "" {
		t.Errorf("Unexpected emissions (-want +got):\n%s", diff)
	}
	if h.logs[1].name != "querySelector [not found]" {
		t.Errorf("Expected not-found log, got %s", h.logs[1].name)
	}
}

type preloadCall struct{ base, ref string }

type fakePreloader struct{ calls []preloadCall }

func (p *fakePreloader) Preload(base, ref string) {
	p.calls = append(p.calls, preloadCall{base, ref})
}

func TestPreloadImage(t *testing.T) {
	p := &fakePreloader{}
	h := newHarness(t, `<body></body>`, WithPreloader(p))

	h.dispatch(t, PreloadImage{URL: "img/hero.png"})
	want := []preloadCall{{"https://example.com/app/index.html", "img/hero.png"}}
	if diff := cmp.Diff(want, p.calls, cmp.AllowUnexported(preloadCall{})); diff != "" {
		t.Errorf("Unexpected preloads (-want +got):\n%s", diff)
	}
	if len(h.emissions) != 0 {
		t.Errorf("Expected no emission, got %v", h.emissions)
	}

	bare := newHarness(t, `<body></body>`)
	bare.dispatch(t, PreloadImage{URL: "x.png"})
}

func TestDispatchJSON(t *testing.T) {
	h := newHarness(t, `<body><div id="d"></div></body>`)
	if err := h.d.DispatchJSON("addClass", []byte(`["#d","on"]`)); err != nil {
		t.Fatalf("DispatchJSON: %v", err)
	}
	if !h.el(t, "d").HasClass("on") {
		t.Error("Expected class on")
	}

	var decodeErr *DecodeError
	if err := h.d.DispatchJSON("addClass", []byte(`{}`)); !errors.As(err, &decodeErr) {
		t.Errorf("Expected DecodeError, got %v", err)
	}
	var domErr *dom.DOMError
	if err := h.d.DispatchJSON("addClass", []byte(`["div[","on"]`)); !errors.As(err, &domErr) {
		t.Errorf("Expected selector SyntaxError, got %v", err)
	}
}

func TestDispatchJSON_NullOptions(t *testing.T) {
	h := newHarness(t, `<body><button id="b" title="x">Go</button></body>`)
	if err := h.d.DispatchJSON("addEventListener", []byte(`["#b","click",null]`)); err != nil {
		t.Fatalf("DispatchJSON: %v", err)
	}
	if click(h.el(t, "b")) {
		t.Error("Expected null options to prevent the default action")
	}
	if len(h.emissions) != 1 {
		t.Errorf("Expected one emission, got %d", len(h.emissions))
	}

	if err := h.d.DispatchJSON("setProperty", []byte(`["#b","title",null]`)); err != nil {
		t.Fatalf("DispatchJSON setProperty: %v", err)
	}
	if got := h.el(t, "b").GetAttribute("title"); got != "null" {
		t.Errorf("Expected title null, got %q", got)
	}
}

func TestDispatch_NoLogFunc(t *testing.T) {
	doc := dom.NewDocument()
	d := NewDispatcher(doc, WithLogFunc(nil))
	if doc.DefaultView() == nil {
		t.Fatal("Expected a window to be attached")
	}
	if err := d.Dispatch(WindowScrollTo{X: 1, Y: 2}); err != nil {
		t.Errorf("Dispatch: %v", err)
	}
	if doc.DefaultView().ScrollY() != 2 {
		t.Errorf("Expected scrollY 2, got %v", doc.DefaultView().ScrollY())
	}
}
