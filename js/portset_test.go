package js

import (
	"slices"
	"strings"
	"testing"

	"github.com/chrisuehlinger/domports/dom"
	"github.com/chrisuehlinger/domports/html"
	"github.com/chrisuehlinger/domports/ports"
)

// newApp wires a runtime, a port set and a dispatcher over markup, and
// exposes the set to scripts as the global app.
func newApp(t *testing.T, markup string) (*Runtime, *PortSet, *dom.Document) {
	t.Helper()
	doc, err := html.ParseString(markup, "https://example.com/")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	r := NewRuntime()
	ps := NewPortSet(r)
	Register(ps, ports.NewDispatcher(doc, ports.WithEmitter(ps)))
	if err := r.SetGlobal("app", ps.App()); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	return r, ps, doc
}

func TestPortSet_Keys(t *testing.T) {
	r, ps, _ := newApp(t, "")

	want := len(ports.CommandNames) + len(ports.EmissionNames)
	if got := mustExecute(t, r, "Object.keys(app.ports).length").ToInteger(); got != int64(want) {
		t.Errorf("Expected %d ports, got %d", want, got)
	}
	if !mustExecute(t, r, `"toggleClass" in app.ports`).ToBoolean() {
		t.Error("Expected toggleClass port")
	}
	if !mustExecute(t, r, `app.ports.notAPort === undefined`).ToBoolean() {
		t.Error("Expected unknown names to be absent")
	}
	if !mustExecute(t, r, `typeof app.ports.onMouseover.subscribe === "function"`).ToBoolean() {
		t.Error("Expected listener port to be created on access")
	}
	if !slices.Contains(ps.Names(), "onMouseover") {
		t.Errorf("Expected onMouseover in %v", ps.Names())
	}
	if _, err := r.Execute(`app.ports.addClass = 1; if (typeof app.ports.addClass !== "object") throw new Error("replaced")`); err != nil {
		t.Errorf("Expected ports to be read-only: %v", err)
	}
}

func TestPortSet_SubscribeUnsubscribe(t *testing.T) {
	r, ps, _ := newApp(t, "")

	mustExecute(t, r, `
		var got = [];
		function a(v) { got.push("a" + v); }
		function b(v) { got.push("b" + v); }
		app.ports.onPing.subscribe(a);
		app.ports.onPing.subscribe(b);
		app.ports.onPing.send(1);
		app.ports.onPing.unsubscribe(a);
		app.ports.onPing.unsubscribe(function () {});
		app.ports.onPing.send(2);
	`)
	if got := mustExecute(t, r, "got.join(',')").String(); got != "a1,b1,b2" {
		t.Errorf("Expected 'a1,b1,b2', got %q", got)
	}
	if n := ps.Port("onPing").Subscribers(); n != 1 {
		t.Errorf("Expected 1 subscriber, got %d", n)
	}

	if _, err := r.Execute(`app.ports.onPing.subscribe("nope")`); err == nil {
		t.Error("Expected TypeError for a non-function subscriber")
	}
}

func TestPortSet_SubscriberExceptionDoesNotStopDelivery(t *testing.T) {
	r, _, _ := newApp(t, "")

	mustExecute(t, r, `
		var reached = false;
		app.ports.onPing.subscribe(function () { throw new Error("first"); });
		app.ports.onPing.subscribe(function () { reached = true; });
		app.ports.onPing.send(null);
	`)
	if !mustExecute(t, r, "reached").ToBoolean() {
		t.Error("Expected second subscriber to run")
	}
	if len(r.Errors()) != 1 {
		t.Errorf("Expected the exception to be recorded, got %v", r.Errors())
	}
}

func TestRegister_CommandsAndEmissions(t *testing.T) {
	r, _, doc := newApp(t, `<body>
		<button id="go" class="btn">Go</button>
		<ul id="list"></ul>
	</body>`)

	mustExecute(t, r, `
		var events = [];
		app.ports.onClick.subscribe(function (args) {
			events.push("click " + args[0] + " " + args[1].id);
		});
		app.ports.innerHtmlReplaced.subscribe(function (sel) {
			events.push("replaced " + sel);
		});
		app.ports.querySelectorResponse.subscribe(function (args) {
			events.push("found " + args[1].id + " " + JSON.stringify(args[1].data));
		});
		app.ports.addClickListener.send("#go");
		app.ports.addClass.send(["#go", "active"]);
		app.ports.innerHtml.send(["#list", "<li>a</li><li>b</li>"]);
		app.ports.querySelector.send("#go");
	`)

	doc.GetElementById("go").Click()

	want := []string{
		"replaced #list",
		`found go []`,
		"click #go go",
	}
	got := mustExecute(t, r, "events").Export()
	list, _ := got.([]any)
	if len(list) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i, w := range want {
		if list[i] != w {
			t.Errorf("Event %d: expected %q, got %q", i, w, list[i])
		}
	}

	if cls := doc.GetElementById("go").ClassName(); cls != "btn active" {
		t.Errorf("Expected class 'btn active', got %q", cls)
	}
	if n := len(doc.GetElementById("list").Children()); n != 2 {
		t.Errorf("Expected 2 list items, got %d", n)
	}
}

func TestRegister_NullOptionsUseDefaults(t *testing.T) {
	r, _, doc := newApp(t, `<body><a id="a" href="/next">Next</a></body>`)

	mustExecute(t, r, `
		var fired = 0;
		app.ports.onClick.subscribe(function () { fired++; });
		app.ports.addEventListener.send(["#a", "click", null]);
		app.ports.addEventListener.send(["#a", "mousedown", undefined]);
	`)

	ev := dom.NewEvent("click", dom.EventInit{Bubbles: true, Cancelable: true})
	if doc.GetElementById("a").DispatchEvent(ev) {
		t.Error("Expected the default action to be prevented")
	}
	if got := mustExecute(t, r, "fired").ToInteger(); got != 1 {
		t.Errorf("Expected 1 click, got %d", got)
	}
}

func TestRegister_ErrorsAreThrown(t *testing.T) {
	r, _, _ := newApp(t, `<div id="a"></div>`)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"invalid selector", `app.ports.addClass.send(["[[", "x"])`, ""},
		{"malformed payload", `app.ports.addClass.send("only-one")`, "addClass"},
		{"wrong element type", `app.ports.windowScrollTo.send(["a", 1])`, "windowScrollTo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := mustExecute(t, r, `(function () {
				try { `+tt.code+`; return ""; } catch (e) { return String(e.message); }
			})()`).String()
			if msg == "" {
				t.Fatal("Expected the send to throw")
			}
			if !strings.Contains(msg, tt.want) {
				t.Errorf("Expected message containing %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestPortSet_EmitUsesJSONNames(t *testing.T) {
	r, ps, _ := newApp(t, "")

	mustExecute(t, r, `
		var pos = null;
		app.ports.nodePosition.subscribe(function (args) { pos = args; });
	`)
	ps.Emit(ports.NodePosition{
		Selector: "#x",
		Position: ports.PositionRecord{Top: 1, Right: 2, Bottom: 3, Left: 4},
	})

	got := mustExecute(t, r, `pos[0] + ":" + pos[1].top + "," + pos[1].right + "," + pos[1].bottom + "," + pos[1].left`).String()
	if got != "#x:1,2,3,4" {
		t.Errorf("Expected '#x:1,2,3,4', got %q", got)
	}
}

func TestPortSet_JSON(t *testing.T) {
	r, ps, _ := newApp(t, "")

	tests := []struct {
		code string
		want string
	}{
		{`undefined`, `null`},
		{`[".a", {"preventDefault": false}]`, `[".a",{"preventDefault":false}]`},
		{`"#id"`, `"#id"`},
	}
	for _, tt := range tests {
		v := mustExecute(t, r, "("+tt.code+")")
		got, err := ps.JSON(v)
		if err != nil {
			t.Fatalf("JSON(%s): %v", tt.code, err)
		}
		if string(got) != tt.want {
			t.Errorf("JSON(%s) = %s, expected %s", tt.code, got, tt.want)
		}
	}
}
