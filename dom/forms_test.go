package dom

import (
	"testing"
)

func TestElement_ValueAndChecked(t *testing.T) {
	doc, body := newTestPage(t)
	if err := body.SetInnerHTML(`
		<form id="f">
			<input name="email" value="a@b.c">
			<input type="checkbox" name="agree" checked>
			<textarea name="note">hello</textarea>
			<select name="size"><option>S</option><option value="m" selected>Medium</option></select>
		</form>`); err != nil {
		t.Fatalf("SetInnerHTML: %v", err)
	}
	form := doc.GetElementById("f")

	email := form.NamedControl("email")
	if v, _ := email.Value(); v != "a@b.c" {
		t.Errorf("Expected 'a@b.c', got %q", v)
	}
	email.SetValue("x@y.z")
	if v, _ := email.Value(); v != "x@y.z" {
		t.Errorf("Expected 'x@y.z', got %q", v)
	}
	if email.GetAttribute("value") != "a@b.c" {
		t.Error("Expected SetValue not to touch the value attribute")
	}

	agree := form.NamedControl("agree")
	if !agree.Checked() {
		t.Error("Expected checkbox to start checked")
	}
	agree.SetChecked(false)
	if agree.Checked() {
		t.Error("Expected checkbox to be unchecked")
	}

	if v, _ := form.NamedControl("note").Value(); v != "hello" {
		t.Errorf("Expected textarea value 'hello', got %q", v)
	}

	size := form.NamedControl("size")
	if v, _ := size.Value(); v != "m" {
		t.Errorf("Expected select value 'm', got %q", v)
	}
	size.SetValue("S")
	if v, _ := size.Value(); v != "S" {
		t.Errorf("Expected select value 'S', got %q", v)
	}

	if _, ok := body.Value(); ok {
		t.Error("Expected body to have no value")
	}
}

func TestElement_HrefAndPathname(t *testing.T) {
	doc, body := newTestPage(t)
	doc.SetURL("https://example.com/app/index.html")
	a := doc.CreateElement("a")
	body.AppendChild(a.AsNode())

	if a.Href() != "" {
		t.Errorf("Expected empty href, got %q", a.Href())
	}
	a.SetAttribute("href", "../inbox?x=1")
	if got := a.Href(); got != "https://example.com/inbox?x=1" {
		t.Errorf("Expected resolved href, got %q", got)
	}
	if got := a.Pathname(); got != "/inbox" {
		t.Errorf("Expected pathname '/inbox', got %q", got)
	}
}

func TestElement_ClickCheckbox(t *testing.T) {
	doc, body := newTestPage(t)
	cb := doc.CreateElement("input")
	cb.SetAttribute("type", "checkbox")
	body.AppendChild(cb.AsNode())

	changes := 0
	cb.AddEventListener("change", func(*Event) { changes++ }, ListenerOptions{})

	cb.Click()
	if !cb.Checked() {
		t.Error("Expected click to check the checkbox")
	}
	if changes != 1 {
		t.Errorf("Expected 1 change event, got %d", changes)
	}

	id := cb.AddEventListener("click", func(ev *Event) { ev.PreventDefault() }, ListenerOptions{})
	cb.Click()
	if !cb.Checked() {
		t.Error("Expected canceled click to restore the checked state")
	}
	if changes != 1 {
		t.Errorf("Expected no change event after cancel, got %d", changes)
	}

	cb.RemoveEventListener("click", id)
	cb.SetAttribute("disabled", "")
	cb.Click()
	if !cb.Checked() {
		t.Error("Expected disabled checkbox to ignore clicks")
	}
}

func TestElement_ClickRadioGroup(t *testing.T) {
	doc, body := newTestPage(t)
	body.SetInnerHTML(`<input type="radio" name="g" id="a" checked><input type="radio" name="g" id="b">`)
	a, b := doc.GetElementById("a"), doc.GetElementById("b")

	b.Click()
	if a.Checked() || !b.Checked() {
		t.Errorf("Expected only b checked, got a=%v b=%v", a.Checked(), b.Checked())
	}
}

func TestElement_ClickSubmitsForm(t *testing.T) {
	doc, body := newTestPage(t)
	body.SetInnerHTML(`<form id="f"><button id="go">Go</button><button id="plain" type="button">x</button></form>`)
	form := doc.GetElementById("f")

	submits := 0
	form.AddEventListener("submit", func(ev *Event) {
		submits++
		ev.PreventDefault()
	}, ListenerOptions{})

	doc.GetElementById("go").Click()
	doc.GetElementById("plain").Click()
	if submits != 1 {
		t.Errorf("Expected 1 submit, got %d", submits)
	}
}

func TestElement_Focus(t *testing.T) {
	doc, body := newTestPage(t)
	body.SetInnerHTML(`<input id="a"><input id="b"><div id="c"></div>`)
	a, b := doc.GetElementById("a"), doc.GetElementById("b")

	var events []string
	a.AddEventListener("blur", func(*Event) { events = append(events, "a:blur") }, ListenerOptions{})
	b.AddEventListener("focus", func(*Event) { events = append(events, "b:focus") }, ListenerOptions{})

	a.Focus()
	b.Focus()
	if doc.ActiveElement() != b {
		t.Error("Expected b to be the active element")
	}
	if len(events) != 2 || events[0] != "a:blur" || events[1] != "b:focus" {
		t.Errorf("Expected [a:blur b:focus], got %v", events)
	}

	doc.GetElementById("c").Focus()
	if doc.ActiveElement() != b {
		t.Error("Expected a non-focusable div not to take focus")
	}

	b.Remove()
	if doc.ActiveElement() != body {
		t.Error("Expected focus to return to body when the focused element is removed")
	}
}
