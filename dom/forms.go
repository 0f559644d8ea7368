package dom

import (
	"net/url"
	"strings"
)

// Type returns the lowercased type of an input or button. Inputs default to
// "text" and buttons to "submit".
func (e *Element) Type() string {
	t := strings.ToLower(strings.TrimSpace(e.GetAttribute("type")))
	switch e.LocalName() {
	case "input":
		if t == "" {
			return "text"
		}
	case "button":
		if t != "reset" && t != "button" {
			return "submit"
		}
	}
	return t
}

// Disabled reports whether a form control is disabled.
func (e *Element) Disabled() bool {
	if !isFormControl(e) {
		return false
	}
	return e.HasAttribute("disabled")
}

// Value returns the current value of a form control. Elements without a
// value return "" and false.
func (e *Element) Value() (string, bool) {
	ed := e.elementData
	switch e.LocalName() {
	case "input":
		if ed.dirtyValue != nil {
			return *ed.dirtyValue, true
		}
		if v, ok := e.LookupAttribute("value"); ok {
			return v, true
		}
		if t := e.Type(); t == "checkbox" || t == "radio" {
			return "on", true
		}
		return "", true
	case "textarea":
		if ed.dirtyValue != nil {
			return *ed.dirtyValue, true
		}
		return e.TextContent(), true
	case "select":
		if opt := e.selectedOption(); opt != nil {
			return opt.Value()
		}
		return "", true
	case "option":
		if v, ok := e.LookupAttribute("value"); ok {
			return v, true
		}
		return strings.Join(strings.Fields(e.TextContent()), " "), true
	case "button", "data", "li", "meter", "output", "param", "progress":
		return e.GetAttribute("value"), true
	}
	return "", false
}

// SetValue sets the value of a form control.
func (e *Element) SetValue(value string) {
	switch e.LocalName() {
	case "input", "textarea":
		e.elementData.dirtyValue = &value
	case "select":
		for _, opt := range e.options() {
			v, _ := opt.Value()
			opt.setSelected(v == value)
		}
	default:
		e.SetAttribute("value", value)
	}
}

// Checked returns the checkedness of checkbox and radio inputs.
func (e *Element) Checked() bool {
	if e.LocalName() != "input" {
		return false
	}
	if e.elementData.dirtyChecked != nil {
		return *e.elementData.dirtyChecked
	}
	return e.HasAttribute("checked")
}

// SetChecked sets the checkedness of an input. Checking a radio button
// unchecks the other radios of its group.
func (e *Element) SetChecked(checked bool) {
	if e.LocalName() != "input" {
		return
	}
	e.elementData.dirtyChecked = &checked
	if checked && e.Type() == "radio" {
		e.uncheckRadioGroup()
	}
}

func (e *Element) uncheckRadioGroup() {
	name := e.GetAttribute("name")
	if name == "" {
		return
	}
	root := e.AsNode()
	if form := e.Form(); form != nil {
		root = form.AsNode()
	} else {
		for root.parentNode != nil {
			root = root.parentNode
		}
	}
	walkElements(root, func(other *Element) bool {
		if other != e && other.LocalName() == "input" && other.Type() == "radio" && other.GetAttribute("name") == name {
			unchecked := false
			other.elementData.dirtyChecked = &unchecked
		}
		return true
	})
}

// HtmlFor returns the for attribute of a label or output.
func (e *Element) HtmlFor() string {
	return e.GetAttribute("for")
}

// Href returns the resolved href of a link element, or "" when the element
// has no href.
func (e *Element) Href() string {
	raw, ok := e.LookupAttribute("href")
	if !ok {
		return ""
	}
	if u := e.resolveURL(raw); u != nil {
		return u.String()
	}
	return raw
}

// Pathname returns the path component of a hyperlink's resolved href.
func (e *Element) Pathname() string {
	switch e.LocalName() {
	case "a", "area":
	default:
		return ""
	}
	raw, ok := e.LookupAttribute("href")
	if !ok {
		return ""
	}
	u := e.resolveURL(raw)
	if u == nil {
		return ""
	}
	if u.Path == "" && (u.Scheme == "http" || u.Scheme == "https") {
		return "/"
	}
	return u.EscapedPath()
}

func (e *Element) resolveURL(raw string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	if e.ownerDoc == nil {
		return ref
	}
	base, err := url.Parse(e.ownerDoc.URL())
	if err != nil || base.Scheme == "about" {
		return ref
	}
	return base.ResolveReference(ref)
}

// Content returns the content attribute of a <meta> element.
func (e *Element) Content() string {
	if e.LocalName() != "meta" {
		return ""
	}
	return e.GetAttribute("content")
}

// Form returns the form owner of a form control: the element referenced by
// its form attribute, else the nearest ancestor <form>.
func (e *Element) Form() *Element {
	if id := e.GetAttribute("form"); id != "" && e.ownerDoc != nil {
		if f := e.ownerDoc.GetElementById(id); f != nil && f.LocalName() == "form" {
			return f
		}
	}
	for p := e.ParentElement(); p != nil; p = p.ParentElement() {
		if p.LocalName() == "form" {
			return p
		}
	}
	return nil
}

// NamedControl returns the first form control owned by this form whose
// name or id equals name, mirroring form[name] lookup.
func (e *Element) NamedControl(name string) *Element {
	var found *Element
	walkElements(e.AsNode(), func(el *Element) bool {
		if isFormControl(el) && (el.GetAttribute("name") == name || el.Id() == name) {
			found = el
			return false
		}
		return true
	})
	return found
}

func (e *Element) options() []*Element {
	var opts []*Element
	walkElements(e.AsNode(), func(el *Element) bool {
		if el.LocalName() == "option" {
			opts = append(opts, el)
		}
		return true
	})
	return opts
}

func (e *Element) selectedOption() *Element {
	opts := e.options()
	for _, opt := range opts {
		if opt.selected() {
			return opt
		}
	}
	if len(opts) > 0 && !e.HasAttribute("multiple") {
		return opts[0]
	}
	return nil
}

func (e *Element) selected() bool {
	if e.elementData.dirtyChecked != nil {
		return *e.elementData.dirtyChecked
	}
	return e.HasAttribute("selected")
}

func (e *Element) setSelected(selected bool) {
	e.elementData.dirtyChecked = &selected
}

func isFormControl(e *Element) bool {
	switch e.LocalName() {
	case "button", "fieldset", "input", "object", "output", "select", "textarea":
		return true
	}
	return false
}

// isFocusable reports whether the element can take focus.
func (e *Element) isFocusable() bool {
	if !e.AsNode().IsConnected() {
		return false
	}
	if e.HasAttribute("tabindex") {
		return true
	}
	switch e.LocalName() {
	case "input":
		return e.Type() != "hidden" && !e.Disabled()
	case "button", "select", "textarea":
		return !e.Disabled()
	case "a", "area":
		return e.HasAttribute("href")
	}
	return strings.EqualFold(e.GetAttribute("contenteditable"), "true")
}

// Focus moves focus to the element when it is focusable, firing blur on the
// previously focused element and focus on this one.
func (e *Element) Focus() {
	doc := e.ownerDoc
	if doc == nil || !e.isFocusable() {
		return
	}
	prev := doc.documentData.activeElement
	if prev == e {
		return
	}
	doc.documentData.activeElement = e
	if prev != nil {
		prev.DispatchEvent(NewEvent("blur", EventInit{}))
	}
	e.DispatchEvent(NewEvent("focus", EventInit{}))
}

// Blur removes focus from the element if it has it.
func (e *Element) Blur() {
	doc := e.ownerDoc
	if doc == nil || doc.documentData.activeElement != e {
		return
	}
	doc.documentData.activeElement = nil
	e.DispatchEvent(NewEvent("blur", EventInit{}))
}

// Click simulates a primary activation: a cancelable, bubbling click is
// dispatched and, unless canceled, the element's activation behavior runs.
// Checkbox and radio inputs toggle before dispatch and revert when the click
// is canceled. Submit buttons submit their form.
func (e *Element) Click() {
	if e.Disabled() {
		return
	}

	var restore func()
	if e.LocalName() == "input" {
		switch e.Type() {
		case "checkbox":
			was := e.Checked()
			e.SetChecked(!was)
			restore = func() { e.SetChecked(was) }
		case "radio":
			prev := e.checkedRadioInGroup()
			e.SetChecked(true)
			restore = func() {
				e.SetChecked(false)
				if prev != nil {
					prev.SetChecked(true)
				}
			}
		}
	}

	ev := NewEvent("click", EventInit{Bubbles: true, Cancelable: true})
	if !e.DispatchEvent(ev) {
		if restore != nil {
			restore()
		}
		return
	}

	if restore != nil {
		e.DispatchEvent(NewEvent("input", EventInit{Bubbles: true}))
		e.DispatchEvent(NewEvent("change", EventInit{Bubbles: true}))
	}

	if e.isSubmitButton() {
		if form := e.Form(); form != nil {
			form.RequestSubmit()
		}
	}
}

func (e *Element) checkedRadioInGroup() *Element {
	name := e.GetAttribute("name")
	if name == "" || e.ParentNode() == nil {
		return nil
	}
	root := e.AsNode()
	for root.parentNode != nil {
		root = root.parentNode
	}
	var found *Element
	walkElements(root, func(other *Element) bool {
		if other.LocalName() == "input" && other.Type() == "radio" && other.GetAttribute("name") == name && other.Checked() {
			found = other
			return false
		}
		return true
	})
	return found
}

func (e *Element) isSubmitButton() bool {
	switch e.LocalName() {
	case "button":
		return e.Type() == "submit"
	case "input":
		t := e.Type()
		return t == "submit" || t == "image"
	}
	return false
}

// RequestSubmit fires a cancelable, bubbling submit event at a form.
// Navigation is not modeled, so the default action does nothing.
func (e *Element) RequestSubmit() bool {
	if e.LocalName() != "form" {
		return false
	}
	return e.DispatchEvent(NewEvent("submit", EventInit{Bubbles: true, Cancelable: true}))
}
