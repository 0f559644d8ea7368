package ports

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Emission is an outbound port message.
type Emission interface {
	// Port is the name of the outbound port.
	Port() string
	// Payload is the value sent on the port: a positional slice, or a bare
	// value for single-argument ports.
	Payload() any
}

// Emitter delivers emissions to the external application.
type Emitter interface {
	Emit(Emission)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Emission)

// Emit calls f(e).
func (f EmitterFunc) Emit(e Emission) {
	f(e)
}

// EventFired reports a DOM event caught by a listener added through
// addEventListener or addClickListener.
type EventFired struct {
	EventName string
	Selector  string
	Node      NodeRecord
	Event     EventRecord
}

// Submitted reports a form submission caught by addSubmitListener. Fields
// maps lowercased field names to a bool for checkboxes, a string for other
// controls, or nil when the form has no such control.
type Submitted struct {
	Selector string
	Fields   map[string]any
}

type InnerHTMLReplaced struct {
	Selector string
}

type AppendChildSucceeded struct {
	ParentSelector string
	HTML           string
}

type NodePosition struct {
	Selector string
	Position PositionRecord
}

type QuerySelectorResponse struct {
	Selector string
	Node     NodeRecord
}

func (e EventFired) Port() string            { return ListenerPort(e.EventName) }
func (e EventFired) Payload() any            { return []any{e.Selector, e.Node, e.Event} }
func (Submitted) Port() string               { return "onSubmit" }
func (e Submitted) Payload() any             { return []any{e.Selector, e.Fields} }
func (InnerHTMLReplaced) Port() string       { return "innerHtmlReplaced" }
func (e InnerHTMLReplaced) Payload() any     { return e.Selector }
func (AppendChildSucceeded) Port() string    { return "appendChildSuccess" }
func (e AppendChildSucceeded) Payload() any  { return []any{e.ParentSelector, e.HTML} }
func (NodePosition) Port() string            { return "nodePosition" }
func (e NodePosition) Payload() any          { return []any{e.Selector, e.Position} }
func (QuerySelectorResponse) Port() string   { return "querySelectorResponse" }
func (e QuerySelectorResponse) Payload() any { return []any{e.Selector, e.Node} }

// EmissionNames lists the fixed outbound ports. Listener ports are named
// per event by ListenerPort.
var EmissionNames = []string{
	"onSubmit",
	"innerHtmlReplaced",
	"appendChildSuccess",
	"nodePosition",
	"querySelectorResponse",
}

// ListenerPort returns the outbound port for events of the given type:
// "on" followed by the name with its first letter upper-cased, so "click"
// becomes "onClick".
func ListenerPort(event string) string {
	r, size := utf8.DecodeRuneInString(event)
	if r == utf8.RuneError {
		return "on" + event
	}
	return "on" + string(unicode.ToUpper(r)) + event[size:]
}

// IsListenerPort reports whether port has the on<Event> shape.
func IsListenerPort(port string) bool {
	rest, ok := strings.CutPrefix(port, "on")
	if !ok || rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}
