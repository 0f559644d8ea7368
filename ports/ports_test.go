package ports

import (
	"testing"

	"github.com/chrisuehlinger/domports/dom"
	"github.com/chrisuehlinger/domports/html"
)

type logEntry struct {
	name string
	args []any
}

// harness is a dispatcher over a parsed page that records everything it
// emits and logs.
type harness struct {
	doc       *dom.Document
	d         *Dispatcher
	emissions []Emission
	logs      []logEntry
}

func newHarness(t *testing.T, markup string, opts ...Option) *harness {
	t.Helper()
	doc, err := html.ParseString(markup, "https://example.com/app/index.html")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	h := &harness{doc: doc}
	opts = append([]Option{
		WithEmitter(EmitterFunc(func(e Emission) { h.emissions = append(h.emissions, e) })),
		WithLogFunc(func(name string, args ...any) { h.logs = append(h.logs, logEntry{name, args}) }),
	}, opts...)
	h.d = NewDispatcher(doc, opts...)
	return h
}

func (h *harness) dispatch(t *testing.T, cmd Command) {
	t.Helper()
	if err := h.d.Dispatch(cmd); err != nil {
		t.Fatalf("Dispatch(%s): %v", cmd.Port(), err)
	}
}

func (h *harness) el(t *testing.T, id string) *dom.Element {
	t.Helper()
	el := h.doc.GetElementById(id)
	if el == nil {
		t.Fatalf("no element #%s", id)
	}
	return el
}

func (h *harness) logNames() []string {
	names := make([]string, len(h.logs))
	for i, l := range h.logs {
		names[i] = l.name
	}
	return names
}

// fakeTarget resolves like a node but supports no capability.
type fakeTarget struct{}

func (fakeTarget) NodeName() string        { return "#fake" }
func (fakeTarget) PropertyNames() []string { return []string{"alpha", "beta"} }
