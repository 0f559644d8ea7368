package ports

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/domports/dom"
)

// CapabilityError reports a resolved target that cannot perform what a
// command asked of it, such as a listener on something that is not an
// event target. It signals a selector/page mismatch the caller must fix;
// the dispatcher stops processing the command when it occurs.
type CapabilityError struct {
	Port       string
	Selector   string
	Event      string
	Capability string
	NodeName   string
	Keys       []string // enumerable property names of the target
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	var sb strings.Builder
	switch {
	case e.Port == "addSubmitListener":
		fmt.Fprintf(&sb, "cannot add submit listener to node with selector %s; node.%s is not a function", e.Selector, e.Capability)
	case e.Event != "":
		fmt.Fprintf(&sb, "cannot add event listener %s to node with selector %s; node.%s is not a function", e.Event, e.Selector, e.Capability)
	default:
		fmt.Fprintf(&sb, "%s: node %s with selector %s does not support %s", e.Port, e.NodeName, e.Selector, e.Capability)
	}
	if e.Keys != nil {
		sb.WriteString(" | Keys: ")
		sb.WriteString(strings.Join(e.Keys, ","))
	}
	return sb.String()
}

func newCapabilityError(port, selector, capability string, target dom.Target) *CapabilityError {
	err := &CapabilityError{
		Port:       port,
		Selector:   selector,
		Capability: capability,
		NodeName:   target.NodeName(),
		Keys:       []string{},
	}
	if e, ok := target.(dom.PropertyEnumerator); ok {
		err.Keys = e.PropertyNames()
	}
	return err
}

// DecodeError reports a payload that does not fit the port's shape.
type DecodeError struct {
	Port string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Port, e.Err)
}

// Unwrap provides the underlying error for use with errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnknownPortError reports a command name that is not an inbound port.
type UnknownPortError struct {
	Port string
}

// Error implements the error interface.
func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("unknown inbound port %q", e.Port)
}
