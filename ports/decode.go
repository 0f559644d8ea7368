package ports

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeCommand decodes the JSON payload sent on the named inbound port.
// Multi-argument ports carry a positional array; single-argument ports
// carry the bare value. Ports without arguments ignore the payload.
func DecodeCommand(port string, payload []byte) (Command, error) {
	var (
		cmd Command
		err error
	)
	switch port {
	case "addEventListener":
		var c AddEventListener
		err = decodeTuple(payload, 2, &c.Selector, &c.Event, &c.Options)
		cmd = c
	case "addClickListener":
		var c AddClickListener
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "addSubmitListener":
		var c AddSubmitListener
		err = decodeTuple(payload, 2, &c.Selector, &c.Fields)
		cmd = c
	case "addClass":
		var c AddClass
		err = decodeTuple(payload, 2, &c.Selector, &c.ClassName)
		cmd = c
	case "removeClass":
		var c RemoveClass
		err = decodeTuple(payload, 2, &c.Selector, &c.ClassName)
		cmd = c
	case "toggleClass":
		var c ToggleClass
		err = decodeTuple(payload, 2, &c.Selector, &c.ClassName)
		cmd = c
	case "innerHtml":
		var c InnerHTML
		err = decodeTuple(payload, 2, &c.Selector, &c.HTML)
		cmd = c
	case "appendChild":
		var c AppendChild
		err = decodeTuple(payload, 2, &c.ParentSelector, &c.HTML)
		cmd = c
	case "removeNodes":
		var c RemoveNodes
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "click":
		var c Click
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "focus":
		var c Focus
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "windowScrollTo":
		var c WindowScrollTo
		err = decodeTuple(payload, 2, &c.X, &c.Y)
		cmd = c
	case "windowScrollToSelector":
		var c WindowScrollToSelector
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "preventTouchScroll":
		cmd = PreventTouchScroll{}
	case "allowTouchScroll":
		cmd = AllowTouchScroll{}
	case "setProperty":
		var c SetProperty
		err = decodeTuple(payload, 3, &c.Selector, &c.Property, &c.Value)
		cmd = c
	case "setCssProperty":
		var c SetCSSProperty
		err = decodeTuple(payload, 3, &c.Selector, &c.Property, &c.Value)
		cmd = c
	case "removeCssProperty":
		var c RemoveCSSProperty
		err = decodeTuple(payload, 2, &c.Selector, &c.Property)
		cmd = c
	case "setDataAttribute":
		var c SetDataAttribute
		err = decodeTuple(payload, 3, &c.Selector, &c.Key, &c.Value)
		cmd = c
	case "getNodePosition":
		var c GetNodePosition
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "querySelector":
		var c QuerySelector
		err = json.Unmarshal(payload, &c.Selector)
		cmd = c
	case "preloadImage":
		var c PreloadImage
		err = json.Unmarshal(payload, &c.URL)
		cmd = c
	default:
		return nil, &UnknownPortError{Port: port}
	}
	if err != nil {
		return nil, &DecodeError{Port: port, Err: err}
	}
	return cmd, nil
}

// decodeTuple decodes a JSON array into dst positionally. The first
// required elements must be present; later ones are optional and keep
// their zero value when missing or null.
func decodeTuple(payload []byte, required int, dst ...any) error {
	var elems []jsoniter.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return err
	}
	if len(elems) < required {
		return fmt.Errorf("expected at least %d elements, got %d", required, len(elems))
	}
	if len(elems) > len(dst) {
		return fmt.Errorf("expected at most %d elements, got %d", len(dst), len(elems))
	}
	for i, raw := range elems {
		if isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// isNull reports a null tuple element. jsoniter hands a null array element
// back as an empty RawMessage.
func isNull(raw jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}
