// Package ports adapts DOM operations to a message-passing boundary. An
// external application sends typed commands on named inbound ports; the
// Dispatcher performs the matching DOM side effect and answers queries and
// listener callbacks with emissions on outbound ports.
package ports

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/dom"
	"github.com/chrisuehlinger/domports/html"
	"github.com/chrisuehlinger/domports/layout"
)

// LogFunc receives a port name and its arguments before each command runs
// and whenever an emission is sent.
type LogFunc func(name string, args ...any)

// Preloader starts an image fetch that is never reported on. Relative
// references resolve against base.
type Preloader interface {
	Preload(base, ref string)
}

// Dispatcher executes commands against one document.
type Dispatcher struct {
	doc       *dom.Document
	resolver  *Resolver
	emitter   Emitter
	log       LogFunc
	logger    *zap.Logger
	layout    *layout.Engine
	preloader Preloader
	touch     *TouchScrollGuard
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEmitter sets where emissions are delivered. Without one they are
// dropped.
func WithEmitter(e Emitter) Option {
	return func(d *Dispatcher) {
		d.emitter = e
	}
}

// WithLogFunc sets the command log side-channel.
func WithLogFunc(log LogFunc) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger.Named("ports")
	}
}

// WithLayout reflows the document with engine before geometry is read.
func WithLayout(engine *layout.Engine) Option {
	return func(d *Dispatcher) {
		d.layout = engine
	}
}

// WithPreloader sets the fetcher used by preloadImage.
func WithPreloader(p Preloader) Option {
	return func(d *Dispatcher) {
		d.preloader = p
	}
}

// WithTouchScrollGuard shares a guard owned by the caller. By default the
// dispatcher creates its own for the document.
func WithTouchScrollGuard(g *TouchScrollGuard) Option {
	return func(d *Dispatcher) {
		d.touch = g
	}
}

// NewDispatcher creates a dispatcher for doc. A window is attached when
// the document has none.
func NewDispatcher(doc *dom.Document, opts ...Option) *Dispatcher {
	if doc.DefaultView() == nil {
		dom.NewWindow(doc)
	}
	d := &Dispatcher{
		doc:      doc,
		resolver: NewResolver(doc),
		emitter:  EmitterFunc(func(Emission) {}),
		log:      func(string, ...any) {},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.touch == nil {
		d.touch = NewTouchScrollGuard(doc)
	}
	return d
}

// Document returns the document commands act on.
func (d *Dispatcher) Document() *dom.Document {
	return d.doc
}

// Resolver returns the dispatcher's selector resolver.
func (d *Dispatcher) Resolver() *Resolver {
	return d.resolver
}

// TouchScrollGuard returns the guard toggled by the touch-scroll ports.
func (d *Dispatcher) TouchScrollGuard() *TouchScrollGuard {
	return d.touch
}

// DispatchJSON decodes payload for the named port and dispatches it.
func (d *Dispatcher) DispatchJSON(port string, payload []byte) error {
	cmd, err := DecodeCommand(port, payload)
	if err != nil {
		return err
	}
	return d.Dispatch(cmd)
}

// Dispatch runs cmd to completion. Selectors that match nothing make the
// command a no-op. Errors come from invalid selectors, targets lacking a
// required capability (*CapabilityError), and DOM operations that reject
// their input.
func (d *Dispatcher) Dispatch(cmd Command) error {
	var err error
	switch c := cmd.(type) {
	case AddEventListener:
		err = d.addEventListener(c.Selector, c.Event, c.Options)
	case AddClickListener:
		err = d.addEventListener(c.Selector, "click", nil)
	case AddSubmitListener:
		err = d.addSubmitListener(c)
	case AddClass:
		d.log("addClass", c.Selector, c.ClassName)
		err = d.eachClassName(c.Port(), c.Selector, func(className string) string {
			return addClass(className, c.ClassName)
		})
	case RemoveClass:
		d.log("removeClass", c.Selector, c.ClassName)
		err = d.eachClassName(c.Port(), c.Selector, func(className string) string {
			return removeClass(className, c.ClassName)
		})
	case ToggleClass:
		d.log("toggleClass", c.Selector, c.ClassName)
		err = d.eachClassName(c.Port(), c.Selector, func(className string) string {
			if hasClass(className, c.ClassName) {
				return removeClass(className, c.ClassName)
			}
			return addClass(className, c.ClassName)
		})
	case InnerHTML:
		err = d.innerHTML(c)
	case AppendChild:
		err = d.appendChild(c)
	case RemoveNodes:
		err = d.removeNodes(c)
	case Click:
		err = d.click(c)
	case Focus:
		err = d.focus(c)
	case WindowScrollTo:
		d.log("windowScrollTo", c.X, c.Y)
		d.doc.DefaultView().ScrollTo(c.X, c.Y)
	case WindowScrollToSelector:
		err = d.windowScrollToSelector(c)
	case PreventTouchScroll:
		d.log("preventTouchScroll")
		d.touch.Enable()
	case AllowTouchScroll:
		d.log("allowTouchScroll")
		d.touch.Disable()
	case SetProperty:
		err = d.setProperty(c)
	case SetCSSProperty:
		d.log("setCssProperty", c.Selector, c.Property, c.Value)
		err = d.eachStyle(c.Port(), c.Selector, func(s *dom.CSSStyleDeclaration) {
			s.SetProperty(c.Property, c.Value)
		})
	case RemoveCSSProperty:
		d.log("removeCssProperty", c.Selector, c.Property)
		err = d.eachStyle(c.Port(), c.Selector, func(s *dom.CSSStyleDeclaration) {
			s.RemoveProperty(c.Property)
		})
	case SetDataAttribute:
		err = d.setDataAttribute(c)
	case GetNodePosition:
		err = d.getNodePosition(c)
	case QuerySelector:
		err = d.querySelector(c)
	case PreloadImage:
		d.log("preloadImage", c.URL)
		if d.preloader != nil {
			d.preloader.Preload(d.doc.URL(), c.URL)
		}
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}
	if err != nil {
		d.logger.Debug("Command failed", zap.String("port", cmd.Port()), zap.Error(err))
	}
	return err
}

func (d *Dispatcher) emit(e Emission, logArgs ...any) {
	d.log(e.Port(), logArgs...)
	d.emitter.Emit(e)
}

func (d *Dispatcher) reflow() {
	if d.layout != nil {
		d.layout.Reflow(d.doc)
	}
}

func (d *Dispatcher) addEventListener(selector, event string, opts *ListenerOptions) error {
	d.log("addEventListener", selector, event, opts)
	targets, err := d.resolver.All(selector)
	if err != nil {
		return err
	}

	preventDefault := opts == nil || opts.PreventDefault == nil || *opts.PreventDefault
	stopPropagation := opts != nil && opts.StopPropagation

	for _, target := range targets {
		listenable, ok := target.(dom.Listenable)
		if !ok {
			err := newCapabilityError("addEventListener", selector, "addEventListener", target)
			err.Event = event
			return err
		}
		listenable.AddEventListener(event, func(ev *dom.Event) {
			if preventDefault {
				ev.PreventDefault()
			}
			if stopPropagation {
				ev.StopPropagation()
			}
			d.reflow()
			fired := EventFired{
				EventName: event,
				Selector:  selector,
				Node:      NewNodeRecord(target),
				Event:     NewEventRecord(ev),
			}
			d.emit(fired, selector, fired.Node, fired.Event)
		}, dom.ListenerOptions{})
	}
	return nil
}

func (d *Dispatcher) addSubmitListener(c AddSubmitListener) error {
	d.log("addSubmitListener", c.Selector, c.Fields)
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		listenable, ok := target.(dom.Listenable)
		if !ok {
			return newCapabilityError(c.Port(), c.Selector, "addEventListener", target)
		}
		listenable.AddEventListener("submit", func(ev *dom.Event) {
			ev.PreventDefault()
			submitted := Submitted{Selector: c.Selector, Fields: submittedFields(ev.CurrentTarget(), c.Fields)}
			d.emit(submitted, c.Selector, submitted.Fields)
		}, dom.ListenerOptions{})
	}
	return nil
}

// submittedFields reads each named control of form. Keys are lowercased;
// checkboxes report their checked state and other controls their value.
func submittedFields(form dom.Target, fields []string) map[string]any {
	values := make(map[string]any, len(fields))
	el, _ := form.(*dom.Element)
	for _, field := range fields {
		key := strings.ToLower(field)
		var control *dom.Element
		if el != nil {
			control = el.NamedControl(field)
		}
		switch {
		case control == nil:
			values[key] = nil
		case control.Type() == "checkbox":
			values[key] = control.Checked()
		default:
			v, _ := control.Value()
			values[key] = v
		}
	}
	return values
}

func (d *Dispatcher) eachClassName(port, selector string, update func(string) string) error {
	targets, err := d.resolver.All(selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		el, ok := target.(*dom.Element)
		if !ok {
			return newCapabilityError(port, selector, "className", target)
		}
		el.SetClassName(update(el.ClassName()))
	}
	return nil
}

func (d *Dispatcher) eachStyle(port, selector string, apply func(*dom.CSSStyleDeclaration)) error {
	targets, err := d.resolver.All(selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		styled, ok := target.(dom.Styled)
		if !ok {
			return newCapabilityError(port, selector, "style", target)
		}
		apply(styled.Style())
	}
	return nil
}

func (d *Dispatcher) innerHTML(c InnerHTML) error {
	d.log("innerHtml", c.Selector, htmlPreview(c.HTML))
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		switch t := target.(type) {
		case *dom.Element:
			if err := t.SetInnerHTML(c.HTML); err != nil {
				return err
			}
		case dom.PropertySetter:
			// The window and document have no markup; the assignment is
			// kept as a plain property.
			if err := t.SetProperty("innerHTML", c.HTML); err != nil {
				return err
			}
		}
	}
	d.emitter.Emit(InnerHTMLReplaced{Selector: c.Selector})
	return nil
}

// htmlPreview formats markup for the log: empty stays empty, otherwise a
// newline and at most 200 characters, with "..." when truncated.
func htmlPreview(markup string) string {
	if markup == "" {
		return ""
	}
	runes := []rune(markup)
	if len(runes) > 200 {
		return "\n" + string(runes[:200]) + "..."
	}
	return "\n" + markup
}

func (d *Dispatcher) appendChild(c AppendChild) error {
	d.log("appendChild", c.ParentSelector, c.HTML)
	target, err := d.resolver.First(c.ParentSelector)
	if err != nil {
		return err
	}
	if target == nil {
		d.log("appendChild [parent not found]", c.ParentSelector, c.HTML)
		return nil
	}
	parent, ok := target.(dom.Container)
	if !ok {
		return newCapabilityError(c.Port(), c.ParentSelector, "appendChild", target)
	}

	nodes, err := html.ParseFragment(d.doc, c.HTML)
	if err != nil {
		return err
	}
	child := html.FirstElement(nodes)
	if child == nil {
		d.log("appendChild [no element]", c.ParentSelector, c.HTML)
		return nil
	}
	if _, err := parent.AppendChild(child.AsNode()); err != nil {
		return err
	}
	d.emit(AppendChildSucceeded{ParentSelector: c.ParentSelector, HTML: c.HTML}, c.ParentSelector, c.HTML)
	return nil
}

func (d *Dispatcher) removeNodes(c RemoveNodes) error {
	d.log("removeNodes", c.Selector)
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		el, ok := target.(*dom.Element)
		if !ok || el.ParentNode() == nil {
			continue
		}
		if _, err := el.ParentNode().RemoveChild(el.AsNode()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) click(c Click) error {
	d.log("click", c.Selector)
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		a, ok := target.(dom.Activatable)
		if !ok {
			return newCapabilityError(c.Port(), c.Selector, "click", target)
		}
		a.Click()
	}
	return nil
}

func (d *Dispatcher) focus(c Focus) error {
	d.log("focus", c.Selector)
	target, err := d.resolver.First(c.Selector)
	if err != nil || target == nil {
		return err
	}
	f, ok := target.(dom.Focusable)
	if !ok {
		return newCapabilityError(c.Port(), c.Selector, "focus", target)
	}
	f.Focus()
	return nil
}

func (d *Dispatcher) windowScrollToSelector(c WindowScrollToSelector) error {
	d.log("windowScrollToSelector", c.Selector)
	target, err := d.resolver.First(c.Selector)
	if err != nil {
		return err
	}
	if target == nil {
		d.log("windowScrollToSelector [node not found]", c.Selector)
		return nil
	}
	var top float64
	if el, ok := target.(*dom.Element); ok {
		d.reflow()
		top, _ = absoluteOffset(el)
	}
	d.doc.DefaultView().ScrollTo(0, top)
	return nil
}

func (d *Dispatcher) setProperty(c SetProperty) error {
	d.log("setProperty", c.Selector, c.Property, c.Value)
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		setter, ok := target.(dom.PropertySetter)
		if !ok {
			return newCapabilityError(c.Port(), c.Selector, "setProperty", target)
		}
		if err := setter.SetProperty(c.Property, c.Value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) setDataAttribute(c SetDataAttribute) error {
	d.log("setDataAttribute", c.Selector, c.Key, c.Value)
	targets, err := d.resolver.All(c.Selector)
	if err != nil {
		return err
	}
	for _, target := range targets {
		holder, ok := target.(dom.DatasetHolder)
		if !ok {
			return newCapabilityError(c.Port(), c.Selector, "dataset", target)
		}
		if err := holder.Dataset().Set(c.Key, c.Value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) getNodePosition(c GetNodePosition) error {
	d.log("getNodePosition", c.Selector)
	target, err := d.resolver.First(c.Selector)
	if err != nil {
		return err
	}
	el, ok := target.(*dom.Element)
	if !ok {
		d.log("getNodePosition [not found]", c.Selector)
		return nil
	}
	d.reflow()
	pos := NodePosition{Selector: c.Selector, Position: NewPositionRecord(el)}
	d.emit(pos, c.Selector, pos.Position)
	return nil
}

func (d *Dispatcher) querySelector(c QuerySelector) error {
	d.log("querySelector", c.Selector)
	target, err := d.resolver.First(c.Selector)
	if err != nil {
		return err
	}
	if target == nil {
		d.log("querySelector [not found]", c.Selector)
		return nil
	}
	d.reflow()
	resp := QuerySelectorResponse{Selector: c.Selector, Node: NewNodeRecord(target)}
	d.emit(resp, c.Selector, resp.Node)
	return nil
}
