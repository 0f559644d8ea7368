package js

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dop251/goja"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/ports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// subscriber is either a JavaScript function or a Go handler.
type subscriber struct {
	fn     goja.Callable
	value  goja.Value
	handle func(goja.Value) error
}

// Port is one named channel of app.ports. Every port exposes
// subscribe(fn), unsubscribe(fn) and send(value) to scripts.
type Port struct {
	name        string
	set         *PortSet
	obj         *goja.Object
	subscribers []subscriber
}

// Name returns the port name.
func (p *Port) Name() string {
	return p.name
}

// Subscribe adds a Go handler. Handlers run in subscription order after
// the JavaScript subscribers registered before them.
func (p *Port) Subscribe(handle func(goja.Value) error) {
	p.subscribers = append(p.subscribers, subscriber{handle: handle})
}

// Subscribers returns the number of subscribers.
func (p *Port) Subscribers() int {
	return len(p.subscribers)
}

// Send delivers v to every subscriber. An exception thrown by a JavaScript
// subscriber is recorded on the runtime and does not stop delivery. The
// first error returned by a Go handler is returned after delivery.
func (p *Port) Send(v goja.Value) error {
	var first error
	for _, s := range slices.Clone(p.subscribers) {
		if s.handle != nil {
			if err := s.handle(v); err != nil && first == nil {
				first = err
			}
			continue
		}
		p.set.rt.call(s.fn, []goja.Value{v})
	}
	return first
}

func (p *Port) subscribe(call goja.FunctionCall) goja.Value {
	vm := p.set.rt.vm
	arg := call.Argument(0)
	fn, ok := goja.AssertFunction(arg)
	if !ok {
		panic(vm.NewTypeError("%s.subscribe: argument is not a function", p.name))
	}
	p.subscribers = append(p.subscribers, subscriber{fn: fn, value: arg})
	return goja.Undefined()
}

func (p *Port) unsubscribe(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if i := slices.IndexFunc(p.subscribers, func(s subscriber) bool {
		return s.value != nil && s.value.SameAs(arg)
	}); i >= 0 {
		p.subscribers = slices.Delete(p.subscribers, i, i+1)
	}
	return goja.Undefined()
}

func (p *Port) send(call goja.FunctionCall) goja.Value {
	if err := p.Send(call.Argument(0)); err != nil {
		panic(p.set.rt.vm.NewGoError(err))
	}
	return goja.Undefined()
}

// PortSet is the app.ports object. Ports named in ports.CommandNames and
// ports.EmissionNames exist from the start. Listener ports such as onClick
// are created on first access or first emission.
//
// A PortSet is a ports.Emitter: emissions are converted to JavaScript
// values and sent on the port they name.
type PortSet struct {
	rt        *Runtime
	obj       *goja.Object
	app       *goja.Object
	ports     map[string]*Port
	order     []string
	parse     goja.Callable
	stringify goja.Callable
	logger    *zap.Logger
}

// NewPortSet creates the ports object for rt.
func NewPortSet(rt *Runtime) *PortSet {
	ps := &PortSet{
		rt:     rt,
		ports:  make(map[string]*Port),
		logger: rt.logger.Named("ports"),
	}
	jsonObj := rt.vm.Get("JSON").ToObject(rt.vm)
	ps.parse, _ = goja.AssertFunction(jsonObj.Get("parse"))
	ps.stringify, _ = goja.AssertFunction(jsonObj.Get("stringify"))

	for _, name := range ports.CommandNames {
		ps.Port(name)
	}
	for _, name := range ports.EmissionNames {
		ps.Port(name)
	}

	ps.obj = rt.vm.NewDynamicObject(ps)
	ps.app = rt.vm.NewObject()
	ps.app.Set("ports", ps.obj)
	return ps
}

// Object returns the JavaScript ports object.
func (ps *PortSet) Object() *goja.Object {
	return ps.obj
}

// App returns an object whose ports property is the ports object, the
// shape scripts expect of an application handle.
func (ps *PortSet) App() *goja.Object {
	return ps.app
}

// Port returns the named port, creating it if needed.
func (ps *PortSet) Port(name string) *Port {
	if p, ok := ps.ports[name]; ok {
		return p
	}
	p := &Port{name: name, set: ps}
	p.obj = ps.rt.vm.NewObject()
	p.obj.Set("subscribe", p.subscribe)
	p.obj.Set("unsubscribe", p.unsubscribe)
	p.obj.Set("send", p.send)
	ps.ports[name] = p
	ps.order = append(ps.order, name)
	return p
}

// Names returns the port names in creation order.
func (ps *PortSet) Names() []string {
	return slices.Clone(ps.order)
}

// Emit converts the emission payload to a JavaScript value and sends it
// on the emission's port.
func (ps *PortSet) Emit(e ports.Emission) {
	v, err := ps.ToValue(e.Payload())
	if err != nil {
		ps.logger.Error("cannot convert emission", zap.String("port", e.Port()), zap.Error(err))
		return
	}
	if err := ps.Port(e.Port()).Send(v); err != nil {
		ps.logger.Warn("emission handler failed", zap.String("port", e.Port()), zap.Error(err))
	}
}

// ToValue converts a Go value to a plain JavaScript value through its
// JSON encoding, so struct fields appear under their json names.
func (ps *PortSet) ToValue(payload any) (goja.Value, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return ps.parse(goja.Undefined(), ps.rt.vm.ToValue(string(data)))
}

// JSON encodes a JavaScript value with JSON.stringify. Values without a
// JSON form, such as undefined, encode as null.
func (ps *PortSet) JSON(v goja.Value) ([]byte, error) {
	out, err := ps.stringify(goja.Undefined(), v)
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(out) {
		return []byte("null"), nil
	}
	return []byte(out.String()), nil
}

// Get implements goja.DynamicObject. Unknown names that are not listener
// ports are absent, so Object.prototype members still resolve.
func (ps *PortSet) Get(key string) goja.Value {
	if p, ok := ps.ports[key]; ok {
		return p.obj
	}
	if ports.IsListenerPort(key) {
		return ps.Port(key).obj
	}
	return nil
}

// Set implements goja.DynamicObject. Ports cannot be replaced.
func (ps *PortSet) Set(key string, val goja.Value) bool {
	return false
}

// Has implements goja.DynamicObject.
func (ps *PortSet) Has(key string) bool {
	_, ok := ps.ports[key]
	return ok
}

// Delete implements goja.DynamicObject. Ports cannot be removed.
func (ps *PortSet) Delete(key string) bool {
	return false
}

// Keys implements goja.DynamicObject.
func (ps *PortSet) Keys() []string {
	return ps.Names()
}

// Register subscribes d to every inbound command port of ps. Values sent
// on a command port are encoded as JSON and dispatched; a dispatch error
// is thrown at the send call as an Error.
func Register(ps *PortSet, d *ports.Dispatcher) {
	for _, name := range ports.CommandNames {
		ps.Port(name).Subscribe(func(v goja.Value) error {
			payload, err := ps.JSON(v)
			if err != nil {
				return &ports.DecodeError{Port: name, Err: err}
			}
			return d.DispatchJSON(name, payload)
		})
	}
}

// IsThrown reports whether err is a JavaScript exception, as opposed to
// an interruption or a Go failure.
func IsThrown(err error) bool {
	var ex *goja.Exception
	return errors.As(err, &ex)
}
