package dom

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// Touch is a single contact point of a touch event.
type Touch struct {
	Identifier       int
	ClientX, ClientY float64
}

// EventInit carries the initial state of an Event.
type EventInit struct {
	Bubbles    bool
	Cancelable bool

	// Pointer and keyboard state; zero when the event does not carry it.
	ClientX, ClientY float64
	KeyCode          int
	TargetTouches    []Touch
}

// Event represents a DOM event.
type Event struct {
	Type string
	EventInit

	target        Target
	currentTarget Target
	phase         EventPhase

	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool
	inPassive        bool
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string, init EventInit) *Event {
	return &Event{Type: eventType, EventInit: init}
}

// Target returns the object the event was dispatched at.
func (ev *Event) Target() Target {
	return ev.target
}

// CurrentTarget returns the object whose listener is currently running.
func (ev *Event) CurrentTarget() Target {
	return ev.currentTarget
}

// EventPhase returns the current dispatch phase.
func (ev *Event) EventPhase() EventPhase {
	return ev.phase
}

// DefaultPrevented reports whether PreventDefault took effect.
func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

// PreventDefault cancels the event's default action. It has no effect on
// events that are not cancelable or when called from a passive listener.
func (ev *Event) PreventDefault() {
	if ev.Cancelable && !ev.inPassive {
		ev.defaultPrevented = true
	}
}

// StopPropagation stops the event from reaching further targets.
func (ev *Event) StopPropagation() {
	ev.stopPropagation = true
}

// StopImmediatePropagation also skips remaining listeners on the current target.
func (ev *Event) StopImmediatePropagation() {
	ev.stopPropagation = true
	ev.stopImmediate = true
}

// PropagationStopped reports whether StopPropagation was called.
func (ev *Event) PropagationStopped() bool {
	return ev.stopPropagation
}

// Listener is a callback invoked for a dispatched event.
type Listener func(*Event)

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

// ListenerOptions represents addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

// eventListener represents a registered event listener.
type eventListener struct {
	id       ListenerID
	callback Listener
	options  ListenerOptions
}

// EventTarget manages event listeners for a target.
type EventTarget struct {
	listeners map[string][]eventListener
	nextID    ListenerID
}

// NewEventTarget creates a new EventTarget.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]eventListener),
	}
}

// AddEventListener registers an event listener and returns its handle.
func (et *EventTarget) AddEventListener(eventType string, callback Listener, opts ListenerOptions) ListenerID {
	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], eventListener{
		id:       et.nextID,
		callback: callback,
		options:  opts,
	})
	return et.nextID
}

// RemoveEventListener unregisters an event listener.
func (et *EventTarget) RemoveEventListener(eventType string, id ListenerID) {
	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.id == id {
			et.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// HasEventListeners returns true if there are any listeners for the event type.
func (et *EventTarget) HasEventListeners(eventType string) bool {
	return len(et.listeners[eventType]) > 0
}

// ListenerCount returns the number of listeners registered for the event type.
func (et *EventTarget) ListenerCount(eventType string) int {
	return len(et.listeners[eventType])
}

// invoke runs the listeners registered for the event's type that apply to
// the given phase.
func (et *EventTarget) invoke(ev *Event, phase EventPhase) {
	listeners := make([]eventListener, len(et.listeners[ev.Type]))
	copy(listeners, et.listeners[ev.Type])

	for _, l := range listeners {
		if phase == EventPhaseCapturing && !l.options.Capture {
			continue
		}
		if phase == EventPhaseBubbling && l.options.Capture {
			continue
		}
		if l.options.Once {
			et.RemoveEventListener(ev.Type, l.id)
		}

		ev.inPassive = l.options.Passive
		l.callback(ev)
		ev.inPassive = false

		if ev.stopImmediate {
			break
		}
	}
}

// dispatch runs ev through the capture, target and bubble phases of path,
// where path[0] is the target. It returns false if the default action was
// prevented.
func dispatch(ev *Event, target Target, path []Target) bool {
	ev.target = target
	ev.defaultPrevented = false
	ev.stopPropagation = false
	ev.stopImmediate = false

	for i := len(path) - 1; i > 0 && !ev.stopPropagation; i-- {
		runListeners(ev, path[i], EventPhaseCapturing)
	}
	if !ev.stopPropagation {
		runListeners(ev, target, EventPhaseAtTarget)
	}
	if ev.Bubbles {
		for i := 1; i < len(path) && !ev.stopPropagation; i++ {
			runListeners(ev, path[i], EventPhaseBubbling)
		}
	}

	ev.phase = EventPhaseNone
	ev.currentTarget = nil
	return !ev.defaultPrevented
}

func runListeners(ev *Event, t Target, phase EventPhase) {
	et := listenerRegistry(t)
	if et == nil {
		return
	}
	ev.phase = phase
	ev.currentTarget = t
	et.invoke(ev, phase)
}

func listenerRegistry(t Target) *EventTarget {
	switch v := t.(type) {
	case *Element:
		return v.events
	case *Document:
		return v.events
	case *Window:
		return v.events
	}
	return nil
}
