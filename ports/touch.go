package ports

import (
	"github.com/chrisuehlinger/domports/dom"
)

// TouchScrollGuard owns the single touchmove listener that cancels touch
// scrolling. Enabling twice registers one listener; disabling removes it.
type TouchScrollGuard struct {
	target  dom.Listenable
	id      dom.ListenerID
	enabled bool
}

// NewTouchScrollGuard creates a disabled guard for target, normally the
// document.
func NewTouchScrollGuard(target dom.Listenable) *TouchScrollGuard {
	return &TouchScrollGuard{target: target}
}

// Enable starts canceling touchmove defaults.
func (g *TouchScrollGuard) Enable() {
	if g.enabled {
		return
	}
	g.id = g.target.AddEventListener("touchmove", func(ev *dom.Event) {
		ev.PreventDefault()
	}, dom.ListenerOptions{})
	g.enabled = true
}

// Disable removes the listener installed by Enable.
func (g *TouchScrollGuard) Disable() {
	if !g.enabled {
		return
	}
	g.target.RemoveEventListener("touchmove", g.id)
	g.enabled = false
}

// Enabled reports whether touch scrolling is currently suppressed.
func (g *TouchScrollGuard) Enabled() bool {
	return g.enabled
}
