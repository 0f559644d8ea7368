package ports

import (
	"github.com/chrisuehlinger/domports/dom"
)

// NodeRecord is a snapshot of a target's inspectable fields. Every field
// is always present; values that are absent or falsy on the target are
// null.
type NodeRecord struct {
	Checked      *bool       `json:"checked"`
	ClientHeight *float64    `json:"clientHeight"`
	ClientWidth  *float64    `json:"clientWidth"`
	Content      *string     `json:"content"`
	Data         [][2]string `json:"data"`
	For          *string     `json:"for"`
	Href         *string     `json:"href"`
	ID           *string     `json:"id"`
	InnerHTML    *string     `json:"innerHtml"`
	Pathname     *string     `json:"pathname"`
	Value        *string     `json:"value"`
}

// EventRecord is a snapshot of an event's pointer, key and first-touch
// fields. Zero or missing values are null.
type EventRecord struct {
	ClientX      *float64 `json:"clientX"`
	ClientY      *float64 `json:"clientY"`
	KeyCode      *int     `json:"keyCode"`
	TouchClientX *float64 `json:"touchClientX"`
	TouchClientY *float64 `json:"touchClientY"`
}

// PositionRecord holds absolute document offsets computed at query time.
type PositionRecord struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// NewNodeRecord snapshots target. Only elements carry node fields; the
// window and document report nulls and no data entries.
func NewNodeRecord(target dom.Target) NodeRecord {
	rec := NodeRecord{Data: [][2]string{}}
	el, ok := target.(*dom.Element)
	if !ok {
		return rec
	}
	rec.Checked = boolOrNull(el.Checked())
	rec.ClientHeight = numberOrNull(el.ClientHeight())
	rec.ClientWidth = numberOrNull(el.ClientWidth())
	rec.Content = stringOrNull(el.Content())
	rec.Data = el.Dataset().Entries()
	rec.For = stringOrNull(el.HtmlFor())
	rec.Href = stringOrNull(el.Href())
	rec.ID = stringOrNull(el.Id())
	rec.InnerHTML = stringOrNull(el.InnerHTML())
	rec.Pathname = stringOrNull(el.Pathname())
	if v, ok := el.Value(); ok {
		rec.Value = stringOrNull(v)
	}
	return rec
}

// NewEventRecord snapshots ev.
func NewEventRecord(ev *dom.Event) EventRecord {
	rec := EventRecord{
		ClientX: numberOrNull(ev.ClientX),
		ClientY: numberOrNull(ev.ClientY),
	}
	if ev.KeyCode != 0 {
		code := ev.KeyCode
		rec.KeyCode = &code
	}
	if len(ev.TargetTouches) > 0 {
		rec.TouchClientX = numberOrNull(ev.TargetTouches[0].ClientX)
		rec.TouchClientY = numberOrNull(ev.TargetTouches[0].ClientY)
	}
	return rec
}

// NewPositionRecord computes the absolute offsets of el by summing
// offsetTop and offsetLeft over el and its offsetParent chain.
func NewPositionRecord(el *dom.Element) PositionRecord {
	top, left := absoluteOffset(el)
	return PositionRecord{
		Top:    top,
		Right:  left + el.OffsetWidth(),
		Bottom: top + el.OffsetHeight(),
		Left:   left,
	}
}

func absoluteOffset(el *dom.Element) (top, left float64) {
	for n := el; n != nil; n = n.OffsetParent() {
		top += n.OffsetTop()
		left += n.OffsetLeft()
	}
	return top, left
}

func boolOrNull(b bool) *bool {
	if !b {
		return nil
	}
	return &b
}

func numberOrNull(f float64) *float64 {
	if f == 0 || f != f {
		return nil
	}
	return &f
}

func stringOrNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
