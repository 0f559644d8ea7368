package ports

// Command is an inbound port message. The set of commands is closed; each
// type's Port method returns the name of the port that carries it.
type Command interface {
	Port() string
	command()
}

// ListenerOptions tunes a listener added by AddEventListener.
// PreventDefault defaults to true when nil.
type ListenerOptions struct {
	PreventDefault  *bool `json:"preventDefault"`
	StopPropagation bool  `json:"stopPropagation"`
}

// AddEventListener listens for Event on every target of Selector and emits
// on<Event> each time it fires.
type AddEventListener struct {
	Selector string
	Event    string
	Options  *ListenerOptions
}

// AddClickListener is AddEventListener for "click" with default options.
type AddClickListener struct {
	Selector string
}

// AddSubmitListener emits onSubmit with the named form fields whenever a
// target form is submitted.
type AddSubmitListener struct {
	Selector string
	Fields   []string
}

type AddClass struct {
	Selector  string
	ClassName string
}

type RemoveClass struct {
	Selector  string
	ClassName string
}

// ToggleClass adds or removes ClassName on each target independently.
type ToggleClass struct {
	Selector  string
	ClassName string
}

// InnerHTML replaces the markup of every target and then emits
// innerHtmlReplaced, whether or not anything matched.
type InnerHTML struct {
	Selector string
	HTML     string
}

// AppendChild parses HTML and appends its first element to the first
// target of ParentSelector.
type AppendChild struct {
	ParentSelector string
	HTML           string
}

type RemoveNodes struct {
	Selector string
}

type Click struct {
	Selector string
}

type Focus struct {
	Selector string
}

type WindowScrollTo struct {
	X, Y float64
}

type WindowScrollToSelector struct {
	Selector string
}

type PreventTouchScroll struct{}

type AllowTouchScroll struct{}

// SetProperty assigns Value to the named property of every target.
type SetProperty struct {
	Selector string
	Property string
	Value    any
}

type SetCSSProperty struct {
	Selector string
	Property string
	Value    string
}

type RemoveCSSProperty struct {
	Selector string
	Property string
}

// SetDataAttribute sets dataset[Key]; Key is in camelCase form.
type SetDataAttribute struct {
	Selector string
	Key      string
	Value    string
}

type GetNodePosition struct {
	Selector string
}

type QuerySelector struct {
	Selector string
}

type PreloadImage struct {
	URL string
}

func (AddEventListener) Port() string       { return "addEventListener" }
func (AddClickListener) Port() string       { return "addClickListener" }
func (AddSubmitListener) Port() string      { return "addSubmitListener" }
func (AddClass) Port() string               { return "addClass" }
func (RemoveClass) Port() string            { return "removeClass" }
func (ToggleClass) Port() string            { return "toggleClass" }
func (InnerHTML) Port() string              { return "innerHtml" }
func (AppendChild) Port() string            { return "appendChild" }
func (RemoveNodes) Port() string            { return "removeNodes" }
func (Click) Port() string                  { return "click" }
func (Focus) Port() string                  { return "focus" }
func (WindowScrollTo) Port() string         { return "windowScrollTo" }
func (WindowScrollToSelector) Port() string { return "windowScrollToSelector" }
func (PreventTouchScroll) Port() string     { return "preventTouchScroll" }
func (AllowTouchScroll) Port() string       { return "allowTouchScroll" }
func (SetProperty) Port() string            { return "setProperty" }
func (SetCSSProperty) Port() string         { return "setCssProperty" }
func (RemoveCSSProperty) Port() string      { return "removeCssProperty" }
func (SetDataAttribute) Port() string       { return "setDataAttribute" }
func (GetNodePosition) Port() string        { return "getNodePosition" }
func (QuerySelector) Port() string          { return "querySelector" }
func (PreloadImage) Port() string           { return "preloadImage" }

func (AddEventListener) command()       {}
func (AddClickListener) command()       {}
func (AddSubmitListener) command()      {}
func (AddClass) command()               {}
func (RemoveClass) command()            {}
func (ToggleClass) command()            {}
func (InnerHTML) command()              {}
func (AppendChild) command()            {}
func (RemoveNodes) command()            {}
func (Click) command()                  {}
func (Focus) command()                  {}
func (WindowScrollTo) command()         {}
func (WindowScrollToSelector) command() {}
func (PreventTouchScroll) command()     {}
func (AllowTouchScroll) command()       {}
func (SetProperty) command()            {}
func (SetCSSProperty) command()         {}
func (RemoveCSSProperty) command()      {}
func (SetDataAttribute) command()       {}
func (GetNodePosition) command()        {}
func (QuerySelector) command()          {}
func (PreloadImage) command()           {}

// CommandNames lists the inbound ports in registration order.
var CommandNames = []string{
	"addEventListener",
	"addClickListener",
	"addSubmitListener",
	"addClass",
	"removeClass",
	"toggleClass",
	"innerHtml",
	"appendChild",
	"removeNodes",
	"click",
	"focus",
	"windowScrollTo",
	"windowScrollToSelector",
	"preventTouchScroll",
	"allowTouchScroll",
	"setProperty",
	"setCssProperty",
	"removeCssProperty",
	"setDataAttribute",
	"getNodePosition",
	"querySelector",
	"preloadImage",
}
