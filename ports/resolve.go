package ports

import (
	"github.com/chrisuehlinger/domports/css"
	"github.com/chrisuehlinger/domports/dom"
)

// Reserved selector tokens naming the two singletons.
const (
	WindowSelector   = "window"
	DocumentSelector = "document"
)

// Resolver maps selectors to live targets. Every call queries the current
// tree; nothing is cached between calls.
type Resolver struct {
	doc   *dom.Document
	query func(selector string) ([]dom.Target, error)
}

// NewResolver creates a resolver over doc.
func NewResolver(doc *dom.Document) *Resolver {
	r := &Resolver{doc: doc}
	r.query = r.querySelectorAll
	return r
}

// All returns every target the selector names, in document order. The
// tokens "window" and "document" return the matching singleton alone. An
// invalid selector returns the query engine's SyntaxError.
func (r *Resolver) All(selector string) ([]dom.Target, error) {
	switch selector {
	case WindowSelector:
		if w := r.doc.DefaultView(); w != nil {
			return []dom.Target{w}, nil
		}
		return nil, nil
	case DocumentSelector:
		return []dom.Target{r.doc}, nil
	}
	return r.query(selector)
}

// First returns the last target All would return, or nil when there is
// none. Callers have always relied on the last match.
func (r *Resolver) First(selector string) (dom.Target, error) {
	targets, err := r.All(selector)
	if err != nil || len(targets) == 0 {
		return nil, err
	}
	return targets[len(targets)-1], nil
}

func (r *Resolver) querySelectorAll(selector string) ([]dom.Target, error) {
	elements, err := css.QuerySelectorAll(r.doc.AsNode(), selector)
	if err != nil {
		return nil, err
	}
	targets := make([]dom.Target, len(elements))
	for i, el := range elements {
		targets[i] = el
	}
	return targets, nil
}
