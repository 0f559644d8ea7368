package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chrisuehlinger/domports/dom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Scenario is a scripted sequence of port commands and DOM events.
type Scenario struct {
	Steps []Step `yaml:"steps"`
}

// Step is either a command sent on Port with Payload, or a synthetic event
// described by Fire.
type Step struct {
	Port    string    `yaml:"port,omitempty"`
	Payload any       `yaml:"payload,omitempty"`
	Fire    *FireStep `yaml:"fire,omitempty"`
}

// FireStep dispatches an event of Type at every node matching Selector.
type FireStep struct {
	Selector string  `yaml:"selector"`
	Type     string  `yaml:"type"`
	ClientX  float64 `yaml:"clientX"`
	ClientY  float64 `yaml:"clientY"`
	KeyCode  int     `yaml:"keyCode"`
	// Bubbles defaults to true.
	Bubbles *bool `yaml:"bubbles,omitempty"`
}

func (s Step) String() string {
	if s.Fire != nil {
		return fmt.Sprintf("fire %s at %s", s.Fire.Type, s.Fire.Selector)
	}
	return s.Port
}

// Validate checks that the step has exactly one action.
func (s Step) Validate() error {
	switch {
	case s.Fire != nil && s.Port != "":
		return errors.New("step has both port and fire")
	case s.Fire != nil:
		if s.Fire.Selector == "" || s.Fire.Type == "" {
			return errors.New("fire needs selector and type")
		}
	case s.Port == "":
		return errors.New("step has neither port nor fire")
	}
	return nil
}

// LoadScenario decodes a YAML scenario. JSON documents are valid YAML and
// are accepted too. Unknown fields are rejected.
func LoadScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	for i, step := range sc.Steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &sc, nil
}

// Replay runs the scenario's steps in order and stops at the first
// failure.
func (s *Session) Replay(ctx context.Context, sc *Scenario) error {
	if s.dispatcher == nil {
		return errors.New("no page loaded")
	}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("Replaying step", zap.Int("step", i+1), zap.Stringer("action", step))
		if err := s.runStep(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

func (s *Session) runStep(step Step) error {
	if step.Fire != nil {
		return s.Fire(*step.Fire)
	}
	payload, err := json.Marshal(step.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return s.dispatcher.DispatchJSON(step.Port, payload)
}

// Fire dispatches a synthetic event at every node matching f.Selector. A
// selector that matches nothing is not an error.
func (s *Session) Fire(f FireStep) error {
	targets, err := s.dispatcher.Resolver().All(f.Selector)
	if err != nil {
		return err
	}
	bubbles := f.Bubbles == nil || *f.Bubbles
	for _, target := range targets {
		listenable, ok := target.(dom.Listenable)
		if !ok {
			return fmt.Errorf("node %s cannot receive events", target.NodeName())
		}
		init := dom.EventInit{
			Bubbles:    bubbles,
			Cancelable: true,
			ClientX:    f.ClientX,
			ClientY:    f.ClientY,
			KeyCode:    f.KeyCode,
		}
		if strings.HasPrefix(f.Type, "touch") {
			init.TargetTouches = []dom.Touch{{ClientX: f.ClientX, ClientY: f.ClientY}}
		}
		listenable.DispatchEvent(dom.NewEvent(f.Type, init))
	}
	return nil
}
