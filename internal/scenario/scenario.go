package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario is returned when a scenario document is malformed.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted sequence of registry operations.
type Scenario struct {
	Name     string                 `yaml:"name"`
	Handlers map[string]HandlerSpec `yaml:"handlers"`
	Steps    []Step                 `yaml:"steps"`
}

// HandlerSpec describes what a named handler does besides being recorded.
type HandlerSpec struct {
	// Lua is a chunk run on every invocation with the global data set.
	Lua string `yaml:"lua,omitempty"`

	// Fail makes the handler return an error with this message.
	Fail string `yaml:"fail,omitempty"`
}

// Step is one registry operation. Exactly one of On, One, Off, Emit and Count
// is set.
type Step struct {
	On    string `yaml:"on,omitempty"`
	One   string `yaml:"one,omitempty"`
	Off   string `yaml:"off,omitempty"`
	Emit  string `yaml:"emit,omitempty"`
	Count string `yaml:"count,omitempty"`

	// Handler names the handler for on and one, and narrows off to it.
	Handler string `yaml:"handler,omitempty"`

	// Children set to false makes off keep child namespaces.
	Children *bool `yaml:"children,omitempty"`

	// Data is the payload for emit.
	Data any `yaml:"data,omitempty"`

	// Expect is the handler count a count step must observe.
	Expect *int `yaml:"expect,omitempty"`

	// Calls lists the handlers an emit step must invoke, in order.
	Calls []string `yaml:"calls,omitempty"`

	// ExpectError is a substring the emit error must contain.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Kind names the operation of the step.
type Kind string

// Step kinds.
const (
	KindOn    Kind = "on"
	KindOne   Kind = "one"
	KindOff   Kind = "off"
	KindEmit  Kind = "emit"
	KindCount Kind = "count"
)

// Kind returns the step's operation and its event, or an error if the step
// sets none or several of them.
func (s Step) Kind() (Kind, string, error) {
	var kinds []Kind
	var event string
	for _, c := range []struct {
		kind  Kind
		event string
	}{
		{KindOn, s.On},
		{KindOne, s.One},
		{KindOff, s.Off},
		{KindEmit, s.Emit},
		{KindCount, s.Count},
	} {
		if c.event != "" {
			kinds = append(kinds, c.kind)
			event = c.event
		}
	}

	switch len(kinds) {
	case 0:
		return "", "", fmt.Errorf("%w: step has no operation", ErrInvalidScenario)
	case 1:
		return kinds[0], event, nil
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return "", "", fmt.Errorf("%w: step sets %s", ErrInvalidScenario, strings.Join(names, " and "))
	}
}

// String describes the step, e.g. "emit test".
func (s Step) String() string {
	kind, event, err := s.Kind()
	if err != nil {
		return "invalid step"
	}
	if s.Handler != "" {
		return fmt.Sprintf("%s %s (%s)", kind, event, s.Handler)
	}
	return fmt.Sprintf("%s %s", kind, event)
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step has one operation and refers only to
// declared handlers.
func (s *Scenario) Validate() error {
	for i, step := range s.Steps {
		kind, _, err := step.Kind()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		switch kind {
		case KindOn, KindOne:
			if step.Handler == "" {
				return fmt.Errorf("%w: step %d: %s needs a handler", ErrInvalidScenario, i+1, kind)
			}
		case KindCount:
			if step.Expect == nil {
				return fmt.Errorf("%w: step %d: count needs expect", ErrInvalidScenario, i+1)
			}
		}

		if step.Handler != "" {
			if _, ok := s.Handlers[step.Handler]; !ok {
				return fmt.Errorf("%w: step %d: unknown handler %q", ErrInvalidScenario, i+1, step.Handler)
			}
		}
		for _, name := range step.Calls {
			if _, ok := s.Handlers[name]; !ok {
				return fmt.Errorf("%w: step %d: unknown handler %q in calls", ErrInvalidScenario, i+1, name)
			}
		}
	}
	return nil
}
