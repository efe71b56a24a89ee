package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/nsevent/internal/event"
	"github.com/dshills/nsevent/internal/logging"
)

// Call records one handler invocation.
type Call struct {
	// Handler is the scenario name of the handler.
	Handler string
	// Step is the 1-based index of the emit step that caused the call.
	Step int
	// Data is the payload the handler received.
	Data any
}

// StepResult is the outcome of one step.
type StepResult struct {
	// Index is the 1-based step number.
	Index int
	// Step is the step as written.
	Step Step
	// Err is the error returned by the registry, if any.
	Err error
	// Count is the observed handler count for count steps.
	Count int
	// Calls are the handlers invoked by an emit step, in order.
	Calls []string
	// Failures describes every unmet expectation.
	Failures []string
}

// OK reports whether every expectation of the step held.
func (r StepResult) OK() bool {
	return len(r.Failures) == 0
}

// Report is the outcome of a scenario run.
type Report struct {
	Name  string
	Steps []StepResult
	Calls []Call
}

// OK reports whether every step met its expectations.
func (r *Report) OK() bool {
	for _, s := range r.Steps {
		if !s.OK() {
			return false
		}
	}
	return true
}

// Failed returns the steps with unmet expectations.
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// runner holds the state of one scenario run.
type runner struct {
	scenario *Scenario
	registry *event.Registry
	lua      *luaHost
	handlers map[string]event.Handler
	report   *Report
	step     int
	calls    []string // handlers invoked by the current emit step
}

// Run executes the scenario against a fresh registry created with opts.
// Each named handler is one Handler value, so off with a handler removes
// every registration of that name at the exact event.
func Run(s *Scenario, opts ...event.Option) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("scenario")
	done := logging.LogOperationStart(logger, "scenario "+s.Name)
	defer done()

	opts = append([]event.Option{event.WithLogger(logging.GetLogger("registry"))}, opts...)
	r := event.New(opts...)

	run := &runner{
		scenario: s,
		registry: r,
		lua:      newLuaHost(r),
		handlers: make(map[string]event.Handler, len(s.Handlers)),
		report:   &Report{Name: s.Name},
	}
	defer run.lua.close()

	for name, def := range s.Handlers {
		run.handlers[name] = run.newHandler(name, def)
	}

	for i, step := range s.Steps {
		run.step = i + 1
		res := run.exec(step)
		if !res.OK() {
			logger.Debug().Int("step", res.Index).Strs("failures", res.Failures).Msg("Step failed")
		}
		run.report.Steps = append(run.report.Steps, res)
	}
	return run.report, nil
}

// newHandler builds the registry handler for a named scenario handler.
func (run *runner) newHandler(name string, def HandlerSpec) event.Handler {
	return func(data any) error {
		run.calls = append(run.calls, name)
		run.report.Calls = append(run.report.Calls, Call{Handler: name, Step: run.step, Data: data})

		if def.Lua != "" {
			if err := run.lua.run(def.Lua, data); err != nil {
				return err
			}
		}
		if def.Fail != "" {
			return errors.New(def.Fail)
		}
		return nil
	}
}

// exec runs one step and checks its expectations.
func (run *runner) exec(step Step) StepResult {
	res := StepResult{Index: run.step, Step: step}
	kind, name, _ := step.Kind()

	switch kind {
	case KindOn, KindOne:
		register := run.registry.On
		if kind == KindOne {
			register = run.registry.One
		}
		_, res.Err = register(name, run.handlers[step.Handler])

	case KindOff:
		res.Err = run.off(name, step)

	case KindEmit:
		run.calls = nil
		res.Err = run.registry.Emit(name, step.Data)
		res.Calls = run.calls
		run.calls = nil

		if step.Calls != nil && !slices.Equal(res.Calls, step.Calls) {
			res.Failures = append(res.Failures, fmt.Sprintf("calls = %v, want %v", res.Calls, step.Calls))
		}

	case KindCount:
		res.Count = run.registry.HandlersCount(name)
		if step.Expect != nil && res.Count != *step.Expect {
			res.Failures = append(res.Failures, fmt.Sprintf("count = %d, want %d", res.Count, *step.Expect))
		}
	}

	switch {
	case step.ExpectError != "" && res.Err == nil:
		res.Failures = append(res.Failures, fmt.Sprintf("no error, want one containing %q", step.ExpectError))
	case step.ExpectError != "" && !strings.Contains(res.Err.Error(), step.ExpectError):
		res.Failures = append(res.Failures, fmt.Sprintf("error %q, want one containing %q", res.Err, step.ExpectError))
	case step.ExpectError == "" && res.Err != nil:
		res.Failures = append(res.Failures, "unexpected error: "+res.Err.Error())
	}
	return res
}

// off removes registrations for an off step.
func (run *runner) off(name string, step Step) error {
	switch {
	case step.Handler != "":
		return run.registry.Off(name, event.WithHandler(run.handlers[step.Handler]))
	case step.Children != nil && !*step.Children:
		return run.registry.Off(name, event.KeepChildren())
	default:
		return run.registry.Off(name)
	}
}
