package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/nsevent/internal/event/topic"
)

// Sentinel errors for the registry.
var (
	// ErrInvalidEvent is returned when an event name is empty or has an empty
	// segment. It wraps topic.ErrInvalidTopic.
	ErrInvalidEvent = fmt.Errorf("invalid event: %w", topic.ErrInvalidTopic)

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrHandlerPanic is returned when a handler panics and panic recovery is enabled.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrMemberExists is returned by Extend when the host already has a member
	// under one of the operation names.
	ErrMemberExists = errors.New("member already exists")

	// ErrNilHost is returned by Extend when the host is nil.
	ErrNilHost = errors.New("host cannot be nil")
)

// invalidEvent wraps a topic validation error so that both ErrInvalidEvent and
// topic.ErrInvalidTopic match.
type invalidEvent struct {
	cause error
}

func (e *invalidEvent) Error() string {
	return "invalid event: " + strings.TrimPrefix(e.cause.Error(), topic.ErrInvalidTopic.Error()+": ")
}

func (e *invalidEvent) Unwrap() error {
	return e.cause
}

func (e *invalidEvent) Is(target error) bool {
	return target == ErrInvalidEvent
}

// validate checks an event name.
func validate(event string) (topic.Topic, error) {
	t := topic.Topic(event)
	if err := topic.Validate(t); err != nil {
		return "", &invalidEvent{cause: err}
	}
	return t, nil
}

// HandlerError wraps an error returned by a handler during Emit.
type HandlerError struct {
	// ID is the registration ID of the handler that failed.
	ID string

	// Event is the event name passed to Emit.
	Event string

	// Namespace is the namespace the handler was registered under.
	Namespace string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for " + e.Namespace + " on emit " + e.Event + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a recovered handler panic as an error.
type PanicError struct {
	// ID is the registration ID of the handler that panicked.
	ID string

	// Event is the event name passed to Emit.
	Event string

	// Namespace is the namespace the handler was registered under.
	Namespace string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for %s on emit %s: %v", e.Namespace, e.Event, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// MemberExistsError lists the host members that Extend refused to overwrite.
type MemberExistsError struct {
	Members []string
}

// Error implements the error interface.
func (e *MemberExistsError) Error() string {
	return "extend: member already exists: " + strings.Join(e.Members, ", ")
}

// Is allows errors.Is to match MemberExistsError with ErrMemberExists.
func (e *MemberExistsError) Is(target error) bool {
	return target == ErrMemberExists
}
