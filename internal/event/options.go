package event

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option configures a Registry.
type Option func(*config)

// config contains configuration for the registry.
type config struct {
	// logger receives trace output for registrations, removals and emits.
	logger zerolog.Logger

	// prune makes Off with WithHandler drop a node it left without handlers or children.
	prune bool

	// recoverPanics converts handler panics into *PanicError.
	recoverPanics bool

	// continueOnError keeps dispatching after a handler fails.
	continueOnError bool

	// newToken generates the segment used for once-handler namespaces.
	newToken func() string
}

// defaultConfig returns the default configuration: handler failures abort
// the emit and surface to the caller, and emptied nodes are only pruned
// where removal semantics call for it.
func defaultConfig() config {
	return config{
		logger:   zerolog.Nop(),
		newToken: newToken,
	}
}

// newToken returns 32 lowercase hex characters.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithLogger sets the logger used for trace output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithPruning makes Off with WithHandler remove a node once it has no handlers
// and no children, like every other removal does. Without it the emptied node
// stays in the tree until a later Off or OffID reaches it.
func WithPruning(enabled bool) Option {
	return func(c *config) {
		c.prune = enabled
	}
}

// WithPanicRecovery converts a handler panic into a *PanicError returned from
// Emit instead of letting it unwind through the caller.
func WithPanicRecovery(enabled bool) Option {
	return func(c *config) {
		c.recoverPanics = enabled
	}
}

// WithContinueOnError makes Emit invoke every matched handler even after one
// fails. The failures are joined with errors.Join.
func WithContinueOnError(enabled bool) Option {
	return func(c *config) {
		c.continueOnError = enabled
	}
}

// WithTokenFunc overrides the generator for once-handler namespace segments.
// Tokens must be non-empty and must not contain a dot.
func WithTokenFunc(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newToken = fn
		}
	}
}
