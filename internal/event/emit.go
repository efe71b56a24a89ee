package event

import (
	"errors"
	"runtime/debug"

	"github.com/dshills/nsevent/internal/event/topic"
)

// Emit invokes every handler registered under event and all of its
// descendant namespaces, passing data to each. Handlers run synchronously in
// the caller's goroutine: the node's own handlers first in registration
// order, then each child namespace in lexical order, depth first.
//
// Emitting an event with no registered namespace is a no-op.
//
// The set of handlers is fixed when Emit starts. Handlers registered or
// removed by a handler during the fan-out take effect from the next Emit,
// except that a One handler never runs twice.
//
// By default the first handler error stops the fan-out and is returned as a
// *HandlerError, and panics propagate to the caller. See WithContinueOnError
// and WithPanicRecovery.
func (r *Registry) Emit(event string, data any) error {
	t, err := validate(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	var batch []*entry
	r.tree.Walk(t, func(_ topic.Topic, e *entry) {
		batch = append(batch, e)
	})
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	r.cfg.logger.Trace().
		Str("event", event).
		Int("handlers", len(batch)).
		Msg("Emitting")

	var errs []error
	for _, e := range batch {
		if err := r.dispatch(event, e, data); err != nil {
			r.cfg.logger.Debug().
				Err(err).
				Str("event", event).
				Str("namespace", string(e.namespace)).
				Msg("Handler failed")
			if !r.cfg.continueOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dispatch runs one handler. Once handlers are claimed before running and
// removed, with their namespace, after.
func (r *Registry) dispatch(event string, e *entry, data any) error {
	if e.once {
		if !e.fired.CompareAndSwap(false, true) {
			return nil
		}
		defer r.retire(e)
	}
	return r.invoke(event, e, data)
}

// retire removes a fired once handler if it is still registered.
func (r *Registry) retire(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byID[e.id] == e {
		r.removeEntry(e)
	}
}

// invoke calls the handler, wrapping its error and optionally recovering a
// panic.
func (r *Registry) invoke(event string, e *entry, data any) (err error) {
	if r.cfg.recoverPanics {
		defer func() {
			if v := recover(); v != nil {
				err = &PanicError{
					ID:        e.id,
					Event:     event,
					Namespace: string(e.namespace),
					Value:     v,
					Stack:     string(debug.Stack()),
				}
			}
		}()
	}

	if herr := e.handler(data); herr != nil {
		return &HandlerError{
			ID:        e.id,
			Event:     event,
			Namespace: string(e.namespace),
			Err:       herr,
		}
	}
	return nil
}
