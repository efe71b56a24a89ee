package event

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/nsevent/internal/event/topic"
)

// Registry is a namespaced event dispatcher. Handlers are registered under
// dotted event names and Emit invokes every handler registered under the
// emitted name and all of its descendant namespaces.
//
// A single mutex guards the namespace tree for every public operation. Emit
// takes a snapshot of the matched handlers and releases the lock before
// invoking them, so handlers may call back into the registry.
type Registry struct {
	mu   sync.Mutex
	tree *topic.Tree[*entry]
	byID map[string]*entry
	cfg  config
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		tree: topic.NewTree[*entry](),
		byID: make(map[string]*entry),
		cfg:  cfg,
	}
}

// On registers h under event. Registering the same handler more than once is
// allowed; it is invoked once per registration.
// Returns the registration ID.
func (r *Registry) On(event string, h Handler) (string, error) {
	return r.add(event, h, false)
}

// One registers h to run at most once, on the first Emit of event or of any
// of its ancestors. The handler lives under its own namespace below event, so
// emitting a sibling descendant of event does not trigger it.
// Returns the registration ID.
func (r *Registry) One(event string, h Handler) (string, error) {
	return r.add(event, h, true)
}

func (r *Registry) add(event string, h Handler, once bool) (string, error) {
	t, err := validate(event)
	if err != nil {
		return "", err
	}
	if h == nil {
		return "", ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns := t
	if once {
		ns = r.onceNamespace(t)
	}

	e := &entry{
		id:        uuid.NewString(),
		namespace: ns,
		handler:   h,
		ptr:       handlerPtr(h),
		once:      once,
	}
	r.tree.Insert(ns, e)
	r.byID[e.id] = e

	r.cfg.logger.Trace().
		Str("event", event).
		Str("namespace", string(ns)).
		Str("id", e.id).
		Bool("once", once).
		Msg("Handler registered")
	return e.id, nil
}

// onceNamespace picks an unused child namespace of t for a once handler.
func (r *Registry) onceNamespace(t topic.Topic) topic.Topic {
	for range 8 {
		tok := r.cfg.newToken()
		if !topic.Topic(tok).IsValid() || topic.Topic(tok).SegmentCount() != 1 {
			continue
		}
		if ns := t.Child(tok); !r.tree.Contains(ns) {
			return ns
		}
	}
	return t.Child(newToken())
}

// OffOption selects what Off removes.
type OffOption func(*offRequest)

type offRequest struct {
	handler      Handler
	keepChildren bool
}

// WithHandler limits Off to the given handler at the exact event namespace.
// Every registration of the handler there is removed; child namespaces are
// not touched.
func WithHandler(h Handler) OffOption {
	return func(req *offRequest) {
		req.handler = h
	}
}

// KeepChildren limits Off to the handlers registered directly under the
// event, leaving child namespaces in place.
func KeepChildren() OffOption {
	return func(req *offRequest) {
		req.keepChildren = true
	}
}

// Off removes handlers under event. By default the whole namespace goes:
// the event's own handlers and every descendant namespace. WithHandler and
// KeepChildren narrow the removal; WithHandler wins when both are given.
//
// A node emptied by WithHandler is left in the tree unless the registry was
// created with WithPruning(true). The other forms drop empty nodes.
//
// Removing from a namespace that does not exist is a no-op. Only malformed
// event names are errors.
func (r *Registry) Off(event string, opts ...OffOption) error {
	t, err := validate(event)
	if err != nil {
		return err
	}

	var req offRequest
	for _, opt := range opts {
		opt(&req)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	switch {
	case req.handler != nil:
		ptr := handlerPtr(req.handler)
		removed = r.tree.RemoveFunc(t, func(e *entry) bool {
			if e.ptr != ptr {
				return false
			}
			delete(r.byID, e.id)
			return true
		})
		if r.cfg.prune {
			r.tree.Prune(t)
		}
	case req.keepChildren:
		for _, e := range r.tree.Values(t) {
			delete(r.byID, e.id)
		}
		removed = r.tree.RemoveValues(t)
	default:
		removed = r.removeSubtree(t)
	}

	r.cfg.logger.Trace().
		Str("event", event).
		Bool("handler", req.handler != nil).
		Bool("keepChildren", req.keepChildren).
		Int("removed", removed).
		Msg("Handlers removed")
	return nil
}

// removeSubtree drops the namespace at t and forgets its registrations.
// Must be called with r.mu held.
func (r *Registry) removeSubtree(t topic.Topic) int {
	removed := 0
	r.tree.Walk(t, func(_ topic.Topic, e *entry) {
		delete(r.byID, e.id)
		removed++
	})
	r.tree.RemoveSubtree(t)
	return removed
}

// OffID removes a single registration by the ID returned from On or One.
// Returns false if no such registration exists.
func (r *Registry) OffID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	r.removeEntry(e)
	return true
}

// removeEntry removes one registration and prunes what it leaves empty.
// Once handlers take their synthesized namespace with them.
// Must be called with r.mu held.
func (r *Registry) removeEntry(e *entry) {
	if e.once {
		r.removeSubtree(e.namespace)
		return
	}
	delete(r.byID, e.id)
	r.tree.RemoveFunc(e.namespace, func(other *entry) bool { return other == e })
	r.tree.Prune(e.namespace)
}

// HandlersCount returns the number of handlers registered under event and all
// of its descendant namespaces. Unknown or malformed events count 0.
func (r *Registry) HandlersCount(event string) int {
	t, err := validate(event)
	if err != nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tree.Count(t)
}

// Events returns the namespaces that currently hold handlers, in dispatch
// order.
func (r *Registry) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := r.tree.Paths()
	if len(paths) == 0 {
		return nil
	}
	events := make([]string, len(paths))
	for i, p := range paths {
		events[i] = string(p)
	}
	return events
}

// Len returns the total number of registered handlers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byID)
}

// Clear removes every handler and namespace.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tree.Clear()
	r.byID = make(map[string]*entry)
}
