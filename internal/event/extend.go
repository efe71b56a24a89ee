package event

import "slices"

// Emitter is the event-emitting surface of a Registry. Embed a *Registry in
// a struct to give it these methods.
type Emitter interface {
	On(event string, h Handler) (string, error)
	One(event string, h Handler) (string, error)
	Off(event string, opts ...OffOption) error
	Emit(event string, data any) error
	HandlersCount(event string) int
}

var _ Emitter = (*Registry)(nil)

// Ops is the set of registry operations bound to one private Registry. Hosts
// keep it as a field, or copy the functions into their own fields, to gain
// event-emitting behavior without embedding.
type Ops struct {
	On            func(event string, h Handler) (string, error)
	One           func(event string, h Handler) (string, error)
	Off           func(event string, opts ...OffOption) error
	Emit          func(event string, data any) error
	HandlersCount func(event string) int
}

// Ops returns the registry's operations as bound functions.
func (r *Registry) Ops() Ops {
	return Ops{
		On:            r.On,
		One:           r.One,
		Off:           r.Off,
		Emit:          r.Emit,
		HandlersCount: r.HandlersCount,
	}
}

// NewOps returns the operations of a new registry that only they can reach.
func NewOps(opts ...Option) Ops {
	return New(opts...).Ops()
}

// Member names used by Extend.
const (
	MemberOn            = "on"
	MemberOne           = "one"
	MemberOff           = "off"
	MemberEmit          = "emit"
	MemberHandlersCount = "getHandlersCount"
)

// Extend attaches the operations of a new registry to host under the member
// names on, one, off, emit and getHandlersCount. If host already has any of
// those members Extend changes nothing and returns a *MemberExistsError,
// which matches ErrMemberExists. A nil host returns ErrNilHost.
func Extend(host map[string]any, opts ...Option) (*Registry, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	members := []string{MemberOn, MemberOne, MemberOff, MemberEmit, MemberHandlersCount}

	var taken []string
	for _, name := range members {
		if _, ok := host[name]; ok {
			taken = append(taken, name)
		}
	}
	if len(taken) > 0 {
		slices.Sort(taken)
		return nil, &MemberExistsError{Members: taken}
	}

	r := New(opts...)
	ops := r.Ops()
	host[MemberOn] = ops.On
	host[MemberOne] = ops.One
	host[MemberOff] = ops.Off
	host[MemberEmit] = ops.Emit
	host[MemberHandlersCount] = ops.HandlersCount
	return r, nil
}
