package event

import (
	"sync/atomic"
	"unsafe"

	"github.com/dshills/nsevent/internal/event/topic"
)

// Handler is invoked with the payload passed to Emit. A non-nil error aborts
// the rest of the fan-out and is returned from Emit wrapped in *HandlerError.
//
// Handlers are identified for removal by their function value: copies of one
// Handler value are the same handler, and every closure instance or method
// value is a handler of its own. A function literal that captures nothing may
// be shared by the compiler, so all its instances are one handler.
type Handler func(data any) error

// handlerPtr returns the identity used by Off with WithHandler: the pointer
// held by the func value, which is distinct for each closure instance.
func handlerPtr(h Handler) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&h))
}

// entry is a registered handler stored in the namespace tree.
type entry struct {
	id        string
	namespace topic.Topic
	handler   Handler
	ptr       unsafe.Pointer

	// once entries live under their own synthesized namespace and are removed
	// with it after the first invocation.
	once  bool
	fired atomic.Bool
}
