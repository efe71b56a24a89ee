// Package event provides a namespaced publish/subscribe dispatcher.
//
// Handlers are registered under dotted event names such as "click.foo.bar".
// Each dot-delimited segment is a namespace: "click.foo" is a descendant of
// "click". Emitting an event invokes every handler registered under that
// event and under all of its descendants. Emitting a descendant never
// reaches handlers registered only on an ancestor.
//
//	r := event.New()
//	r.On("click", func(data any) error {
//	    fmt.Println("click!")
//	    return nil
//	})
//	r.On("click.you", func(data any) error {
//	    fmt.Println("click you!")
//	    return nil
//	})
//	r.Emit("click", nil)     // click! click you!
//	r.Off("click.you")
//	r.Emit("click", nil)     // click!
//
// # Registration
//
// On appends a handler to the namespace, creating it on demand. One
// registers a handler that runs at most once: it is stored under a
// synthesized child namespace of the event and removed, together with that
// namespace, right after its first invocation.
//
// # Removal
//
// Off removes a namespace. The default removes everything at and below the
// event; KeepChildren removes only the handlers directly at the event; and
// WithHandler removes every registration of one handler at the event.
// OffID removes a single registration by ID. Removing something that is not
// there is not an error.
//
// Removal with WithHandler keeps a node it empties; every other form prunes
// nodes that are left with no handlers and no children. WithPruning(true)
// makes WithHandler prune as well.
//
// # Dispatch
//
// Emit runs handlers synchronously in registration order at each node,
// visiting the emitted node first and then its children in lexical segment
// order, depth first. The matched handlers are fixed when Emit starts, so a
// handler may call On, Off or Emit without deadlocking; such changes apply to
// later emits. A handler error stops the fan-out and is returned from Emit.
//
// # Extending Other Values
//
// Ops bundles the five operations as bound functions over a private
// registry, and Extend installs them into a map-based host under the names
// on, one, off, emit and getHandlersCount without overwriting existing
// members. Structs can instead embed *Registry, which implements Emitter.
//
// # Thread Safety
//
// Registry is safe for concurrent use. A single mutex serializes every
// operation on the namespace tree; handlers are never called with it held.
package event
