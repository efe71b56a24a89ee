// Package scenario drives an event registry from a YAML script and records
// what happened.
//
// A scenario names its handlers and lists steps:
//
//	name: namespaces
//	handlers:
//	  h1: {}
//	  h2: {}
//	  loud:
//	    lua: |
//	      if data == "bad" then error("refused") end
//	steps:
//	  - on: test.a
//	    handler: h1
//	  - one: test.b
//	    handler: h2
//	  - emit: test
//	    data: payload
//	    calls: [h1, h2]
//	  - count: test
//	    expect: 1
//	  - off: test.a
//	    handler: h1
//	  - off: test
//	    children: false
//
// Every step sets exactly one of on, one, off, emit or count. Handlers record
// each invocation in the report. A handler with a lua chunk runs it with the
// global data bound to the emitted payload; raising a Lua error fails the
// handler. A handler with fail always returns that message as an error.
package scenario
