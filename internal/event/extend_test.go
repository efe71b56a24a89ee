package event

import (
	"errors"
	"slices"
	"testing"
)

func TestOps_BoundToPrivateRegistry(t *testing.T) {
	a := NewOps()
	b := NewOps()
	calls := 0

	a.On("click", func(any) error { calls++; return nil })

	if err := b.Emit("click", nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if calls != 0 {
		t.Error("registries must not share handlers")
	}

	a.Emit("click", nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := a.HandlersCount("click"); got != 1 {
		t.Errorf("HandlersCount(click) = %d, want 1", got)
	}

	a.Off("click")
	if got := a.HandlersCount("click"); got != 0 {
		t.Errorf("HandlersCount(click) = %d after Off, want 0", got)
	}
}

func TestOps_One(t *testing.T) {
	ops := NewOps()
	calls := 0
	ops.One("x", func(any) error { calls++; return nil })

	ops.Emit("x", nil)
	ops.Emit("x", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// widget gains event behavior by embedding.
type widget struct {
	*Registry
	name string
}

func TestEmitter_Embedding(t *testing.T) {
	w := widget{Registry: New(), name: "button"}
	var got any
	w.On("press", func(data any) error { got = data; return nil })

	var e Emitter = w
	if err := e.Emit("press", w.name); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got != "button" {
		t.Errorf("got %v, want button", got)
	}
}

func TestExtend(t *testing.T) {
	host := map[string]any{"title": "panel"}

	r, err := Extend(host)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if r == nil {
		t.Fatal("Extend() returned nil registry")
	}

	on, ok := host[MemberOn].(func(string, Handler) (string, error))
	if !ok {
		t.Fatalf("host[on] is %T", host[MemberOn])
	}
	emit, ok := host[MemberEmit].(func(string, any) error)
	if !ok {
		t.Fatalf("host[emit] is %T", host[MemberEmit])
	}
	count, ok := host[MemberHandlersCount].(func(string) int)
	if !ok {
		t.Fatalf("host[getHandlersCount] is %T", host[MemberHandlersCount])
	}
	off, ok := host[MemberOff].(func(string, ...OffOption) error)
	if !ok {
		t.Fatalf("host[off] is %T", host[MemberOff])
	}
	if _, ok := host[MemberOne].(func(string, Handler) (string, error)); !ok {
		t.Fatalf("host[one] is %T", host[MemberOne])
	}

	calls := 0
	on("resize.width", func(any) error { calls++; return nil })
	emit("resize", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := count("resize"); got != 1 {
		t.Errorf("getHandlersCount(resize) = %d, want 1", got)
	}
	if got := r.HandlersCount("resize"); got != 1 {
		t.Errorf("returned registry should back the host, count = %d", got)
	}

	off("resize")
	if got := count("resize"); got != 0 {
		t.Errorf("getHandlersCount(resize) = %d after off, want 0", got)
	}
	if host["title"] != "panel" {
		t.Error("existing members must be preserved")
	}
}

func TestExtend_RefusesToOverwrite(t *testing.T) {
	original := func() {}
	host := map[string]any{
		"emit": original,
		"on":   "taken",
	}

	r, err := Extend(host)
	if !errors.Is(err, ErrMemberExists) {
		t.Fatalf("Extend() error = %v, want ErrMemberExists", err)
	}
	if r != nil {
		t.Error("Extend() should not return a registry on failure")
	}

	var merr *MemberExistsError
	if !errors.As(err, &merr) {
		t.Fatalf("error is %T, want *MemberExistsError", err)
	}
	if !slices.Equal(merr.Members, []string{"emit", "on"}) {
		t.Errorf("Members = %v, want [emit on]", merr.Members)
	}

	if len(host) != 2 || host["on"] != "taken" {
		t.Errorf("host modified on failure: %v", host)
	}
}

func TestExtend_NilHost(t *testing.T) {
	if _, err := Extend(nil); !errors.Is(err, ErrNilHost) {
		t.Errorf("Extend(nil) error = %v, want ErrNilHost", err)
	}
}
