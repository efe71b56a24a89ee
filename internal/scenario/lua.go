package scenario

import (
	"errors"
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/nsevent/internal/event"
)

// luaHost owns the Lua state shared by a run's scripted handlers.
// gopher-lua states are not goroutine-safe; Emit runs handlers on the
// caller's goroutine, so a run only touches the state from one goroutine.
type luaHost struct {
	L *lua.LState
}

// newLuaHost creates a sandboxed state exposing emit and count for the
// registry under test.
func newLuaHost(r *event.Registry) *luaHost {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// Remove functions that reach outside the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("emit", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if err := r.Emit(name, fromLua(L.Get(2))); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	L.SetGlobal("count", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(r.HandlersCount(L.CheckString(1))))
		return 1
	}))

	return &luaHost{L: L}
}

// run executes chunk with the global data bound to payload. The previous
// binding is restored afterwards, so a chunk that calls emit still sees its
// own data when the nested handlers return.
func (h *luaHost) run(chunk string, payload any) error {
	prev := h.L.GetGlobal("data")
	h.L.SetGlobal("data", toLua(h.L, payload))
	defer h.L.SetGlobal("data", prev)

	if err := h.L.DoString(chunk); err != nil {
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) && apiErr.Object != nil {
			return fmt.Errorf("lua: %s", apiErr.Object.String())
		}
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

func (h *luaHost) close() {
	h.L.Close()
}

// toLua converts YAML-decoded values to Lua values.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []any:
		t := L.NewTable()
		for _, item := range x {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, x[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// fromLua converts Lua values passed to emit back to Go values.
func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(x)
	case lua.LString:
		return string(x)
	case lua.LNumber:
		f := float64(x)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LTable:
		if n := x.Len(); n > 0 {
			items := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				items = append(items, fromLua(x.RawGetInt(i)))
			}
			return items
		}
		m := make(map[string]any)
		x.ForEach(func(k, val lua.LValue) {
			m[k.String()] = fromLua(val)
		})
		return m
	default:
		return v.String()
	}
}
