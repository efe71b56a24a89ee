package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "namespaces.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "namespaces", s.Name)
	assert.Len(t, s.Handlers, 3)
	require.Len(t, s.Steps, 12)
	assert.Equal(t, "on test (h1)", s.Steps[0].String())
	assert.Equal(t, "payload", s.Steps[4].Data)
	assert.Equal(t, []string{"h1", "h2", "h3"}, s.Steps[4].Calls)
	require.NotNil(t, s.Steps[8].Children)
	assert.False(t, *s.Steps[8].Children)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario")
}

func TestLoad_UnknownHandler(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "invalid.yaml"))
	require.ErrorIs(t, err, ErrInvalidScenario)
	assert.Contains(t, err.Error(), `unknown handler "missing"`)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "syntax",
			doc:  "steps: [",
			want: "invalid scenario",
		},
		{
			name: "no operation",
			doc:  "steps:\n  - handler: h\nhandlers:\n  h: {}\n",
			want: "step has no operation",
		},
		{
			name: "two operations",
			doc:  "steps:\n  - on: a\n    emit: a\n    handler: h\nhandlers:\n  h: {}\n",
			want: "step sets on and emit",
		},
		{
			name: "on without handler",
			doc:  "steps:\n  - on: a\n",
			want: "on needs a handler",
		},
		{
			name: "count without expect",
			doc:  "steps:\n  - count: a\n",
			want: "count needs expect",
		},
		{
			name: "unknown call",
			doc:  "steps:\n  - emit: a\n    calls: [ghost]\n",
			want: `unknown handler "ghost" in calls`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidScenario)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStep_Kind(t *testing.T) {
	kind, event, err := Step{One: "a.b", Handler: "h"}.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindOne, kind)
	assert.Equal(t, "a.b", event)

	assert.Equal(t, "invalid step", Step{}.String())
	assert.Equal(t, "emit a", Step{Emit: "a"}.String())
}
