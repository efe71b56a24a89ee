package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: passing
handlers:
  h1: {}
  h2: {}
steps:
  - on: test.a
    handler: h1
  - one: test.b
    handler: h2
  - emit: test
    calls: [h1, h2]
  - count: test
    expect: 1
`

const failingScenario = `name: failing
handlers:
  h1: {}
steps:
  - on: test
    handler: h1
  - count: test
    expect: 2
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var stdout, stderr bytes.Buffer
	cmd, closer := NewRootCmd()
	t.Cleanup(func() { _ = closer.Close() })
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nsevent version dev")
	assert.Contains(t, out, "commit: unknown")
}

func TestRunCmd_Pass(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pass.yaml", passingScenario)

	out, _, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "passing")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "h1, h2")
	assert.Contains(t, out, "ok: 4 steps, 2 calls")
	assert.NotContains(t, out, "FAIL")
}

func TestRunCmd_Fail(t *testing.T) {
	dir := t.TempDir()
	pass := writeFile(t, dir, "pass.yaml", passingScenario)
	fail := writeFile(t, dir, "fail.yaml", failingScenario)

	out, _, err := execute(t, "run", fail, pass)
	require.ErrorIs(t, err, ErrScenarioFailed)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "count = 1, want 2")
	assert.Contains(t, out, "failed: 1 of 2 steps")
	assert.Contains(t, out, "passing", "later files still run")
}

func TestRunCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "run")
	require.Error(t, err)

	_, _, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario")
}

func TestRunCmd_LoadErrorKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.yaml")
	pass := writeFile(t, dir, "pass.yaml", passingScenario)
	fail := writeFile(t, dir, "fail.yaml", failingScenario)

	out, _, err := execute(t, "run", missing, pass, fail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario")
	assert.ErrorIs(t, err, ErrScenarioFailed)
	assert.Contains(t, out, "passing")
	assert.Contains(t, out, "failed: 1 of 2 steps")
}

func TestRootCmd_ClosesLogFileOnFailure(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	dir := t.TempDir()
	logFile := filepath.Join(dir, "nsevent.log")
	cfg := writeFile(t, dir, "nsevent.toml", "[log]\nlevel = \"debug\"\nfile = \""+logFile+"\"\n")
	fail := writeFile(t, dir, "fail.yaml", failingScenario)

	var stdout, stderr bytes.Buffer
	cmd, closer := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", cfg, "run", fail})
	require.ErrorIs(t, cmd.Execute(), ErrScenarioFailed)

	c, ok := closer.(*cli)
	require.True(t, ok)
	f, ok := c.logCloser.(*os.File)
	require.True(t, ok, "log file should be open after a failed run")

	require.NoError(t, closer.Close())
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
	assert.NoError(t, closer.Close(), "second Close is a no-op")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Command started")
}

func TestRunCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "nsevent.toml", "[registry]\ncontinue_on_error = true\n")
	path := writeFile(t, dir, "continue.yaml", `name: continue
handlers:
  bad:
    fail: first
  good: {}
steps:
  - on: test
    handler: bad
  - on: test
    handler: good
  - emit: test
    calls: [bad, good]
    expect_error: first
`)

	_, _, err := execute(t, "--config", cfg, "run", path)
	require.NoError(t, err)
}

func TestRootCmd_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "nsevent.toml", "[log]\nlevel = \"loud\"\n")

	_, _, err := execute(t, "--config", cfg, "version")
	require.Error(t, err)
}

func TestRootCmd_Verbosity(t *testing.T) {
	_, stderr, err := execute(t, "-vv", "version")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, stderr, "Command started")
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "watched.yaml", passingScenario)
	other := filepath.Join(dir, "other.yaml")

	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()
	require.NoError(t, fsw.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reruns := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, fsw, path, func() { reruns <- struct{}{} })
	}()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte(failingScenario), 0644))

	select {
	case <-reruns:
	case <-time.After(5 * time.Second):
		t.Fatal("no rerun after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestWatchScenario_StopsOnCancel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pass.yaml", passingScenario)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, watchScenario(ctx, &out, path, nil))
	assert.Contains(t, out.String(), "ok: 4 steps, 2 calls")
	assert.Contains(t, out.String(), "watching")
}
