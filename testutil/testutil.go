// Package testutil holds helpers shared by idler's package tests.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovetools/idler/logging"
)

// TempHome points IDLER_HOME at a fresh temporary directory for the duration
// of the test and returns it. Cached loggers are dropped so file sinks follow.
func TempHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("IDLER_HOME", home)
	t.Setenv("IDLER_LOG_LEVEL", "debug")
	logging.Reset()
	t.Cleanup(logging.Reset)
	return home
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Invocation is one command line seen by a RecordingExecutor.
type Invocation struct {
	Name string
	Args []string
}

// RecordingExecutor records every command it is asked to create and runs
// Substitute (with SubstituteArgs) in its place. With no substitute it runs
// "true".
type RecordingExecutor struct {
	Substitute     string
	SubstituteArgs []string

	mu    sync.Mutex
	calls []Invocation
}

func (e *RecordingExecutor) record(name string, args []string) (string, []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Invocation{Name: name, Args: append([]string(nil), args...)})

	if e.Substitute == "" {
		return "true", nil
	}
	return e.Substitute, e.SubstituteArgs
}

// Command implements command.Executor.
func (e *RecordingExecutor) Command(name string, args ...string) *exec.Cmd {
	n, a := e.record(name, args)
	return exec.Command(n, a...)
}

// CommandContext implements command.Executor.
func (e *RecordingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	n, a := e.record(name, args)
	return exec.CommandContext(ctx, n, a...)
}

// Calls returns a copy of the recorded invocations.
func (e *RecordingExecutor) Calls() []Invocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Invocation(nil), e.calls...)
}
