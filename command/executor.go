package command

import (
	"context"
	"os/exec"
)

// Executor creates the exec.Cmd for a helper invocation. Tests swap in an
// executor that records command lines and runs a harmless binary instead.
type Executor interface {
	// Command creates a Cmd for a long-running process started with Start.
	Command(name string, args ...string) *exec.Cmd

	// CommandContext creates a Cmd bounded by ctx, for invocations run to completion.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor runs the named binaries.
type RealExecutor struct{}

func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
