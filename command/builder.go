// Package command builds validated invocations of the native helper utility.
package command

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds helper calls that run to completion.
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the largest timeout WithTimeout accepts.
	MaxTimeout = 10 * time.Minute
)

// Argument kinds understood by Validate.
const (
	ArgAppID         = "appID"
	ArgAchievementID = "achievementID"
	ArgFilePath      = "filePath"
	ArgFlag          = "flag"
)

var (
	appIDPattern         = regexp.MustCompile(`^[0-9]+$`)
	achievementIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)
)

// SafeBuilder validates helper arguments and creates commands through an
// Executor.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a SafeBuilder with a RealExecutor.
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a SafeBuilder with a custom Executor.
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		ArgAppID:         validateAppID,
		ArgAchievementID: validateAchievementID,
		ArgFilePath:      validateFilePath,
		ArgFlag:          validateFlag,
	}
}

func validateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("app id cannot be empty")
	}
	if !appIDPattern.MatchString(id) {
		return fmt.Errorf("invalid app id: %s (must be numeric)", id)
	}
	if len(id) > 10 {
		return fmt.Errorf("app id too long: %s", id)
	}
	return nil
}

func validateAchievementID(id string) error {
	if id == "" {
		return fmt.Errorf("achievement id cannot be empty")
	}
	if !achievementIDPattern.MatchString(id) {
		return fmt.Errorf("invalid achievement id: %s", id)
	}
	return nil
}

// validateFilePath accepts only absolute, clean paths without shell
// metacharacters.
func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("file path must be absolute: %s", path)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("file path cannot contain '..'")
	}
	if strings.ContainsAny(path, ";|&$`") {
		return fmt.Errorf("file path contains invalid characters")
	}
	return nil
}

func validateFlag(v string) error {
	if v != "true" && v != "false" {
		return fmt.Errorf("invalid flag value: %q (want true or false)", v)
	}
	return nil
}

// Validate checks value against the validator registered for argType.
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}
	return validator(value)
}

// Command is a validated helper invocation that has not run yet.
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a command for name with args. Arguments should already have
// passed Validate.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}
	return &Command{
		ctx:      ctx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for Run, capped at MaxTimeout.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	c.timeout = timeout
	return c
}

// Args returns the command line without the program name.
func (c *Command) Args() []string {
	return c.args
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Run executes the command to completion and returns its combined output.
func (c *Command) Run() ([]byte, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()
	return c.executor.CommandContext(ctx, c.name, c.args...).CombinedOutput() //nolint:gosec // arguments are validated by SafeBuilder
}

// Start launches the command detached from idler's session, without waiting
// for it and without a timeout. The returned Cmd has a running Process.
func (c *Command) Start() (*exec.Cmd, error) {
	cmd := c.executor.Command(c.name, c.args...) //nolint:gosec // arguments are validated by SafeBuilder
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
