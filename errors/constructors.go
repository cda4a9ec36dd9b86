package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *IdlerError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *IdlerError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// SteamNotRunning is returned when an operation is gated on the Steam client
// and the liveness check reports it is not running.
func SteamNotRunning(operation string) *IdlerError {
	return New(ErrCodePreconditionFailed, "Steam is not running").
		WithDetail("operation", operation)
}

// TransportFailed creates an error for a failed remote request
func TransportFailed(route string, status int, err error) *IdlerError {
	msg := fmt.Sprintf("route %q failed", route)
	if status != 0 {
		msg = fmt.Sprintf("route %q returned status %d", route, status)
	}
	e := Wrap(err, ErrCodeTransportFailed, msg).WithDetail("route", route)
	if status != 0 {
		e = e.WithDetail("status", status)
	}
	return e
}

// HelperNotFound creates an error for a helper executable that does not exist
func HelperNotFound(path string) *IdlerError {
	return New(ErrCodeHelperNotFound, fmt.Sprintf("helper executable not found: %s", path)).
		WithDetail("path", path)
}

// HelperFailed creates a helper invocation failure error
func HelperFailed(subcommand string, err error) *IdlerError {
	idlerErr := Wrap(err, ErrCodeHelperFailed, fmt.Sprintf("helper %s failed", subcommand)).
		WithDetail("subcommand", subcommand)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		idlerErr = idlerErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return idlerErr
}

// AlreadyIdling is returned when an idle process for appID is still alive.
func AlreadyIdling(appID string, pid int) *IdlerError {
	return New(ErrCodeAlreadyIdling, fmt.Sprintf("app %s is already idling", appID)).
		WithDetail("appId", appID).
		WithDetail("pid", pid)
}

// StateCorrupt creates an error for a malformed durable state slot
func StateCorrupt(key string, err error) *IdlerError {
	return Wrap(err, ErrCodeStateCorrupt, fmt.Sprintf("state slot %q is malformed", key)).
		WithDetail("key", key)
}

// InvalidInput creates an invalid input error
func InvalidInput(field, reason string) *IdlerError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetail("field", field)
}
