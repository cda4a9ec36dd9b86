// Package helper drives the native helper utility that performs idling and
// achievement unlocking on the host.
package helper

import (
	"context"
	"path/filepath"
	"runtime"
)

// Helper is the set of native calls the orchestrator relies on. Every
// parameter is string-encoded, as on the utility's command line.
type Helper interface {
	// CheckStatus reports whether the Steam client is running.
	CheckStatus(ctx context.Context) (bool, error)
	// FilePath returns the path of the host executable.
	FilePath(ctx context.Context) (string, error)
	// AppLogDir returns the directory holding the event log.
	AppLogDir(ctx context.Context) (string, error)
	StartIdle(ctx context.Context, filePath, appID, quiet string) error
	StopIdle(ctx context.Context, appID string) error
	UnlockAchievement(ctx context.Context, filePath, appID, achievementID, unlockAll string) error
	// LogEvent appends one line to the event log.
	LogEvent(ctx context.Context, message string) error
}

// UtilityPath swaps the host executable's name for the bundled utility.
// An absolute utility path is returned unchanged.
func UtilityPath(hostPath, utility string) string {
	if filepath.IsAbs(utility) {
		return utility
	}
	p := filepath.Join(filepath.Dir(hostPath), filepath.FromSlash(utility))
	if runtime.GOOS == "windows" && filepath.Ext(p) == "" {
		p += ".exe"
	}
	return p
}
