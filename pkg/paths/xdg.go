// Package paths provides XDG-compliant path resolution for idler.
//
// Resolution order:
// 1. IDLER_HOME (portable root) → $IDLER_HOME/{config,state,cache}
// 2. XDG env vars → $XDG_*_HOME/idler
// 3. Platform defaults → ~/.config/idler, ~/.local/state/idler, ~/.cache/idler
package paths

import (
	"os"
	"path/filepath"
	"strconv"
)

const appName = "idler"

// resolve picks the base directory for one XDG category.
func resolve(homeSub, xdgVar string, fallback ...string) string {
	if home := os.Getenv("IDLER_HOME"); home != "" {
		return filepath.Join(home, homeSub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		parts := append([]string{homeDir}, fallback...)
		return filepath.Join(append(parts, appName)...)
	}
	return ""
}

// ConfigDir returns the configuration directory (idler.yml / idler.toml).
func ConfigDir() string {
	return resolve("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the durable state directory.
// Used for state.yml, idle PID files and logs.
func StateDir() string {
	return resolve("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the cache directory for regenerable data such as
// session inventory snapshots.
func CacheDir() string {
	return resolve("cache", "XDG_CACHE_HOME", ".cache")
}

// StateFilePath returns the path to the durable state file.
func StateFilePath() string {
	return filepath.Join(StateDir(), "state.yml")
}

// LogDir returns the directory holding log.txt and component logs.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// IdleDir returns the directory holding one PID file per idled app.
func IdleDir() string {
	return filepath.Join(StateDir(), "idle")
}

// IdlePidFile returns the PID file path for an idled app.
func IdlePidFile(appID int) string {
	return filepath.Join(IdleDir(), strconv.Itoa(appID)+".pid")
}

// SessionDir returns the directory holding session-scoped inventory snapshots.
func SessionDir() string {
	return filepath.Join(CacheDir(), "sessions")
}

// EnsureDirs creates all idler directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		StateDir(),
		CacheDir(),
		LogDir(),
		IdleDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
